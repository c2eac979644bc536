package models

// DefaultQuestionCount is used when a quiz request does not ask for a specific count.
const DefaultQuestionCount = 5

type AttachedFile struct {
	MIMEType   string `json:"mime_type" validate:"required"`
	Base64Data string `json:"data" validate:"required,base64"`
}

// GenerationRequest is built fresh per user action and never persisted.
// At least one of SourceText or AttachedFile is expected to be set.
type GenerationRequest struct {
	SourceText           string
	AttachedFile         *AttachedFile
	DesiredQuestionCount int
}

func (r GenerationRequest) QuestionCount() int {
	if r.DesiredQuestionCount <= 0 {
		return DefaultQuestionCount
	}
	return r.DesiredQuestionCount
}

type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer"`
}

type ResultKind string

const (
	ResultSummary ResultKind = "summary"
	ResultQuiz    ResultKind = "quiz"
	ResultFailure ResultKind = "failure"
)

type GenerationFailure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GenerationResult holds exactly one of Summary, Questions or Failure, selected by Kind.
type GenerationResult struct {
	Kind      ResultKind         `json:"kind"`
	Summary   string             `json:"summary,omitempty"`
	Questions []QuizQuestion     `json:"questions,omitempty"`
	Failure   *GenerationFailure `json:"failure,omitempty"`
}

// ──── HTTP DTOs ────

type StudioRequest struct {
	Title         string        `json:"title" validate:"max=200"`
	Text          string        `json:"text" validate:"required_without=File"`
	File          *AttachedFile `json:"file" validate:"required_without=Text"`
	QuestionCount int           `json:"question_count" validate:"omitempty,min=1,max=30"`
}

func (r StudioRequest) ToGenerationRequest() GenerationRequest {
	return GenerationRequest{
		SourceText:           r.Text,
		AttachedFile:         r.File,
		DesiredQuestionCount: r.QuestionCount,
	}
}

type UploadResponse struct {
	FileName     string        `json:"file_name"`
	SourceText   string        `json:"source_text,omitempty"`
	AttachedFile *AttachedFile `json:"attached_file,omitempty"`
}

type ScoreQuizRequest struct {
	Questions []QuizQuestion `json:"questions" validate:"required,min=1"`
	Answers   []int          `json:"answers"`
}

type QuizScore struct {
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}
