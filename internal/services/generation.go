package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"studybuddy-backend/internal/models"
)

// SummaryUnavailable is returned in place of a summary when the model
// answered without any usable candidate text.
const SummaryUnavailable = "Failed to generate summary."

// ContentPart is one entry of a model request. A part with a MIMEType is an
// inline binary part; otherwise it is text.
type ContentPart struct {
	Text     string
	MIMEType string
	Data     []byte
}

func (p ContentPart) IsInline() bool {
	return p.MIMEType != ""
}

// Completion is the model's answer: the text of each candidate, in order.
type Completion struct {
	Candidates   []string
	FinishReason string
}

func (c *Completion) FirstText() string {
	if c == nil || len(c.Candidates) == 0 {
		return ""
	}
	return c.Candidates[0]
}

// ContentGenerator issues a single generation call. Implementations return
// *GenerationError for transport and API failures.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts []ContentPart) (*Completion, error)
}

// GenerationService turns study material into summaries and quizzes.
// It is stateless: one model call per operation, no retries, no caching.
type GenerationService struct {
	apiKey    string
	generator ContentGenerator
	logger    *zap.Logger
}

func NewGenerationService(apiKey string, generator ContentGenerator, logger *zap.Logger) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{
		apiKey:    apiKey,
		generator: generator,
		logger:    logger.Named("generation"),
	}
}

// GenerateSummary returns a structured study summary. A response without
// candidate text yields SummaryUnavailable and a nil error.
func (s *GenerationService) GenerateSummary(ctx context.Context, req models.GenerationRequest) (string, error) {
	completion, err := s.call(ctx, "summary", buildSummaryPrompt(req), req.AttachedFile)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(completion.FirstText())
	if text == "" {
		s.logger.Warn("Gemini returned no summary text, using placeholder",
			zap.Int("candidates", len(completion.Candidates)),
			zap.String("finish_reason", completion.FinishReason))
		return SummaryUnavailable, nil
	}

	return text, nil
}

// GenerateQuiz returns the validated questions from the model's answer.
// Output that cannot be parsed yields an empty slice and a nil error;
// only configuration, transport and API failures are returned as errors.
func (s *GenerationService) GenerateQuiz(ctx context.Context, req models.GenerationRequest) ([]models.QuizQuestion, error) {
	completion, err := s.call(ctx, "quiz", buildQuizPrompt(req), req.AttachedFile)
	if err != nil {
		return []models.QuizQuestion{}, err
	}

	report := ParseQuizReport(completion.FirstText())
	if report.Malformed {
		s.logger.Warn("Gemini quiz output is not a JSON array",
			zap.Int("raw_length", len(completion.FirstText())),
			zap.String("finish_reason", completion.FinishReason))
	}
	for _, r := range report.Rejected {
		s.logger.Debug("Dropped invalid quiz question", zap.Int("index", r.Index), zap.String("reason", r.Reason))
	}

	s.logger.Info("Quiz generated",
		zap.Int("requested", req.QuestionCount()),
		zap.Int("valid", len(report.Questions)),
		zap.Int("rejected", len(report.Rejected)))

	return report.Questions, nil
}

// Generate runs one operation and folds the outcome into a GenerationResult.
func (s *GenerationService) Generate(ctx context.Context, kind models.ResultKind, req models.GenerationRequest) models.GenerationResult {
	switch kind {
	case models.ResultSummary:
		summary, err := s.GenerateSummary(ctx, req)
		if err != nil {
			return failureResult(err)
		}
		return models.GenerationResult{Kind: models.ResultSummary, Summary: summary}
	case models.ResultQuiz:
		questions, err := s.GenerateQuiz(ctx, req)
		if err != nil {
			return failureResult(err)
		}
		return models.GenerationResult{Kind: models.ResultQuiz, Questions: questions}
	default:
		return failureResult(newInvalidRequestError(fmt.Sprintf("unknown generation kind %q", kind), nil))
	}
}

func failureResult(err error) models.GenerationResult {
	failure := &models.GenerationFailure{Code: string(KindTransport), Message: "Could not connect to AI service."}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		failure.Code = string(genErr.Kind)
		failure.Message = genErr.Message
	}
	return models.GenerationResult{Kind: models.ResultFailure, Failure: failure}
}

func (s *GenerationService) call(ctx context.Context, op, prompt string, file *models.AttachedFile) (*Completion, error) {
	if s.apiKey == "" || s.generator == nil {
		s.logger.Error("Generation requested without Gemini credentials", zap.String("op", op))
		return nil, newConfigurationError()
	}

	parts, err := buildParts(prompt, file)
	if err != nil {
		return nil, err
	}

	completion, err := s.generator.GenerateContent(ctx, parts)
	if err != nil {
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			genErr = newTransportError(err)
		}
		s.logger.Warn("Gemini call failed",
			zap.String("op", op),
			zap.String("kind", string(genErr.Kind)),
			zap.Int("status", genErr.StatusCode),
			zap.Error(err))
		return nil, genErr
	}
	if completion == nil {
		completion = &Completion{}
	}

	return completion, nil
}

// buildParts puts the prompt first and the optional file second.
func buildParts(prompt string, file *models.AttachedFile) ([]ContentPart, error) {
	parts := []ContentPart{{Text: prompt}}
	if file == nil {
		return parts, nil
	}

	if strings.TrimSpace(file.MIMEType) == "" {
		return nil, newInvalidRequestError("Attached file has no MIME type.", nil)
	}
	data, err := base64.StdEncoding.DecodeString(file.Base64Data)
	if err != nil {
		return nil, newInvalidRequestError("Attached file is not valid base64.", err)
	}
	if len(data) == 0 {
		return nil, newInvalidRequestError("Attached file is empty.", nil)
	}

	return append(parts, ContentPart{MIMEType: file.MIMEType, Data: data}), nil
}

func buildSummaryPrompt(req models.GenerationRequest) string {
	var b strings.Builder

	b.WriteString("You are an expert study buddy. Read the study material and extract its key concepts.\n")
	b.WriteString("Produce a structured summary:\n")
	b.WriteString("- short headings for each main topic\n")
	b.WriteString("- concise bullet points under each heading\n")
	b.WriteString("- a brief conclusion tying the topics together\n")
	b.WriteString("Keep it clear and easy to learn from.\n")

	writeMaterial(&b, req)
	return b.String()
}

func buildQuizPrompt(req models.GenerationRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a quiz of exactly %d multiple-choice questions based on the study material.\n", req.QuestionCount())
	b.WriteString("Return ONLY a valid JSON array. Do not wrap it in markdown (no ``` code blocks) and add no text before or after it.\n")
	b.WriteString(`Format: [{"question": "...", "options": ["A", "B", "C", "D"], "answer": 0}]` + "\n")
	b.WriteString(`Each question has exactly 4 options. "answer" is the 0-based index (0-3) of the correct option.` + "\n")

	writeMaterial(&b, req)
	return b.String()
}

func writeMaterial(b *strings.Builder, req models.GenerationRequest) {
	text := strings.TrimSpace(req.SourceText)

	switch {
	case req.AttachedFile != nil && text != "":
		b.WriteString("\nUse both the notes below and the attached file.\n")
	case req.AttachedFile != nil:
		b.WriteString("\nThe study material is in the attached file.\n")
	}

	if text != "" {
		b.WriteString("\nNotes:\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
}
