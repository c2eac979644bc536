package services

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"studybuddy-backend/internal/models"
)

// codeFenceLine matches a markdown fence that sits on its own line.
var codeFenceLine = regexp.MustCompile("(?m)^[ \t]*```(?:json|JSON)?[ \t\r]*$")

var openingFences = []string{"```json", "```JSON", "```"}

type RejectedQuestion struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// QuizParseReport is the outcome of parsing one raw model response.
// Malformed is set when no JSON array could be recovered at all.
type QuizParseReport struct {
	Questions []models.QuizQuestion
	Rejected  []RejectedQuestion
	Malformed bool
}

// ParseQuiz converts raw model output into validated quiz questions.
// It never fails: unusable output yields an empty, non-nil slice.
func ParseQuiz(raw string) []models.QuizQuestion {
	return ParseQuizReport(raw).Questions
}

// ParseQuizReport is ParseQuiz plus the per-element rejections.
// Elements that fail validation are dropped; the rest keep the model's order.
func ParseQuizReport(raw string) QuizParseReport {
	report := QuizParseReport{Questions: []models.QuizQuestion{}}

	elements, ok := decodeQuestionArray(stripCodeFences(raw))
	if !ok {
		report.Malformed = true
		return report
	}

	for i, el := range elements {
		q, reason := validateQuestion(el)
		if reason != "" {
			report.Rejected = append(report.Rejected, RejectedQuestion{Index: i, Reason: reason})
			continue
		}
		report.Questions = append(report.Questions, q)
	}

	return report
}

// stripCodeFences removes fence lines and fences glued to either end of the
// text. Backticks inside the payload are left alone.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(codeFenceLine.ReplaceAllString(raw, ""))
	for _, open := range openingFences {
		if strings.HasPrefix(s, open) {
			s = s[len(open):]
			break
		}
	}
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// decodeQuestionArray accepts a bare JSON array. Text that is not JSON at all
// is scanned from each '[' in turn, and the first array that decodes and could
// hold questions wins. That covers prose, bracketed asides and trailing notes
// around the array.
func decodeQuestionArray(s string) ([]json.RawMessage, bool) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(s), &elements); err == nil {
		return elements, elements != nil
	}

	// Valid JSON of another shape is rejected rather than mined for arrays.
	if json.Valid([]byte(s)) {
		return nil, false
	}

	for i := strings.IndexByte(s, '['); i >= 0; {
		var candidate []json.RawMessage
		err := json.NewDecoder(strings.NewReader(s[i:])).Decode(&candidate)
		if err == nil && holdsObjects(candidate) {
			return candidate, true
		}

		next := strings.IndexByte(s[i+1:], '[')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, false
}

// holdsObjects skips arrays like [1] in "see note [1]" that cannot be questions.
func holdsObjects(elements []json.RawMessage) bool {
	if elements == nil {
		return false
	}
	if len(elements) == 0 {
		return true
	}
	for _, el := range elements {
		if strings.HasPrefix(strings.TrimSpace(string(el)), "{") {
			return true
		}
	}
	return false
}

func validateQuestion(raw json.RawMessage) (models.QuizQuestion, string) {
	var q models.QuizQuestion

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return q, "element is not an object"
	}

	var question string
	if err := json.Unmarshal(fields["question"], &question); err != nil {
		return q, "question is missing or not a string"
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return q, "question is empty"
	}

	var rawOptions []any
	if err := json.Unmarshal(fields["options"], &rawOptions); err != nil {
		return q, "options is missing or not an array"
	}
	if len(rawOptions) == 0 {
		return q, "options is empty"
	}
	options := make([]string, len(rawOptions))
	for i, o := range rawOptions {
		s, ok := o.(string)
		if !ok {
			return q, "options contains a non-string entry"
		}
		options[i] = s
	}

	rawAnswer, ok := fields["answer"]
	if !ok {
		rawAnswer, ok = fields["correct_index"]
	}
	if !ok {
		return q, "answer is missing"
	}
	answer, ok := wholeNumber(rawAnswer)
	if !ok {
		return q, "answer is not an integer"
	}
	if answer < 0 || answer >= len(options) {
		return q, "answer is out of range"
	}

	q.Question = question
	q.Options = options
	q.AnswerIndex = answer
	return q, ""
}

// wholeNumber reads a JSON number with no fractional part, so 1 and 1.0 are
// both 1. Strings are rejected even when they hold digits.
func wholeNumber(raw json.RawMessage) (int, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed[0] == '"' {
		return 0, false
	}

	var num json.Number
	if err := json.Unmarshal([]byte(trimmed), &num); err != nil {
		return 0, false
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
