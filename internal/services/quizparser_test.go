package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy-backend/internal/models"
)

const twoPlusTwo = `[{"question":"2+2?","options":["3","4","5","6"],"answer":1}]`

func TestParseQuiz_FencedMatchesUnfenced(t *testing.T) {
	fenced := "```json\n" + twoPlusTwo + "\n```"

	got := ParseQuiz(fenced)

	require.Len(t, got, 1)
	assert.Equal(t, "2+2?", got[0].Question)
	assert.Equal(t, []string{"3", "4", "5", "6"}, got[0].Options)
	assert.Equal(t, 1, got[0].AnswerIndex)
	assert.Equal(t, ParseQuiz(twoPlusTwo), got)
}

func TestParseQuiz_FenceVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bare fence", "```\n" + twoPlusTwo + "\n```"},
		{"upper-case tag", "```JSON\n" + twoPlusTwo + "```"},
		{"surrounding whitespace", "\n\t  " + twoPlusTwo + "  \n"},
		{"prose around the array", "Here is your quiz:\n" + twoPlusTwo + "\nGood luck!"},
		{"prose and fences", "Sure!\n```json\n" + twoPlusTwo + "\n```\nLet me know."},
		{"fences on one line", "```json" + twoPlusTwo + "```"},
		{"bracketed prose before the array", "Here is your quiz [5 questions]:\n" + twoPlusTwo},
		{"bracketed note after the array", twoPlusTwo + "\nNote [1]: easy"},
		{"citation before the array", "Based on section [2] of the notes:\n" + twoPlusTwo},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseQuiz(tc.raw)
			require.Len(t, got, 1)
			assert.Equal(t, 1, got[0].AnswerIndex)
		})
	}
}

func TestParseQuiz_UnusableOutputIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json at all", "not json at all"},
		{"empty", ""},
		{"only fences", "```json\n```"},
		{"null", "null"},
		{"object instead of array", `{"questions":[{"question":"q","options":["a"],"answer":0}]}`},
		{"truncated array", `[{"question":"2+2?","options":["3","4"`},
		{"string", `"a quiz"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report := ParseQuizReport(tc.raw)
			assert.True(t, report.Malformed)
			assert.NotNil(t, report.Questions)
			assert.Empty(t, report.Questions)
			assert.NotPanics(t, func() { ParseQuiz(tc.raw) })
		})
	}
}

func TestParseQuiz_KeepsBackticksInsideQuestions(t *testing.T) {
	raw := "```json\n" +
		`[{"question":"What does ` + "```" + ` start in markdown?","options":["a code block","a list"],"answer":0}]` +
		"\n```"

	got := ParseQuiz(raw)

	require.Len(t, got, 1)
	assert.Equal(t, "What does ``` start in markdown?", got[0].Question)
}

func TestParseQuiz_EmptyArrayIsNotMalformed(t *testing.T) {
	report := ParseQuizReport("[]")
	assert.False(t, report.Malformed)
	assert.Empty(t, report.Questions)
	assert.Empty(t, report.Rejected)
}

// Invalid elements are dropped; the rest of the batch survives.
func TestParseQuiz_LenientPolicyDropsInvalidElements(t *testing.T) {
	raw := `[
		{"question":"First?","options":["a","b","c","d"],"answer":0},
		{"question":"No options?","answer":1},
		{"question":"Third?","options":["a","b","c","d"],"answer":3}
	]`

	report := ParseQuizReport(raw)

	require.Len(t, report.Questions, 2)
	assert.Equal(t, "First?", report.Questions[0].Question)
	assert.Equal(t, "Third?", report.Questions[1].Question)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, 1, report.Rejected[0].Index)
	assert.Equal(t, "options is missing or not an array", report.Rejected[0].Reason)
	assert.False(t, report.Malformed)
}

func TestParseQuiz_ElementValidation(t *testing.T) {
	tests := []struct {
		name    string
		element string
		reason  string
	}{
		{"not an object", `"just text"`, "element is not an object"},
		{"missing question", `{"options":["a","b"],"answer":0}`, "question is missing or not a string"},
		{"numeric question", `{"question":7,"options":["a","b"],"answer":0}`, "question is missing or not a string"},
		{"blank question", `{"question":"   ","options":["a","b"],"answer":0}`, "question is empty"},
		{"options not array", `{"question":"q","options":"a,b","answer":0}`, "options is missing or not an array"},
		{"empty options", `{"question":"q","options":[],"answer":0}`, "options is empty"},
		{"non-string option", `{"question":"q","options":["a",2],"answer":0}`, "options contains a non-string entry"},
		{"missing answer", `{"question":"q","options":["a","b"]}`, "answer is missing"},
		{"string answer", `{"question":"q","options":["a","b"],"answer":"1"}`, "answer is not an integer"},
		{"fractional answer", `{"question":"q","options":["a","b"],"answer":1.5}`, "answer is not an integer"},
		{"negative whole float answer", `{"question":"q","options":["a","b"],"answer":-1.0}`, "answer is out of range"},
		{"boolean answer", `{"question":"q","options":["a","b"],"answer":true}`, "answer is not an integer"},
		{"null answer", `{"question":"q","options":["a","b"],"answer":null}`, "answer is not an integer"},
		{"negative answer", `{"question":"q","options":["a","b"],"answer":-1}`, "answer is out of range"},
		{"answer past options", `{"question":"q","options":["a","b"],"answer":2}`, "answer is out of range"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report := ParseQuizReport("[" + tc.element + "]")
			assert.Empty(t, report.Questions)
			require.Len(t, report.Rejected, 1)
			assert.Equal(t, tc.reason, report.Rejected[0].Reason)
		})
	}
}

func TestParseQuiz_WholeNumberFloatAnswer(t *testing.T) {
	for _, answer := range []string{"1.0", "1e0", "1.000"} {
		t.Run(answer, func(t *testing.T) {
			got := ParseQuiz(`[{"question":"2+2?","options":["3","4","5","6"],"answer":` + answer + `}]`)

			require.Len(t, got, 1)
			assert.Equal(t, 1, got[0].AnswerIndex)
		})
	}
}

func TestParseQuiz_ToleratesOptionCountAndAlias(t *testing.T) {
	raw := `[
		{"question":"True or false?","options":["True","False"],"answer":1},
		{"question":"Pick one","options":["a","b","c","d","e"],"correct_index":4}
	]`

	got := ParseQuiz(raw)

	require.Len(t, got, 2)
	assert.Len(t, got[0].Options, 2)
	assert.Equal(t, 4, got[1].AnswerIndex)
}

func TestParseQuiz_AnswerTakesPrecedenceOverAlias(t *testing.T) {
	got := ParseQuiz(`[{"question":"q","options":["a","b"],"answer":0,"correct_index":1}]`)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].AnswerIndex)
}

func TestParseQuiz_PreservesOrderAndDuplicates(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < 6; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		// Questions 2 and 3 are identical on purpose.
		n := i
		if i == 3 {
			n = 2
		}
		fmt.Fprintf(&b, `{"question":"Q%d","options":["a","b","c","d"],"answer":%d}`, n, n%4)
	}
	b.WriteString("]")

	got := ParseQuiz(b.String())

	require.Len(t, got, 6)
	want := []string{"Q0", "Q1", "Q2", "Q2", "Q4", "Q5"}
	for i, q := range got {
		assert.Equal(t, want[i], q.Question)
		assert.GreaterOrEqual(t, q.AnswerIndex, 0)
		assert.Less(t, q.AnswerIndex, len(q.Options))
	}
}

func TestParseQuiz_Idempotent(t *testing.T) {
	raw := "```json\n" + `[{"question":"A?","options":["1","2","3","4"],"answer":2},{"question":"B?"}]` + "\n```"

	first := ParseQuizReport(raw)
	second := ParseQuizReport(raw)

	assert.Equal(t, first, second)
	assert.Equal(t, []models.QuizQuestion{{Question: "A?", Options: []string{"1", "2", "3", "4"}, AnswerIndex: 2}}, first.Questions)
}
