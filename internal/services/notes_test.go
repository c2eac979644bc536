package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"studybuddy-backend/internal/models"
)

func TestComposeSummaryNote(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		source      string
		wantTitle   string
		wantContent string
	}{
		{
			name:        "titled with source",
			title:       "Biology 101",
			source:      "Cells are the unit of life.",
			wantTitle:   "Biology 101",
			wantContent: "# Biology 101\n\n- Cells\n\n## Original Notes\nCells are the unit of life.\n",
		},
		{
			name:        "untitled without source",
			title:       "  ",
			source:      "",
			wantTitle:   "AI Study Session",
			wantContent: "# AI Summary\n\n- Cells\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			draft := ComposeSummaryNote(tc.title, "- Cells\n", tc.source)
			assert.Equal(t, tc.wantTitle, draft.Title)
			assert.Equal(t, tc.wantContent, draft.Content)
			assert.True(t, draft.IsAIGenerated)
		})
	}
}

func TestComposeQuizNote(t *testing.T) {
	questions := []models.QuizQuestion{
		{Question: "2+2?", Options: []string{"3", "4"}, AnswerIndex: 1},
		{Question: "Capital of France?", Options: []string{"Paris", "Rome"}, AnswerIndex: 0},
	}

	draft := ComposeQuizNote("Math", questions)

	assert.Equal(t, "Quiz: Math", draft.Title)
	assert.Equal(t, "# Quiz: Math\n\n**Q1: 2+2?**\n- 3\n- 4 ✅\n\n**Q2: Capital of France?**\n- Paris ✅\n- Rome\n", draft.Content)
	assert.True(t, draft.IsAIGenerated)

	untitled := ComposeQuizNote("", questions[:1])
	assert.Equal(t, "Quiz: Untitled", untitled.Title)
	assert.Contains(t, untitled.Content, "# Quiz: Study Session\n")
}

func TestScoreQuiz(t *testing.T) {
	questions := []models.QuizQuestion{
		{Question: "a", Options: []string{"x", "y", "z", "w"}, AnswerIndex: 0},
		{Question: "b", Options: []string{"x", "y", "z", "w"}, AnswerIndex: 3},
		{Question: "c", Options: []string{"x", "y"}, AnswerIndex: 1},
		{Question: "d", Options: []string{"x", "y"}, AnswerIndex: 1},
	}

	tests := []struct {
		name    string
		answers []int
		correct int
		percent float64
	}{
		{"all correct", []int{0, 3, 1, 1}, 4, 100},
		{"half correct", []int{0, 2, 1, 0}, 2, 50},
		{"unanswered tail", []int{0}, 1, 25},
		{"out of range picks", []int{-1, 9, 1, 1}, 2, 50},
		{"extra picks ignored", []int{0, 3, 1, 1, 0, 0}, 4, 100},
		{"none", nil, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreQuiz(questions, tc.answers)
			assert.Equal(t, 4, got.Total)
			assert.Equal(t, tc.correct, got.Correct)
			assert.InDelta(t, tc.percent, got.Percent, 0.001)
		})
	}

	assert.Equal(t, models.QuizScore{}, ScoreQuiz(nil, []int{1}))
}
