package services

import (
	"fmt"
	"strings"

	"studybuddy-backend/internal/models"
)

// NoteDraft is an accepted generation result ready to be stored as a note.
type NoteDraft struct {
	Title         string
	Content       string
	IsAIGenerated bool
}

// ComposeSummaryNote renders an accepted summary, keeping the original notes below it.
func ComposeSummaryNote(title, summary, sourceText string) NoteDraft {
	title = strings.TrimSpace(title)

	heading := title
	if heading == "" {
		heading = "AI Summary"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n", heading, strings.TrimSpace(summary))
	if src := strings.TrimSpace(sourceText); src != "" {
		fmt.Fprintf(&b, "\n## Original Notes\n%s\n", src)
	}

	noteTitle := title
	if noteTitle == "" {
		noteTitle = "AI Study Session"
	}

	return NoteDraft{Title: noteTitle, Content: b.String(), IsAIGenerated: true}
}

// ComposeQuizNote renders an accepted quiz with the correct option marked.
func ComposeQuizNote(title string, questions []models.QuizQuestion) NoteDraft {
	title = strings.TrimSpace(title)

	heading := title
	if heading == "" {
		heading = "Study Session"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Quiz: %s\n", heading)
	for i, q := range questions {
		fmt.Fprintf(&b, "\n**Q%d: %s**\n", i+1, q.Question)
		for idx, opt := range q.Options {
			if idx == q.AnswerIndex {
				fmt.Fprintf(&b, "- %s ✅\n", opt)
				continue
			}
			fmt.Fprintf(&b, "- %s\n", opt)
		}
	}

	noteTitle := title
	if noteTitle == "" {
		noteTitle = "Untitled"
	}

	return NoteDraft{Title: "Quiz: " + noteTitle, Content: b.String(), IsAIGenerated: true}
}
