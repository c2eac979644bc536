package models

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	UserNotes     *string   `json:"user_notes"`
	IsAIGenerated bool      `json:"is_ai_generated"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SaveSummaryNoteRequest struct {
	Title      string `json:"title" validate:"max=200"`
	Summary    string `json:"summary" validate:"required"`
	SourceText string `json:"source_text"`
}

type SaveQuizNoteRequest struct {
	Title     string         `json:"title" validate:"max=200"`
	Questions []QuizQuestion `json:"questions" validate:"required,min=1"`
}

type UpdateUserNotesRequest struct {
	UserNotes string `json:"user_notes"`
}
