package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"studybuddy-backend/internal/middleware"
	"studybuddy-backend/internal/models"
	"studybuddy-backend/internal/services"
)

type noteRepository interface {
	Create(ctx context.Context, n *models.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error)
	ListByUser(ctx context.Context, userID uuid.UUID, search string, limit, offset int) ([]*models.Note, int, error)
	UpdateUserNotes(ctx context.Context, id uuid.UUID, userNotes string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type NoteHandler struct {
	noteRepo noteRepository
	logger   *zap.Logger
}

func NewNoteHandler(noteRepo noteRepository, logger *zap.Logger) *NoteHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteHandler{noteRepo: noteRepo, logger: logger.Named("notes")}
}

func (h *NoteHandler) SaveSummary(w http.ResponseWriter, r *http.Request) {
	var req models.SaveSummaryNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	h.save(w, r, services.ComposeSummaryNote(req.Title, req.Summary, req.SourceText))
}

func (h *NoteHandler) SaveQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.SaveQuizNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	h.save(w, r, services.ComposeQuizNote(req.Title, req.Questions))
}

func (h *NoteHandler) save(w http.ResponseWriter, r *http.Request, draft services.NoteDraft) {
	note := &models.Note{
		UserID:        middleware.GetUserID(r.Context()),
		Title:         draft.Title,
		Content:       draft.Content,
		IsAIGenerated: draft.IsAIGenerated,
	}

	if err := h.noteRepo.Create(r.Context(), note); err != nil {
		h.logger.Error("Failed to save note", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save note", r))
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	search := r.URL.Query().Get("search")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	notes, total, err := h.noteRepo.ListByUser(r.Context(), userID, search, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list notes", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch notes", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notes":  notes,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, ok := h.ownedNote(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) UpdateUserNotes(w http.ResponseWriter, r *http.Request) {
	note, ok := h.ownedNote(w, r)
	if !ok {
		return
	}

	var req models.UpdateUserNotesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.noteRepo.UpdateUserNotes(r.Context(), note.ID, req.UserNotes); err != nil {
		h.logger.Error("Failed to update user notes", zap.Error(err), zap.String("note_id", note.ID.String()))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update note", r))
		return
	}

	note.UserNotes = &req.UserNotes
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	note, ok := h.ownedNote(w, r)
	if !ok {
		return
	}

	if err := h.noteRepo.Delete(r.Context(), note.ID); err != nil {
		h.logger.Error("Failed to delete note", zap.Error(err), zap.String("note_id", note.ID.String()))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete note", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted"})
}

// ownedNote loads the note named in the URL and checks it belongs to the caller.
func (h *NoteHandler) ownedNote(w http.ResponseWriter, r *http.Request) (*models.Note, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid note ID", r))
		return nil, false
	}

	note, err := h.noteRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Note not found", r))
		} else {
			h.logger.Error("Failed to load note", zap.Error(err), zap.String("note_id", id.String()))
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load note", r))
		}
		return nil, false
	}

	if note.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return nil, false
	}

	return note, true
}
