package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studybuddy-backend/internal/middleware"
	"studybuddy-backend/internal/models"
	"studybuddy-backend/internal/services"
)

type contentGenerator interface {
	Generate(ctx context.Context, kind models.ResultKind, req models.GenerationRequest) models.GenerationResult
}

type generationGuard interface {
	Acquire(ctx context.Context, userID uuid.UUID) (func(), error)
}

type sourceExtractor interface {
	Extract(fileName string, data []byte) (*models.UploadResponse, error)
}

// StudioHandler serves the AI study studio: generation, uploads and scoring.
type StudioHandler struct {
	generator      contentGenerator
	guard          generationGuard
	extractor      sourceExtractor
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewStudioHandler(generator contentGenerator, guard generationGuard, extractor sourceExtractor, maxUploadBytes int64, logger *zap.Logger) *StudioHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudioHandler{
		generator:      generator,
		guard:          guard,
		extractor:      extractor,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Named("studio"),
	}
}

func (h *StudioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, models.ResultSummary)
}

func (h *StudioHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, models.ResultQuiz)
}

func (h *StudioHandler) generate(w http.ResponseWriter, r *http.Request, kind models.ResultKind) {
	var req models.StudioRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	release, err := h.guard.Acquire(r.Context(), userID)
	if err != nil {
		var conflict *services.ConflictError
		if !errors.As(err, &conflict) {
			h.logger.Error("Generation guard unavailable", zap.Error(err))
		}
		handleServiceError(w, r, err)
		return
	}
	defer release()

	result := h.generator.Generate(r.Context(), kind, req.ToGenerationRequest())

	if result.Kind == models.ResultFailure {
		status, code := generationFailureStatus(services.FailureKind(result.Failure.Code))
		writeJSON(w, status, errorResp(code, result.Failure.Message, r))
		return
	}

	if kind == models.ResultQuiz && len(result.Questions) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("QUIZ_EMPTY", "The AI did not return any usable questions. Please try again.", r))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *StudioHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File is too large", r))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File is too large", r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Could not read uploaded file", r))
		return
	}

	resp, err := h.extractor.Extract(header.Filename, data)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.logger.Info("Source file prepared",
		zap.String("file", resp.FileName),
		zap.Int("bytes", len(data)),
		zap.Bool("inline", resp.AttachedFile != nil))

	writeJSON(w, http.StatusOK, resp)
}

func (h *StudioHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreQuizRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, services.ScoreQuiz(req.Questions, req.Answers))
}
