package handlers

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"handraft-backend/internal/dto"
	"handraft-backend/internal/service"
	"handraft-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TranscribeHandler struct {
	transcription *service.TranscriptionService
	store         *storage.FileStore
	maxPages      int
	logger        *zap.Logger
}

func NewTranscribeHandler(transcription *service.TranscriptionService, store *storage.FileStore, maxPages int, logger *zap.Logger) *TranscribeHandler {
	return &TranscribeHandler{
		transcription: transcription,
		store:         store,
		maxPages:      maxPages,
		logger:        logger,
	}
}

// Upload accepts one or more page photos, stores the originals under a new
// session and returns the combined transcription.
func (h *TranscribeHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation, "Expected multipart form data")
	}

	files := form.File["files"]
	if len(files) == 0 {
		// Older clients send a single page under "file".
		files = form.File["file"]
	}
	if len(files) == 0 {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation, "body.files: Field required")
	}
	if len(files) > h.maxPages {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation,
			fmt.Sprintf("Too many pages: %d (maximum %d)", len(files), h.maxPages))
	}

	sessionID := uuid.New().String()
	pages := make([]service.UploadPage, 0, len(files))
	for i, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return dto.NewAPIError(fiber.StatusBadRequest, dto.ErrCodeValidation,
				fmt.Sprintf("File %q is not an image", fh.Filename))
		}
		data, err := readUpload(fh)
		if err != nil {
			h.logger.Error("failed to read upload", zap.String("filename", fh.Filename), zap.Error(err))
			return err
		}
		if _, err := h.store.SaveUpload(sessionID, i+1, fh.Filename, bytes.NewReader(data)); err != nil {
			return err
		}
		pages = append(pages, service.UploadPage{
			Filename:    fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	text, err := h.transcription.Transcribe(c.UserContext(), pages)
	if err != nil {
		return err
	}
	if err := h.store.SaveTranscription(sessionID, text); err != nil {
		return err
	}

	h.logger.Info("transcription complete",
		zap.String("session_id", sessionID),
		zap.Int("pages", len(pages)))

	return c.JSON(dto.TranscriptionResponse{
		SessionID:     sessionID,
		Transcription: text,
		PageCount:     len(pages),
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
