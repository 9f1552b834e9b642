package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"handraft-backend/internal/llm"

	"go.uber.org/zap"
)

const transcriptionPrompt = "Transcribe all handwritten text from this image. " +
	"This is a construction proposal written by a contractor. " +
	"Extract exactly what is written, maintaining the structure and details."

// pageFailureStub stands in for a page whose transcription failed in a
// multi-page batch, so one bad photo does not lose the rest.
const pageFailureStub = "[page could not be transcribed]"

// UploadPage is one uploaded image, already read into memory by the handler.
type UploadPage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TranscriptionService turns handwritten page photos into text via the
// vision model.
type TranscriptionService struct {
	completer llm.Completer
	model     string
	logger    *zap.Logger
}

func NewTranscriptionService(completer llm.Completer, visionModel string, logger *zap.Logger) *TranscriptionService {
	return &TranscriptionService{
		completer: completer,
		model:     visionModel,
		logger:    logger,
	}
}

// TranscribePage transcribes a single page image.
func (s *TranscriptionService) TranscribePage(ctx context.Context, page UploadPage) (string, error) {
	contentType := page.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s",
		contentType, base64.StdEncoding.EncodeToString(page.Data))

	text, err := s.completer.Complete(ctx, llm.CompletionRequest{
		Model:        s.model,
		User:         transcriptionPrompt,
		ImageDataURL: dataURL,
		MaxTokens:    2000,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Transcribe handles a batch of pages. A single-page failure is fatal; in
// multi-page batches a failed page degrades to a stub marker and the batch
// continues. Pages are joined in upload order with page markers.
func (s *TranscriptionService) Transcribe(ctx context.Context, pages []UploadPage) (string, error) {
	if len(pages) == 1 {
		return s.TranscribePage(ctx, pages[0])
	}

	results := make([]string, 0, len(pages))
	for i, page := range pages {
		text, err := s.TranscribePage(ctx, page)
		if err != nil {
			s.logger.Error("page transcription failed, substituting stub",
				zap.Int("page", i+1),
				zap.String("filename", page.Filename),
				zap.Error(err))
			text = pageFailureStub
		}
		results = append(results, fmt.Sprintf("--- Page %d ---\n%s", i+1, text))
	}
	return strings.Join(results, "\n\n"), nil
}
