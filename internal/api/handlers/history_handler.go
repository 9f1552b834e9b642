package handlers

import (
	"time"

	"handraft-backend/internal/dto"
	"handraft-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type HistoryHandler struct {
	documents *service.DocumentService
	logger    *zap.Logger
}

func NewHistoryHandler(documents *service.DocumentService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{documents: documents, logger: logger}
}

// List returns session summaries, newest first.
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	infos, err := h.documents.Sessions()
	if err != nil {
		return err
	}

	sessions := make([]dto.SessionSummary, 0, len(infos))
	for _, info := range infos {
		sessions = append(sessions, dto.SessionSummary{
			SessionID:    info.SessionID,
			ClientName:   info.ClientName,
			ProjectTitle: info.ProjectTitle,
			TotalCents:   info.TotalCents,
			DocType:      info.DocType,
			CreatedAt:    info.CreatedAt.UTC().Format(time.RFC3339),
			HasPDF:       info.HasPDF,
		})
	}

	return c.JSON(dto.SessionListResponse{
		Sessions: sessions,
		Total:    len(sessions),
	})
}

// Get returns the stored structured document for a session.
func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	docType := c.Query("document_type", "proposal")

	doc, err := h.documents.Document(sessionID, docType)
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

// Delete removes a session and everything stored under it.
func (h *HistoryHandler) Delete(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if err := h.documents.DeleteSession(sessionID); err != nil {
		return err
	}

	h.logger.Info("session deleted", zap.String("session_id", sessionID))
	return c.JSON(fiber.Map{"success": true, "session_id": sessionID})
}
