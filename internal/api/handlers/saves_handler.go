package handlers

import (
	"encoding/json"
	"fmt"

	"handraft-backend/internal/dto"
	"handraft-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var saveKinds = map[string]bool{
	"invoice": true,
	"book":    true,
}

// SavesHandler stores free-form drafts keyed by kind and entity id so the UI
// can restore in-progress work between visits.
type SavesHandler struct {
	store  *storage.FileStore
	logger *zap.Logger
}

func NewSavesHandler(store *storage.FileStore, logger *zap.Logger) *SavesHandler {
	return &SavesHandler{store: store, logger: logger}
}

func (h *SavesHandler) Get(c *fiber.Ctx) error {
	kind := c.Params("kind")
	if !saveKinds[kind] {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation,
			fmt.Sprintf("Unknown save kind %q", kind))
	}

	data, err := h.store.LoadAdminEntry(kind, c.Params("entity_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func (h *SavesHandler) Put(c *fiber.Ctx) error {
	kind := c.Params("kind")
	if !saveKinds[kind] {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation,
			fmt.Sprintf("Unknown save kind %q", kind))
	}

	var payload map[string]any
	if err := json.Unmarshal(c.Body(), &payload); err != nil || payload == nil {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation, "Body must be a JSON object")
	}

	if err := h.store.SaveAdminEntry(kind, c.Params("entity_id"), payload); err != nil {
		return err
	}

	h.logger.Info("admin save stored",
		zap.String("kind", kind),
		zap.String("entity_id", c.Params("entity_id")))
	return c.JSON(fiber.Map{"success": true})
}
