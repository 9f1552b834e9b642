package handlers

import (
	"fmt"

	"handraft-backend/internal/dto"
	"handraft-backend/internal/ratelimit"
	"handraft-backend/internal/service"
	"handraft-backend/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ProposalHandler struct {
	documents     *service.DocumentService
	limiter       *ratelimit.Limiter
	generateLimit int
	trustProxy    bool
	logger        *zap.Logger
}

func NewProposalHandler(documents *service.DocumentService, limiter *ratelimit.Limiter, generateLimit int, trustProxy bool, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{
		documents:     documents,
		limiter:       limiter,
		generateLimit: generateLimit,
		trustProxy:    trustProxy,
		logger:        logger,
	}
}

// Generate rewrites the raw transcription into professional wording, builds
// the structured document and renders the PDF for later download.
func (h *ProposalHandler) Generate(c *fiber.Ctx) error {
	ip := middleware.ClientIP(c, h.trustProxy)
	if err := h.limiter.Check(ip, "generate", h.generateLimit); err != nil {
		return err
	}

	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation, "Invalid request body")
	}
	if req.SessionID == "" {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation, "body.session_id: Field required")
	}
	if req.RawText == "" {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation, "body.raw_text: Field required")
	}
	docType := req.DocumentType
	if docType == "" {
		docType = "proposal"
	}
	if docType != "proposal" && docType != "invoice" {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation,
			fmt.Sprintf("Unknown document_type %q", docType))
	}

	professional, doc, err := h.documents.Generate(c.UserContext(), req.SessionID, req.RawText, docType)
	if err != nil {
		return err
	}

	return c.JSON(dto.GenerateResponse{
		SessionID:        req.SessionID,
		ProfessionalText: professional,
		Document:         doc,
		DocumentType:     docType,
		Status:           "completed",
	})
}

// Download streams the rendered PDF, re-rendering from the stored document
// when the file is missing.
func (h *ProposalHandler) Download(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	docType := c.Query("document_type", "proposal")
	if docType != "proposal" && docType != "invoice" {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation,
			fmt.Sprintf("Unknown document_type %q", docType))
	}

	path, err := h.documents.EnsurePDF(sessionID, docType)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s_%s.pdf", docType, shortID(sessionID))
	return c.Download(path, name)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
