package service

import (
	"context"
	"fmt"

	"handraft-backend/internal/docgen"
	"handraft-backend/internal/docschema"
	"handraft-backend/internal/llm"
	"handraft-backend/internal/render"
	"handraft-backend/internal/storage"

	"go.uber.org/zap"
)

const rewriteSystemPrompt = `You are an experienced residential construction business owner writing professional proposals. Transform handwritten notes into polished, professional documents while:

1. PRESERVING ALL INFORMATION - include every detail, measurement, material, cost, and timeline mentioned
2. Using clear, professional language that homeowners can easily understand
3. Maintaining the confident, trustworthy tone of a successful contractor
4. Organizing information logically (scope, materials, pricing, timeline, terms)

DO NOT:
- Remove or summarize any details from the original
- Use overly complex or corporate language
- Add information that was not in the original

Write as if you are personally explaining the project to a valued client.`

// DocumentService runs the full generation pipeline for one session:
// professional rewrite, schema-validated structuring, persistence and PDF
// render.
type DocumentService struct {
	completer llm.Completer
	generator *docgen.Generator
	renderer  *render.Renderer
	store     *storage.FileStore
	model     string
	logger    *zap.Logger
}

func NewDocumentService(
	completer llm.Completer,
	generator *docgen.Generator,
	renderer *render.Renderer,
	store *storage.FileStore,
	model string,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		completer: completer,
		generator: generator,
		renderer:  renderer,
		store:     store,
		model:     model,
		logger:    logger,
	}
}

// Generate converts transcribed text into a validated, persisted, rendered
// document. Artifacts are written atomically; a failure leaves no partial
// session state behind.
func (s *DocumentService) Generate(ctx context.Context, sessionID, rawText, docType string) (string, *docschema.Document, error) {
	professional, err := s.rewriteProfessional(ctx, rawText)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("professional rewrite done", zap.String("session_id", sessionID))

	prompt := fmt.Sprintf("The document type is %q; set doc_type accordingly.\n\n%s", docType, professional)
	doc, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("structured document generated",
		zap.String("session_id", sessionID),
		zap.String("doc_id", doc.DocID),
		zap.Int("line_items", len(doc.LineItems)))

	if err := s.store.SaveDocument(sessionID, doc); err != nil {
		return "", nil, fmt.Errorf("failed to persist document: %w", err)
	}

	pdfBytes, err := s.renderer.Render(doc, render.Options{})
	if err != nil {
		return "", nil, fmt.Errorf("failed to render document: %w", err)
	}
	if err := s.store.SavePDF(sessionID, string(doc.DocType), pdfBytes); err != nil {
		return "", nil, fmt.Errorf("failed to persist pdf: %w", err)
	}

	return professional, doc, nil
}

func (s *DocumentService) rewriteProfessional(ctx context.Context, rawText string) (string, error) {
	return s.completer.Complete(ctx, llm.CompletionRequest{
		Model:       s.model,
		System:      rewriteSystemPrompt,
		User:        rawText,
		MaxTokens:   2500,
		Temperature: 0.3,
	})
}

// EnsurePDF returns the PDF path for a session, rendering it from the stored
// document when the file is missing.
func (s *DocumentService) EnsurePDF(sessionID, docType string) (string, error) {
	path, ok := s.store.PDFPath(sessionID, docType)
	if ok {
		return path, nil
	}

	doc, err := s.store.LoadDocument(sessionID, docType)
	if err != nil {
		return "", err
	}
	pdfBytes, err := s.renderer.Render(doc, render.Options{})
	if err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	if err := s.store.SavePDF(sessionID, string(doc.DocType), pdfBytes); err != nil {
		return "", fmt.Errorf("failed to persist pdf: %w", err)
	}
	path, _ = s.store.PDFPath(sessionID, string(doc.DocType))
	return path, nil
}

func (s *DocumentService) Document(sessionID, docType string) (*docschema.Document, error) {
	return s.store.LoadDocument(sessionID, docType)
}

func (s *DocumentService) Sessions() ([]storage.SessionInfo, error) {
	return s.store.ListSessions()
}

func (s *DocumentService) DeleteSession(sessionID string) error {
	return s.store.DeleteSession(sessionID)
}
