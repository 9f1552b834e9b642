package dto

import "handraft-backend/internal/docschema"

type TranscriptionResponse struct {
	SessionID     string `json:"session_id"`
	Transcription string `json:"transcription"`
	PageCount     int    `json:"page_count"`
}

type GenerateRequest struct {
	SessionID    string `json:"session_id"`
	RawText      string `json:"raw_text"`
	DocumentType string `json:"document_type"`
}

type GenerateResponse struct {
	SessionID        string              `json:"session_id"`
	ProfessionalText string              `json:"professional_text"`
	Document         *docschema.Document `json:"document"`
	DocumentType     string              `json:"document_type"`
	Status           string              `json:"status"`
}

type SessionSummary struct {
	SessionID    string `json:"session_id"`
	ClientName   string `json:"client_name"`
	ProjectTitle string `json:"project_title"`
	TotalCents   int64  `json:"total_cents"`
	DocType      string `json:"doc_type"`
	CreatedAt    string `json:"created_at"`
	HasPDF       bool   `json:"has_pdf"`
}

type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Total    int              `json:"total"`
}
