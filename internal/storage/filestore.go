package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"handraft-backend/internal/docschema"

	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid identifier")
)

const (
	sessionsDirName = "sessions"
	savesDirName    = "admin_saves"
)

// FileStore persists session artifacts and admin saves under a single data
// directory:
//
//	sessions/<session_id>/{original_NNN_<name>, transcription.txt,
//	                       proposal.json|invoice.json, proposal.pdf|invoice.pdf}
//	admin_saves/<kind>/<entity_id>.json
//
// All writes go through a temp file in the target directory followed by a
// rename, so readers never observe partial artifacts.
type FileStore struct {
	dataDir string
	logger  *zap.Logger
}

func NewFileStore(dataDir string, logger *zap.Logger) (*FileStore, error) {
	for _, dir := range []string{
		filepath.Join(dataDir, sessionsDirName),
		filepath.Join(dataDir, savesDirName),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return &FileStore{dataDir: dataDir, logger: logger}, nil
}

// validID rejects identifiers that could escape the data directory.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}

func (s *FileStore) sessionDir(sessionID string) (string, error) {
	if !validID(sessionID) {
		return "", ErrInvalidID
	}
	return filepath.Join(s.dataDir, sessionsDirName, sessionID), nil
}

// SaveUpload stores one uploaded page under the session directory and
// returns its path.
func (s *FileStore) SaveUpload(sessionID string, page int, filename string, data io.Reader) (string, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", err
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	name := fmt.Sprintf("original_%03d_%s", page, sanitizeFilename(filename))
	path := filepath.Join(dir, name)
	if err := atomicWriteFile(path, content); err != nil {
		return "", err
	}
	return path, nil
}

func (s *FileStore) SaveTranscription(sessionID, text string) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	return atomicWriteFile(filepath.Join(dir, "transcription.txt"), []byte(text))
}

func (s *FileStore) LoadTranscription(sessionID string) (string, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, "transcription.txt"))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SaveDocument writes the structured document as <doc_type>.json. A
// regeneration replaces the whole file.
func (s *FileStore) SaveDocument(sessionID string, doc *docschema.Document) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return atomicWriteFile(filepath.Join(dir, string(doc.DocType)+".json"), data)
}

// LoadDocument reads <docType>.json, falling back to proposal.json for
// sessions written before invoices existed.
func (s *FileStore) LoadDocument(sessionID, docType string) (*docschema.Document, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, docType+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && docType != string(docschema.DocTypeProposal) {
		data, err = os.ReadFile(filepath.Join(dir, "proposal.json"))
	}
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc docschema.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode stored document: %w", err)
	}
	return &doc, nil
}

func (s *FileStore) SavePDF(sessionID, docType string, data []byte) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	return atomicWriteFile(filepath.Join(dir, docType+".pdf"), data)
}

// PDFPath returns the rendered PDF location and whether it exists.
func (s *FileStore) PDFPath(sessionID, docType string) (string, bool) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", false
	}
	path := filepath.Join(dir, docType+".pdf")
	if _, err := os.Stat(path); err != nil {
		return path, false
	}
	return path, true
}

// SessionInfo summarizes one stored session for history listings.
type SessionInfo struct {
	SessionID    string
	DocType      string
	ClientName   string
	ProjectTitle string
	TotalCents   int64
	CreatedAt    time.Time
	HasPDF       bool
}

// ListSessions returns stored sessions newest first, skipping directories
// without a readable document.
func (s *FileStore) ListSessions() ([]SessionInfo, error) {
	root := filepath.Join(s.dataDir, sessionsDirName)
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sessions []SessionInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sessionID := entry.Name()
		var doc *docschema.Document
		var docType string
		for _, dt := range []string{string(docschema.DocTypeProposal), string(docschema.DocTypeInvoice)} {
			if d, err := s.LoadDocument(sessionID, dt); err == nil {
				doc, docType = d, dt
				break
			}
		}
		if doc == nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		_, hasPDF := s.PDFPath(sessionID, docType)
		sessions = append(sessions, SessionInfo{
			SessionID:    sessionID,
			DocType:      docType,
			ClientName:   doc.Client.Name,
			ProjectTitle: doc.Project.Title,
			TotalCents:   doc.Totals.TotalCents,
			CreatedAt:    info.ModTime(),
			HasPDF:       hasPDF,
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (s *FileStore) DeleteSession(sessionID string) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return ErrNotFound
	}
	return os.RemoveAll(dir)
}

// SaveAdminEntry stores a raw JSON object under admin_saves/<kind>/<id>.json.
func (s *FileStore) SaveAdminEntry(kind, entityID string, payload map[string]any) error {
	if !validID(kind) || !validID(entityID) {
		return ErrInvalidID
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}
	path := filepath.Join(s.dataDir, savesDirName, kind, entityID+".json")
	return atomicWriteFile(path, data)
}

// LoadAdminEntry reads a stored save; a missing entry is an empty object.
func (s *FileStore) LoadAdminEntry(kind, entityID string) (map[string]any, error) {
	if !validID(kind) || !validID(entityID) {
		return nil, ErrInvalidID
	}
	path := filepath.Join(s.dataDir, savesDirName, kind, entityID+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode stored save: %w", err)
	}
	return payload, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	return name
}

// atomicWriteFile writes to a temp file in the destination directory and
// renames it into place.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
