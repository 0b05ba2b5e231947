package services

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"

	"github.com/yungbote/docqa-backend/internal/data/repos"
	types "github.com/yungbote/docqa-backend/internal/domain"
	"github.com/yungbote/docqa-backend/internal/platform/dbctx"
	"github.com/yungbote/docqa-backend/internal/platform/filestore"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/platform/pdftext"
)

type UploadInput struct {
	Filename string
	Data     []byte
}

type DocumentService interface {
	// Upload either fully succeeds or leaves no row, file or index behind.
	Upload(ctx context.Context, in UploadInput) (*types.Document, error)
	List(ctx context.Context) ([]types.DocumentSummary, error)
	Delete(ctx context.Context, id uint) error
}

type documentService struct {
	log       *logger.Logger
	docs      repos.DocumentRepo
	files     filestore.Store
	extractor pdftext.Extractor
	indexes   IndexRegistry
	now       func() time.Time
}

func NewDocumentService(
	baseLog *logger.Logger,
	docs repos.DocumentRepo,
	files filestore.Store,
	extractor pdftext.Extractor,
	indexes IndexRegistry,
) DocumentService {
	return &documentService{
		log:       baseLog.With("service", "DocumentService"),
		docs:      docs,
		files:     files,
		extractor: extractor,
		indexes:   indexes,
		now:       time.Now,
	}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*types.Document, error) {
	name, err := ValidateUploadName(in.Filename)
	if err != nil {
		return nil, err
	}
	log := requestLog(ctx, s.log)
	log.Info("Upload started", "filename", name, "size_bytes", len(in.Data))

	res, err := s.extractor.Extract(in.Data)
	if err != nil {
		log.Warn("Text extraction failed", "filename", name, "error", err)
		return nil, extractionErr(err)
	}

	doc := &types.Document{
		Filename:   name,
		UploadDate: s.now().UTC().Truncate(time.Microsecond),
		Text:       res.Text,
		TextLength: utf8.RuneCountInString(res.Text),
		SizeBytes:  int64(len(in.Data)),
		PageCount:  res.PageCount,
		Metadata: datatypes.JSONMap{
			"pages_with_text": res.PagesWithText,
			"extractor":       "ledongthuc/pdf",
		},
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.docs.Create(dbc, doc); err != nil {
		log.Error("Saving document failed", "filename", name, "error", err)
		return nil, storageErr("Error saving to database", err)
	}

	key := filestore.DocumentKey(doc.ID, name)
	if err := s.files.Save(ctx, key, bytes.NewReader(in.Data)); err != nil {
		s.rollback(ctx, doc, key)
		return nil, storageErr("Error saving file", err)
	}
	if err := s.docs.UpdateStorageKey(dbc, doc.ID, key); err != nil {
		s.rollback(ctx, doc, key)
		return nil, storageErr("Error saving to database", err)
	}
	doc.StorageKey = key

	if _, err := s.indexes.Build(ctx, doc); err != nil {
		s.rollback(ctx, doc, key)
		return nil, embeddingErr(err)
	}

	log.Info("Upload completed",
		"document_id", doc.ID,
		"filename", name,
		"text_length", doc.TextLength,
		"page_count", doc.PageCount,
	)
	return doc, nil
}

// rollback undoes a partial upload. It runs even if ctx was cancelled.
func (s *documentService) rollback(ctx context.Context, doc *types.Document, key string) {
	cctx := context.WithoutCancel(ctx)
	log := requestLog(ctx, s.log)
	if err := s.docs.FullDeleteByID(dbctx.Context{Ctx: cctx}, doc.ID); err != nil && !errors.Is(err, repos.ErrDocumentNotFound) {
		log.Error("Rollback: deleting row failed", "document_id", doc.ID, "error", err)
	}
	if err := s.indexes.Remove(cctx, doc.ID); err != nil {
		log.Warn("Rollback: removing index failed", "document_id", doc.ID, "error", err)
	}
	if key != "" {
		if err := s.files.Delete(cctx, key); err != nil {
			log.Warn("Rollback: deleting file failed", "document_id", doc.ID, "storage_key", key, "error", err)
		}
	}
}

func (s *documentService) List(ctx context.Context) ([]types.DocumentSummary, error) {
	rows, err := s.docs.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, storageErr("Error listing documents", err)
	}
	out := make([]types.DocumentSummary, 0, len(rows))
	for _, d := range rows {
		out = append(out, d.Summary())
	}
	return out, nil
}

func (s *documentService) Delete(ctx context.Context, id uint) error {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.docs.GetByID(dbc, id)
	if errors.Is(err, repos.ErrDocumentNotFound) {
		return notFoundErr("Document not found")
	}
	if err != nil {
		return storageErr("Error loading document", err)
	}

	if err := s.docs.FullDeleteByID(dbc, id); err != nil {
		if errors.Is(err, repos.ErrDocumentNotFound) {
			return notFoundErr("Document not found")
		}
		return storageErr("Error deleting document", err)
	}
	log := requestLog(ctx, s.log)
	if err := s.indexes.Remove(ctx, id); err != nil {
		log.Warn("Removing index failed", "document_id", id, "error", err)
	}
	if doc.StorageKey != "" {
		if err := s.files.Delete(ctx, doc.StorageKey); err != nil {
			log.Warn("Deleting stored file failed", "document_id", id, "storage_key", doc.StorageKey, "error", err)
		}
	}
	log.Info("Document deleted", "document_id", id, "filename", doc.Filename)
	return nil
}

// ValidateUploadName returns the base name of a client filename, or a
// validation error unless it ends in ".pdf" (case-sensitive).
func ValidateUploadName(filename string) (string, error) {
	name := baseName(filename)
	if name == "" || !strings.HasSuffix(name, ".pdf") {
		return "", validationErr("Only PDF files are allowed")
	}
	return name, nil
}

// baseName drops any client-supplied directories from name.
func baseName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	b := path.Base(name)
	if b == "." || b == "/" {
		return ""
	}
	return b
}
