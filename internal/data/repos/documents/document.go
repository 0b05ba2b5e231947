package documents

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/docqa-backend/internal/domain"
	"github.com/yungbote/docqa-backend/internal/platform/dbctx"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrNoDocuments = errors.New("no documents")
)

type DocumentRepo interface {
	Create(dbc dbctx.Context, doc *types.Document) (*types.Document, error)
	// List returns every document in id order without its text.
	List(dbc dbctx.Context) ([]*types.Document, error)
	// MostRecent returns the latest upload_date, ties going to the higher id.
	MostRecent(dbc dbctx.Context) (*types.Document, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Document, error)
	UpdateStorageKey(dbc dbctx.Context, id uint, key string) error
	FullDeleteByID(dbc dbctx.Context, id uint) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	repoLog := baseLog.With("repo", "DocumentRepo")
	return &documentRepo{db: db, log: repoLog}
}

func (r *documentRepo) Create(dbc dbctx.Context, doc *types.Document) (*types.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	if err := dbc.DB(r.db).Create(doc).Error; err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

func (r *documentRepo) List(dbc dbctx.Context) ([]*types.Document, error) {
	results := []*types.Document{}
	if err := dbc.DB(r.db).
		Omit("text").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return results, nil
}

func (r *documentRepo) MostRecent(dbc dbctx.Context) (*types.Document, error) {
	var doc types.Document
	err := dbc.DB(r.db).
		Order("upload_date DESC").
		Order("id DESC").
		Limit(1).
		Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoDocuments
	}
	if err != nil {
		return nil, fmt.Errorf("most recent document: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) GetByID(dbc dbctx.Context, id uint) (*types.Document, error) {
	var doc types.Document
	err := dbc.DB(r.db).Where("id = ?", id).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %d: %w", id, err)
	}
	return &doc, nil
}

func (r *documentRepo) UpdateStorageKey(dbc dbctx.Context, id uint, key string) error {
	res := dbc.DB(r.db).Model(&types.Document{}).Where("id = ?", id).Update("storage_key", key)
	if res.Error != nil {
		return fmt.Errorf("update storage key %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *documentRepo) FullDeleteByID(dbc dbctx.Context, id uint) error {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Document{})
	if res.Error != nil {
		return fmt.Errorf("delete document %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
