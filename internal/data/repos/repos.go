package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/docqa-backend/internal/data/repos/documents"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
)

type DocumentRepo = documents.DocumentRepo

var (
	ErrDocumentNotFound = documents.ErrNotFound
	ErrNoDocuments      = documents.ErrNoDocuments
)

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return documents.NewDocumentRepo(db, baseLog)
}
