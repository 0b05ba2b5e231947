package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/docqa-backend/internal/data/repos"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
)

type Repos struct {
	Document repos.DocumentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Document: repos.NewDocumentRepo(db, log),
	}
}
