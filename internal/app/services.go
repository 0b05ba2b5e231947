package app

import (
	"github.com/yungbote/docqa-backend/internal/platform/filestore"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/platform/pdftext"
	"github.com/yungbote/docqa-backend/internal/platform/textsplit"
	"github.com/yungbote/docqa-backend/internal/platform/vectorstore"
	"github.com/yungbote/docqa-backend/internal/platform/vectorstore/memory"
	"github.com/yungbote/docqa-backend/internal/services"
)

type Services struct {
	Indexes   services.IndexRegistry
	Documents services.DocumentService
	QA        services.QAService
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients, files filestore.Store) Services {
	log.Info("Wiring services...")

	var store vectorstore.VectorStore = memory.New()
	store = instrumentVectorStore(log, "memory", store)
	embedder := instrumentEmbedder(log, cfg.EmbeddingProvider, clients.Embedder)
	generator := instrumentGenerator(log, cfg.ChatProvider, clients.Generator)

	indexes := services.NewIndexRegistry(
		log,
		embedder,
		store,
		textsplit.New(cfg.ChunkSize, cfg.ChunkOverlap),
		cfg.EmbedConcurrency,
	)
	return Services{
		Indexes:   indexes,
		Documents: services.NewDocumentService(log, repos.Document, files, pdftext.New(), indexes),
		QA:        services.NewQAService(log, repos.Document, indexes, generator),
	}
}
