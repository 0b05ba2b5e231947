package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/docqa-backend/internal/data/repos"
	"github.com/yungbote/docqa-backend/internal/platform/dbctx"
	"github.com/yungbote/docqa-backend/internal/platform/llm"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
)

type Answer struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	SourceDocument string `json:"source_document"`
}

// QAService answers questions from the most recently uploaded document only.
type QAService interface {
	Answer(ctx context.Context, question string) (*Answer, error)
}

type qaService struct {
	log       *logger.Logger
	docs      repos.DocumentRepo
	indexes   IndexRegistry
	generator llm.Generator
	topK      int
}

func NewQAService(baseLog *logger.Logger, docs repos.DocumentRepo, indexes IndexRegistry, generator llm.Generator) QAService {
	return &qaService{
		log:       baseLog.With("service", "QAService"),
		docs:      docs,
		indexes:   indexes,
		generator: generator,
		topK:      DefaultTopK,
	}
}

func (s *qaService) Answer(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, validationErr("question is required")
	}

	doc, err := s.docs.MostRecent(dbctx.Context{Ctx: ctx})
	if errors.Is(err, repos.ErrNoDocuments) {
		return nil, noDocumentsErr()
	}
	if err != nil {
		return nil, storageErr("Error loading document", err)
	}
	log := requestLog(ctx, s.log)
	log.Debug("Answering from document", "document_id", doc.ID, "filename", doc.Filename)

	idx, err := s.indexes.Ensure(ctx, doc)
	if errors.Is(err, ErrNotFound) {
		// deleted between MostRecent and Ensure
		return nil, notFoundErr("Document not found")
	}
	if err != nil {
		return nil, retrievalErr(err)
	}
	chunks, err := s.indexes.Search(ctx, idx, question, s.topK)
	if err != nil {
		return nil, retrievalErr(err)
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	prompt, err := renderAnswerPrompt(strings.Join(texts, "\n"), question)
	if err != nil {
		return nil, generationErr(fmt.Errorf("render prompt: %w", err))
	}
	out, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Warn("Generation failed", "document_id", doc.ID, "error", err)
		return nil, generationErr(err)
	}

	log.Info("Question answered", "document_id", doc.ID, "chunks", len(chunks))
	return &Answer{Question: question, Answer: out, SourceDocument: doc.Filename}, nil
}
