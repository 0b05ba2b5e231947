package domain

import "github.com/yungbote/docqa-backend/internal/domain/documents"

type (
	Document        = documents.Document
	DocumentSummary = documents.Summary
)
