package testutil

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	types "github.com/yungbote/docqa-backend/internal/domain"
)

func SeedDocument(tb testing.TB, ctx context.Context, db *gorm.DB, filename, text string, uploadedAt time.Time) *types.Document {
	tb.Helper()
	doc := &types.Document{
		Filename:   filename,
		UploadDate: uploadedAt.UTC(),
		Text:       text,
		TextLength: utf8.RuneCountInString(text),
	}
	if err := db.WithContext(ctx).Create(doc).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return doc
}
