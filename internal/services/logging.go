package services

import (
	"context"

	"github.com/yungbote/docqa-backend/internal/platform/ctxutil"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
)

// requestLog scopes log to the HTTP request carried by ctx, if any.
func requestLog(ctx context.Context, log *logger.Logger) *logger.Logger {
	if kv := ctxutil.LogFields(ctx); len(kv) > 0 {
		return log.With(kv...)
	}
	return log
}
