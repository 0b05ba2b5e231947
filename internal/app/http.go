package app

import (
	"github.com/yungbote/docqa-backend/internal/http"
	httpH "github.com/yungbote/docqa-backend/internal/http/handlers"
	"github.com/yungbote/docqa-backend/internal/observability"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Document *httpH.DocumentHandler
	Ask      *httpH.AskHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Document: httpH.NewDocumentHandler(log, services.Documents, cfg.MaxUploadBytes),
		Ask:      httpH.NewAskHandler(log, services.QA),
	}
}

func routerConfig(log *logger.Logger, cfg Config, handlers Handlers) http.RouterConfig {
	rc := http.RouterConfig{
		Log:             log,
		AllowOrigins:    cfg.AllowOrigins,
		HealthHandler:   handlers.Health,
		DocumentHandler: handlers.Document,
		AskHandler:      handlers.Ask,
	}
	if observability.Enabled() {
		rc.ServiceName = cfg.ServiceName
	}
	return rc
}
