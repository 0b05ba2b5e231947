package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/docqa-backend/internal/http/handlers"
	httpMW "github.com/yungbote/docqa-backend/internal/http/middleware"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log          *logger.Logger
	ServiceName  string
	AllowOrigins []string

	DocumentHandler *httpH.DocumentHandler
	AskHandler      *httpH.AskHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Documents
	if cfg.DocumentHandler != nil {
		r.POST("/upload/", cfg.DocumentHandler.Upload)
		r.GET("/documents/", cfg.DocumentHandler.List)
		r.DELETE("/documents/:document_id", cfg.DocumentHandler.Delete)
	}

	// QA
	if cfg.AskHandler != nil {
		r.POST("/ask/", cfg.AskHandler.Ask)
	}

	return r
}
