package app

import (
	"strings"

	"github.com/yungbote/docqa-backend/internal/data/db"
	"github.com/yungbote/docqa-backend/internal/platform/envutil"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/platform/textsplit"
)

type Config struct {
	Port        string
	Environment string
	ServiceName string

	DB db.Config

	FileStoreMode   string
	UploadDir       string
	GCSBucket       string
	GCSEmulatorHost string

	EmbeddingProvider string
	EmbeddingModel    string
	EmbedConcurrency  int
	ChatProvider      string
	ChatModel         string

	GoogleAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string

	ChunkSize    int
	ChunkOverlap int

	MaxUploadBytes int64
	AllowOrigins   []string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8001"),
		Environment: envutil.String("LOG_MODE", "development"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "docqa"),
		DB: db.Config{
			Driver:           strings.ToLower(envutil.String("DB_DRIVER", db.DriverSQLite)),
			SQLitePath:       envutil.String("SQLITE_PATH", "./documents.db"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "docqa"),
		},
		FileStoreMode:   envutil.String("FILE_STORE_MODE", "local"),
		UploadDir:       envutil.String("UPLOAD_DIR", "uploads"),
		GCSBucket:       envutil.String("GCS_BUCKET_NAME", ""),
		GCSEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),

		EmbeddingProvider: strings.ToLower(envutil.String("EMBEDDING_PROVIDER", ProviderGemini)),
		EmbeddingModel:    envutil.String("EMBEDDING_MODEL", ""),
		EmbedConcurrency:  envutil.Int("EMBED_CONCURRENCY", 4),
		ChatProvider:      strings.ToLower(envutil.String("CHAT_PROVIDER", ProviderGemini)),
		ChatModel:         envutil.String("CHAT_MODEL", ""),

		GoogleAPIKey:    envutil.String("GOOGLE_API_KEY", envutil.String("GEMINI_API_KEY", "")),
		OpenAIAPIKey:    envutil.String("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   envutil.String("OPENAI_BASE_URL", ""),
		AnthropicAPIKey: envutil.String("ANTHROPIC_API_KEY", ""),

		ChunkSize:    envutil.Int("CHUNK_SIZE", textsplit.DefaultChunkSize),
		ChunkOverlap: envutil.Int("CHUNK_OVERLAP", textsplit.DefaultOverlap),

		AllowOrigins: envutil.List("CORS_ALLOW_ORIGINS", []string{"*"}),
	}
	maxMB := envutil.Int("MAX_UPLOAD_MB", 32)
	if maxMB <= 0 {
		maxMB = 32
	}
	cfg.MaxUploadBytes = int64(maxMB) << 20
	if cfg.EmbedConcurrency < 1 {
		cfg.EmbedConcurrency = 1
	}

	if log != nil {
		log.Info(
			"Configuration loaded",
			"port", cfg.Port,
			"db_driver", cfg.DB.Driver,
			"file_store_mode", cfg.FileStoreMode,
			"embedding_provider", cfg.EmbeddingProvider,
			"chat_provider", cfg.ChatProvider,
			"chunk_size", cfg.ChunkSize,
			"chunk_overlap", cfg.ChunkOverlap,
			"max_upload_bytes", cfg.MaxUploadBytes,
		)
	}
	return cfg
}
