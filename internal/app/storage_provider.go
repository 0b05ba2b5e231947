package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/docqa-backend/internal/platform/filestore"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
)

var (
	newLocalFileStore = filestore.NewLocal
	newGCSFileStore   = filestore.NewGCS
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingDir          StorageProviderBootstrapErrorCode = "missing_dir"
	StorageProviderBootstrapErrorMissingBucket       StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "file store bootstrap failed"
	}
	return fmt.Sprintf(
		"file store bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func storageConfig(cfg Config) (filestore.Config, error) {
	mode, err := filestore.ParseMode(cfg.FileStoreMode)
	out := filestore.Config{
		Mode:         mode,
		LocalDir:     cfg.UploadDir,
		Bucket:       cfg.GCSBucket,
		EmulatorHost: cfg.GCSEmulatorHost,
	}
	if err != nil {
		out.Mode = filestore.Mode(cfg.FileStoreMode)
		return out, err
	}
	return out, out.Validate()
}

func resolveFileStore(ctx context.Context, log *logger.Logger, cfg Config) (filestore.Store, error) {
	storeCfg, err := storageConfig(cfg)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storeCfg, err)
		log.Error(
			"File store selection failed",
			"mode", storeCfg.Mode,
			"emulator_host", storeCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}

	log.Info(
		"Selecting file store",
		"mode", storeCfg.Mode,
		"dir", storeCfg.LocalDir,
		"bucket", storeCfg.Bucket,
		"emulator_host", storeCfg.EmulatorHost,
	)

	var store filestore.Store
	switch storeCfg.Mode {
	case filestore.ModeLocal:
		store, err = newLocalFileStore(log, storeCfg.LocalDir)
	default:
		store, err = newGCSFileStore(ctx, log, storeCfg)
	}
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storeCfg, err)
		log.Error(
			"File store bootstrap failed",
			"mode", storeCfg.Mode,
			"emulator_host", storeCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return store, nil
}

func classifyStorageProviderBootstrapError(storeCfg filestore.Config, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *filestore.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case filestore.ConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case filestore.ConfigErrorMissingDir:
			code = StorageProviderBootstrapErrorMissingDir
		case filestore.ConfigErrorMissingBucket:
			code = StorageProviderBootstrapErrorMissingBucket
		case filestore.ConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		}
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         string(storeCfg.Mode),
		EmulatorHost: storeCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
