package filestore

import (
	"fmt"
	"net/url"
	"strings"
)

type Mode string

const (
	ModeLocal       Mode = "local"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
)

type Config struct {
	Mode         Mode
	LocalDir     string
	Bucket       string
	EmulatorHost string
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode         ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingDir          ConfigErrorCode = "missing_dir"
	ConfigErrorMissingBucket       ConfigErrorCode = "missing_bucket"
	ConfigErrorInvalidEmulatorHost ConfigErrorCode = "invalid_emulator_host"
)

type ConfigError struct {
	Code         ConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid file store config"
	}
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf("invalid FILE_STORE_MODE=%q (allowed: %q, %q, %q)", e.Mode, ModeLocal, ModeGCS, ModeGCSEmulator)
	case ConfigErrorMissingDir:
		return fmt.Sprintf("FILE_STORE_MODE=%q requires UPLOAD_DIR", e.Mode)
	case ConfigErrorMissingBucket:
		return fmt.Sprintf("FILE_STORE_MODE=%q requires GCS_BUCKET_NAME", e.Mode)
	case ConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.EmulatorHost)
	default:
		return "invalid file store config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ParseMode lowercases raw; an empty value means local.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ModeLocal, nil
	case ModeLocal, ModeGCS, ModeGCSEmulator:
		return m, nil
	default:
		return "", &ConfigError{Code: ConfigErrorInvalidMode, Mode: raw}
	}
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeLocal:
		if strings.TrimSpace(c.LocalDir) == "" {
			return &ConfigError{Code: ConfigErrorMissingDir, Mode: string(c.Mode)}
		}
	case ModeGCS, ModeGCSEmulator:
		if strings.TrimSpace(c.Bucket) == "" {
			return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(c.Mode)}
		}
		if c.Mode == ModeGCSEmulator {
			u, err := url.Parse(c.EmulatorHost)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return &ConfigError{Code: ConfigErrorInvalidEmulatorHost, Mode: string(c.Mode), EmulatorHost: c.EmulatorHost, Cause: err}
			}
		}
	default:
		return &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(c.Mode)}
	}
	return nil
}
