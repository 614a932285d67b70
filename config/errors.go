package config

import "errors"

// Validation errors returned by Config.Validate.
var (
	ErrNoPort             = errors.New("invalid config: port must not be empty")
	ErrNoModelPath        = errors.New("invalid config: model_dir or model_file_name must be set")
	ErrInvalidLoadTimeout = errors.New("invalid config: load_timeout_seconds must be positive")
	ErrInvalidPoolSize    = errors.New("invalid config: pool_size must be positive")
	ErrInvalidUploadLimit = errors.New("invalid config: max_upload_bytes must be positive")
	ErrInvalidMaxPixels   = errors.New("invalid config: max_pixels must be positive")
	ErrNoAllowedFormats   = errors.New("invalid config: allowed_formats must not be empty")
	ErrInvalidRateLimit   = errors.New("invalid config: rate_limit_per_minute must be non-negative")
)
