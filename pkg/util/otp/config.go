package otp

import "github.com/clinicpulse/clinicpulse_backend/config"

// Config holds OTP generation settings
type Config struct {
	// DefaultLength is the default OTP length (typically 6)
	DefaultLength int

	// MinLength is the minimum allowed OTP length
	MinLength int

	// MaxLength is the maximum allowed OTP length
	MaxLength int

	// MaxAttempts is how many wrong codes are tolerated before the OTP
	// is invalidated
	MaxAttempts int
}

// DefaultConfig returns sensible defaults for OTP generation
func DefaultConfig() Config {
	return Config{
		DefaultLength: 6,
		MinLength:     4,
		MaxLength:     10,
		MaxAttempts:   5,
	}
}

// Validate checks if the config values are valid
func (c Config) Validate() error {
	if c.DefaultLength < c.MinLength || c.DefaultLength > c.MaxLength {
		return ErrInvalidLength
	}
	if c.MinLength < 1 {
		return ErrInvalidLength
	}
	if c.MaxLength < c.MinLength {
		return ErrInvalidLength
	}
	return nil
}

// FromCentralConfig converts central config.OTPConfig to package Config
func FromCentralConfig(c config.OTPConfig) Config {
	cfg := Config{
		DefaultLength: c.DefaultLength,
		MinLength:     c.MinLength,
		MaxLength:     c.MaxLength,
		MaxAttempts:   c.MaxAttempts,
	}
	if cfg.DefaultLength == 0 {
		cfg.DefaultLength = DefaultLength
	}
	if cfg.MinLength == 0 {
		cfg.MinLength = MinLength
	}
	if cfg.MaxLength == 0 {
		cfg.MaxLength = MaxLength
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 5
	}
	return cfg
}
