package server

import (
	"time"

	"github.com/agentstation/designlib/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	Host string
	Port int

	PathPrefix string

	// CORSOrigins enables CORS for the listed origins; "*" allows any.
	// Empty disables CORS.
	CORSOrigins []string

	// MaxUploadBytes caps request bodies (0 disables the cap).
	MaxUploadBytes int64

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:           constants.DefaultServerHost,
		Port:           constants.DefaultServerPort,
		PathPrefix:     constants.APIPrefix,
		CORSOrigins:    []string{},
		MaxUploadBytes: constants.DefaultMaxUploadBytes,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
	}
}
