package config

import (
	"time"

	"github.com/storehub/storehub/internal/logger"
)

// Auth holds token issuance and verification settings.
type Auth struct {
	Secret    string        // HMAC secret used to sign and verify bearer tokens
	Algorithm string        // signing algorithm, pinned at verification time
	TokenTTL  time.Duration // lifetime of issued bearer tokens
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Auth      Auth
	Log       logger.Log
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   // disable recover middleware
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
}

// DefaultAlgorithm is used when auth.algorithm is not configured.
const DefaultAlgorithm = "HS256"

// DefaultTokenTTL is used when auth.tokenttl is not configured.
const DefaultTokenTTL = 24 * time.Hour

// DefaultShutDownTime in seconds is used when webserver.shutdowntime is not configured.
const DefaultShutDownTime = 5

// SignAlgorithm returns the configured signing algorithm or the default.
func (a Auth) SignAlgorithm() string {
	if a.Algorithm == "" {
		return DefaultAlgorithm
	}

	return a.Algorithm
}

// TokenLifetime returns the configured token lifetime or the default.
func (a Auth) TokenLifetime() time.Duration {
	if a.TokenTTL == 0 {
		return DefaultTokenTTL
	}

	return a.TokenTTL
}

// DrainTime returns the configured shutdown wait or the default.
func (w Webserver) DrainTime() int {
	if w.ShutDownTime == 0 {
		return DefaultShutDownTime
	}

	return w.ShutDownTime
}
