package chnative

import (
	"crypto/tls"
	"time"

	"github.com/cloudflare/ch-native/compress"
	"github.com/cloudflare/ch-native/pool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Options configures Dial. It is a flat struct populated by the caller
// rather than a global singleton, the same shape cloudflared's
// config.Configuration takes.
type Options struct {
	// Addresses is one or more "host:port" strings. When more than one is
	// given, Dial races connection attempts across all of them.
	Addresses []string

	Database string
	User     string
	Password string

	TLSConfig *tls.Config

	Compression compress.Method

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// BufferPoolTiers overrides pool.DefaultTiers when non-nil.
	BufferPoolTiers []int

	Logger         zerolog.Logger
	TracerProvider trace.TracerProvider

	// MaxRetries and RetryForever govern the retry.BackoffHandler Dial
	// constructs per address attempt; zero value means one attempt, no
	// retry.
	MaxRetries   uint
	RetryForever bool
	BackoffBase  time.Duration
}

func (o Options) pool() *pool.Pool {
	if len(o.BufferPoolTiers) == 0 {
		return pool.NewDefault()
	}
	return pool.New(o.BufferPoolTiers)
}

func (o Options) dialTimeout() time.Duration {
	if o.DialTimeout > 0 {
		return o.DialTimeout
	}
	return 10 * time.Second
}
