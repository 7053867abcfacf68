package transcriber

import (
	"strings"
	"sync"

	"scribe/internal/config"
)

// Cache hands out one engine instance per model size, built lazily. The
// orchestrator holds a cache reference and passes the requested size
// explicitly; an empty size resolves to the configured default.
type Cache struct {
	cfg         config.Transcriber
	defaultSize string

	mu      sync.Mutex
	engines map[string]Engine
	build   func(size string) Engine
}

// NewCache constructs an engine cache from configuration.
func NewCache(cfg config.Transcriber) *Cache {
	return &Cache{
		cfg:         cfg,
		defaultSize: cfg.DefaultModel,
		engines:     make(map[string]Engine),
		build: func(size string) Engine {
			return NewWhisper(cfg, size)
		},
	}
}

// WithBuilder overrides engine construction (for testing).
func (c *Cache) WithBuilder(build func(size string) Engine) *Cache {
	c.build = build
	return c
}

// DefaultSize returns the process-wide default model size.
func (c *Cache) DefaultSize() string {
	return c.defaultSize
}

// Engine returns the cached engine for the given model size, building it on
// first use. Empty or blank sizes resolve to the default.
func (c *Cache) Engine(size string) Engine {
	size = strings.TrimSpace(size)
	if size == "" {
		size = c.defaultSize
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if engine, ok := c.engines[size]; ok {
		return engine
	}
	engine := c.build(size)
	c.engines[size] = engine
	return engine
}
