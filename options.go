package lotscout

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	username string
	password string
	db       int

	embedder Embedder

	vectorDimensions    int
	hnswM               int
	hnswEFConstruct     int
	similarityThreshold float64
	defaultLimit        int
	profileTimeout      time.Duration
	batchSize           int
	batchInterval       time.Duration

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithRedisDB selects a logical Redis database.
func WithRedisDB(db int) Option {
	return func(c *clientConfig) {
		c.db = db
	}
}

// WithEmbedder sets the text embedding provider. Without one, structured
// retrieval still works; semantic queries fall back to substring matching.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithVectorDimensions sets the catalog embedding dimension. Defaults to 768.
func WithVectorDimensions(dim int) Option {
	return func(c *clientConfig) {
		c.vectorDimensions = dim
	}
}

// WithHNSW configures HNSW index parameters. Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	}
}

// WithSimilarityThreshold sets the minimum cosine similarity for semantic
// matches. Defaults to 0.1.
func WithSimilarityThreshold(t float64) Option {
	return func(c *clientConfig) {
		c.similarityThreshold = t
	}
}

// WithDefaultLimit sets the result cap used when a query has none. Defaults
// to 20.
func WithDefaultLimit(n int) Option {
	return func(c *clientConfig) {
		c.defaultLimit = n
	}
}

// WithProfileTimeout bounds each scoreboard profile's retrieval. Defaults to
// 5 seconds.
func WithProfileTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.profileTimeout = d
	}
}

// WithEmbeddingBatch configures the backfill job: vehicles per run and the
// spacing between provider calls. Defaults: 20 vehicles, 500ms.
func WithEmbeddingBatch(size int, interval time.Duration) Option {
	return func(c *clientConfig) {
		c.batchSize = size
		c.batchInterval = interval
	}
}

// WithLogger enables structured logging for client operations. Defaults to a
// no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
