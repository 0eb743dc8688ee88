package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"photo-loader/internal/utils"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL       = "https://picsum.photos"
	DefaultListenAddr    = ":8080"
	DefaultThumbnailSize = 40
	DefaultFetchTimeout  = 30 * time.Second
	DefaultUserAgent     = "photo-loader"

	envFile = "main.env"
)

var ErrInvalidValue = errors.New("invalid config value")

type Config struct {
	Env string

	BaseURL       string
	ListenAddr    string
	ThumbnailSize int
	FetchTimeout  time.Duration
	UserAgent     string

	CacheTTL      time.Duration
	RespectRobots bool

	RedisURI      string
	RedisPassword string
	RedisDB       int

	KafkaAddr        string
	KafkaUser        string
	KafkaPassword    string
	KafkaEventsTopic string

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	OTLPEndpoint string
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// LoadEnvFile loads main.env into the process environment outside prod. A
// missing file is not an error.
func LoadEnvFile() error {
	if os.Getenv("APP_ENV") == "prod" {
		return nil
	}

	err := godotenv.Load(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	return nil
}

func Load() (*Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, applying defaults for unset keys.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	r := reader{lookup: lookup}

	cfg := &Config{
		Env:           r.getString("APP_ENV", "dev"),
		BaseURL:       utils.CorrectURLScheme(r.getString("BASE_URL", DefaultBaseURL)),
		ListenAddr:    r.getString("LISTEN_ADDR", DefaultListenAddr),
		ThumbnailSize: r.getInt("THUMBNAIL_SIZE", DefaultThumbnailSize),
		FetchTimeout:  r.getDuration("FETCH_TIMEOUT", DefaultFetchTimeout),
		UserAgent:     r.getString("USER_AGENT", DefaultUserAgent),

		CacheTTL:      r.getDuration("CACHE_TTL", 0),
		RespectRobots: r.getBool("RESPECT_ROBOTS", false),

		RedisURI:      r.getString("REDIS_URI", ""),
		RedisPassword: r.getString("REDIS_PASSWORD", ""),
		RedisDB:       r.getInt("REDIS_DB", 0),

		KafkaAddr:        r.getString("KAFKA_ADDR", ""),
		KafkaUser:        r.getString("KAFKA_USERNAME", ""),
		KafkaPassword:    r.getString("KAFKA_PASSWORD", ""),
		KafkaEventsTopic: r.getString("KAFKA_TOPIC_EVENTS", "photo-loader.states"),

		Neo4jURI:      r.getString("NEO4J_URI", ""),
		Neo4jUser:     r.getString("NEO4J_USER", ""),
		Neo4jPassword: r.getString("NEO4J_PASSWORD", ""),
		Neo4jDatabase: r.getString("NEO4J_DATABASE", "neo4j"),

		OTLPEndpoint: r.getString("OTLP_ENDPOINT", ""),
	}

	if r.err != nil {
		return nil, r.err
	}

	if cfg.ThumbnailSize <= 0 {
		return nil, fmt.Errorf("%w: THUMBNAIL_SIZE must be positive, got %d", ErrInvalidValue, cfg.ThumbnailSize)
	}

	return cfg, nil
}

type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) getString(key, def string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (r *reader) getInt(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *reader) getBool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *reader) getDuration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

func (r *reader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, key, value, err)
	}
}
