package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	HTTPTimeout    time.Duration
	SessionSecret  string
	// ContextTTL is both the token lifetime and the idle time after which an
	// interaction context is evicted.
	ContextTTL time.Duration

	// Remote model
	LLMBackend    string // "gemini" (generative-ai-go) or "genai" (google.golang.org/genai)
	AIAPIKey      string
	GenModel      string
	GenTimeout    time.Duration
	UseVertex     bool
	CloudProject  string
	CloudLocation string

	// Durable key-value collaborator
	KVBackend   string // "bolt", "postgres" or "memory"
	BoltPath    string
	DatabaseURL string
	SslCertPath string

	// Video staging
	StorageType  string // "local" or "s3"
	UploadDir    string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	LogLevel string
	LogJSON  bool

	// problems collects values that could not be parsed; Validate reports them.
	problems []string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	env := &envReader{}
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		HTTPTimeout:    env.duration("HTTP_TIMEOUT", 6*time.Minute),
		SessionSecret:  getEnv("SESSION_SECRET", ""),
		ContextTTL:     env.duration("CONTEXT_TTL", 24*time.Hour),

		LLMBackend:    getEnv("LLM_BACKEND", "gemini"),
		AIAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GenModel:      getEnv("GEN_MODEL", "gemini-2.5-pro"),
		GenTimeout:    env.duration("GEN_TIMEOUT", 5*time.Minute),
		UseVertex:     env.boolean("GENAI_USE_VERTEX", false),
		CloudProject:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
		CloudLocation: getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),

		KVBackend:   getEnv("KV_BACKEND", "bolt"),
		BoltPath:    getEnv("BOLT_PATH", "data/vivid.bolt"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SslCertPath: getEnv("SSL_CERT_PATH", ""),

		StorageType:  getEnv("STORAGE_TYPE", "local"),
		UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "vivid-videos"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  env.boolean("LOG_JSON", true),
	}

	cfg.problems = env.problems
	return cfg
}

// Validate reports the first setting that cannot work together with the others.
func (c *Config) Validate() error {
	if len(c.problems) > 0 {
		return errors.New(strings.Join(c.problems, "; "))
	}

	switch c.LLMBackend {
	case "gemini":
		if c.AIAPIKey == "" {
			return errors.New("GEMINI_API_KEY not set")
		}
	case "genai":
		if c.UseVertex && c.CloudProject == "" {
			return errors.New("GOOGLE_CLOUD_PROJECT is required with GENAI_USE_VERTEX")
		}
		if !c.UseVertex && c.AIAPIKey == "" {
			return errors.New("GEMINI_API_KEY not set")
		}
	default:
		return fmt.Errorf("unknown LLM_BACKEND %q", c.LLMBackend)
	}

	switch c.KVBackend {
	case "bolt":
		if c.BoltPath == "" {
			return errors.New("BOLT_PATH not set")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL not set")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown KV_BACKEND %q", c.KVBackend)
	}

	switch c.StorageType {
	case "local":
		if c.UploadDir == "" {
			return errors.New("UPLOAD_DIR not set")
		}
	case "s3":
		if c.BucketName == "" {
			return errors.New("BUCKET_NAME not set")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType)
	}

	if c.GenTimeout <= 0 {
		return errors.New("GEN_TIMEOUT must be positive")
	}
	// The router's timeout middleware would cut a generation off mid-flight.
	if c.HTTPTimeout > 0 && c.HTTPTimeout <= c.GenTimeout {
		return fmt.Errorf("HTTP_TIMEOUT (%s) must exceed GEN_TIMEOUT (%s)", c.HTTPTimeout, c.GenTimeout)
	}
	if c.ContextTTL <= 0 {
		return errors.New("CONTEXT_TTL must be positive")
	}
	return nil
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// envReader parses typed settings and remembers the ones it had to default.
type envReader struct {
	problems []string
}

func (r *envReader) boolean(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("%s=%q is not a bool", key, v))
		return def
	}
	return b
}

// duration accepts Go durations ("90s") or a bare number of seconds.
func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Second
	}
	r.problems = append(r.problems, fmt.Sprintf("%s=%q is not a duration", key, v))
	return def
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
