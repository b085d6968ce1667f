package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds every environment-sourced setting the service needs.
// It is built once at startup and handed by pointer to each
// constructor; no component reads the environment after Load returns.
type Config struct {
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresSchema   string
	PostgresSSLMode  string

	BucketName         string
	CompanyFilesPrefix string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	ModelClassifier string
	ModelGeneric    string
	ModelDB         string
	ModelDocs       string

	MaxResultRows   int
	MaxContextChars int

	CORSAllowOrigin string
	Port            string
}

// Load reads the environment and returns the immutable configuration.
// Missing required keys fail startup with a descriptive error.
func Load() (*Config, error) {
	cfg := &Config{
		PostgresSSLMode: envOrDefault("POSTGRES_SSLMODE", "require"),
		CORSAllowOrigin: envOrDefault("CORS_ALLOW_ORIGIN", "*"),
		Port:            envOrDefault("PORT", "8080"),
	}

	var err error
	required := []struct {
		name   string
		target *string
	}{
		{"POSTGRES_HOST", &cfg.PostgresHost},
		{"POSTGRES_DB", &cfg.PostgresDB},
		{"POSTGRES_USER", &cfg.PostgresUser},
		{"POSTGRES_PASSWORD", &cfg.PostgresPassword},
		{"POSTGRES_SCHEMA", &cfg.PostgresSchema},
		{"BUCKET_NAME", &cfg.BucketName},
		{"COMPANY_FILES_PREFIX", &cfg.CompanyFilesPrefix},
		{"OPENAI_API_KEY", &cfg.OpenAIAPIKey},
		{"OPENAI_BASE_URL", &cfg.OpenAIBaseURL},
		{"MODEL_CLASSIFIER", &cfg.ModelClassifier},
		{"MODEL_GENERIC", &cfg.ModelGeneric},
		{"MODEL_DB", &cfg.ModelDB},
		{"MODEL_DOCS", &cfg.ModelDocs},
	}
	for _, r := range required {
		if *r.target, err = requireEnv(r.name); err != nil {
			return nil, err
		}
	}

	if cfg.PostgresPort, err = requireIntEnv("POSTGRES_PORT"); err != nil {
		return nil, err
	}
	if cfg.MaxResultRows, err = requireIntEnv("MAX_RESULT_ROWS"); err != nil {
		return nil, err
	}
	if cfg.MaxContextChars, err = intEnvOrDefault("MAX_CONTEXT_CHARS", 16000); err != nil {
		return nil, err
	}

	return cfg, nil
}

// PostgresDSN renders the lib/pq connection string. search_path is
// forwarded to the server so generated SQL can use short table names.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s search_path=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresUser,
		c.PostgresPassword, c.PostgresSchema, c.PostgresSSLMode,
	)
}

func requireEnv(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("missing required environment variable %s", name)
	}
	return value, nil
}

func requireIntEnv(name string) (int, error) {
	raw, err := requireEnv(name)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer: %w", name, err)
	}
	return value, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func intEnvOrDefault(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer: %w", name, err)
	}
	return value, nil
}
