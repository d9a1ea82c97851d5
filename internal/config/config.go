package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port                int `yaml:"port"`
		ReadTimeoutSeconds  int `yaml:"readTimeoutSeconds"`
		WriteTimeoutSeconds int `yaml:"writeTimeoutSeconds"`

		// APIKeys maps a client name to its key. Empty disables auth.
		APIKeys map[string]string `yaml:"apiKeys"`

		RateLimit struct {
			Capacity   int `yaml:"capacity"`
			RefillRate int `yaml:"refillRate"`
		} `yaml:"rateLimit"`

		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`

	Log struct {
		Development bool   `yaml:"development"`
		Level       string `yaml:"level"`
	} `yaml:"log"`

	Database Database `yaml:"database"`

	Prompts struct {
		// Dir overrides the bundled template files when set.
		Dir string `yaml:"dir"`
	} `yaml:"prompts"`

	Providers Providers `yaml:"providers"`

	Minio Minio `yaml:"minio"`
}

type Database struct {
	// Driver is "postgres" or "mysql".
	Driver   string `yaml:"driver"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type Providers struct {
	TimeoutSeconds int `yaml:"timeoutSeconds"`

	Bedrock struct {
		Region  string `yaml:"region"`
		ModelID string `yaml:"modelId"`
	} `yaml:"bedrock"`

	Claude struct {
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"baseUrl"`
	} `yaml:"claude"`

	Gemini struct {
		APIKey      string  `yaml:"apiKey"`
		Model       string  `yaml:"model"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"gemini"`

	OpenAI struct {
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"baseUrl"`
	} `yaml:"openai"`
}

// Timeout is the per-call deadline applied to every provider request.
func (p Providers) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

type Minio struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
	BucketName string `yaml:"bucketName"`
	Region     string `yaml:"region"`
	UseSSL     bool   `yaml:"useSSL"`
}

// Enabled reports whether the result archive is configured.
func (m Minio) Enabled() bool {
	return m.Endpoint != "" && m.BucketName != ""
}

// Load reads the yaml file at path, then applies environment overrides and
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := getenv("API_KEYS"); v != "" {
		c.Server.APIKeys = parseAPIKeys(v)
	}
	set(&c.Database.URL, getenv("DATABASE_URL"))
	set(&c.Database.Driver, getenv("DATABASE_DRIVER"))
	set(&c.Prompts.Dir, getenv("PROMPTS_DIR"))
	set(&c.Providers.Claude.APIKey, getenv("CLAUDE_API_KEY"))
	set(&c.Providers.Gemini.APIKey, getenv("GEMINI_API_KEY"))
	set(&c.Providers.OpenAI.APIKey, getenv("OPENAI_API_KEY"))
	set(&c.Providers.OpenAI.BaseURL, getenv("OPENAI_BASE_URL"))
	set(&c.Providers.Bedrock.Region, getenv("AWS_REGION"))
	set(&c.Providers.Bedrock.ModelID, getenv("BEDROCK_MODEL_ID"))
	set(&c.Minio.Endpoint, getenv("MINIO_ENDPOINT"))
	set(&c.Minio.AccessKey, getenv("MINIO_ACCESS_KEY"))
	set(&c.Minio.SecretKey, getenv("MINIO_SECRET_KEY"))
	set(&c.Minio.BucketName, getenv("MINIO_BUCKET"))
	return nil
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseAPIKeys accepts "name=key,name2=key2"; a bare key is named client-N.
func parseAPIKeys(v string) map[string]string {
	keys := make(map[string]string)
	for i, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, key, ok := strings.Cut(part, "="); ok {
			keys[strings.TrimSpace(name)] = strings.TrimSpace(key)
			continue
		}
		keys[fmt.Sprintf("client-%d", i+1)] = part
	}
	return keys
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 30
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 600
	}
	if c.Server.RateLimit.RefillRate == 0 {
		c.Server.RateLimit.RefillRate = 1
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Providers.TimeoutSeconds == 0 {
		c.Providers.TimeoutSeconds = 120
	}
	if c.Minio.Region == "" {
		c.Minio.Region = "us-east-1"
	}
}

// DSN returns the connection string for the configured driver, or "" when
// no database is configured.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Host == "" {
		return ""
	}
	if d.Driver == "mysql" {
		return d.MySQLDSN()
	}
	return d.PostgresDSN()
}

// Helper untuk build DSN MySQL
func (d Database) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.port(3306),
		d.Name,
	)
}

func (d Database) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host,
		d.port(5432),
		d.User,
		d.Password,
		d.Name,
	)
}

func (d Database) port(def int) int {
	if d.Port == 0 {
		return def
	}
	return d.Port
}
