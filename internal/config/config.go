package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		CORSOrigins    []string `yaml:"corsOrigins"`
		MaxUploadBytes int64    `yaml:"maxUploadBytes"`
		RateLimit      struct {
			Capacity   int `yaml:"capacity"`
			RefillRate int `yaml:"refillRate"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	Database struct {
		Driver       string        `yaml:"driver"` // mysql | postgres | memory
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		Name         string        `yaml:"name"`
		SSLMode      string        `yaml:"sslMode"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
	} `yaml:"database"`

	Storage struct {
		Driver    string `yaml:"driver"` // minio | local
		LocalPath string `yaml:"localPath"`
	} `yaml:"storage"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Engine struct {
		Provider          string        `yaml:"provider"` // http | openai
		BaseURL           string        `yaml:"baseURL"`
		AnalyzePath       string        `yaml:"analyzePath"`
		Timeout           time.Duration `yaml:"timeout"`
		OfflineSignatures []string      `yaml:"offlineSignatures"`
	} `yaml:"engine"`

	OpenAI struct {
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"baseURL"`
	} `yaml:"openai"`

	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"auth"`
}

// Load baca file config.yaml, lalu override dari env dan isi default
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse dipisah dari Load supaya gampang ditest
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// secret tidak perlu ditulis di file
func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"DB_PASSWORD", &c.Database.Password},
		{"JWT_SECRET", &c.Auth.JWTSecret},
		{"MINIO_ACCESS_KEY", &c.Minio.AccessKey},
		{"MINIO_SECRET_KEY", &c.Minio.SecretKey},
		{"OPENAI_API_KEY", &c.OpenAI.APIKey},
		{"ENGINE_BASE_URL", &c.Engine.BaseURL},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = 20 << 20
	}
	if c.Server.RateLimit.Capacity == 0 {
		c.Server.RateLimit.Capacity = 60
	}
	if c.Server.RateLimit.RefillRate == 0 {
		c.Server.RateLimit.RefillRate = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Port == 0 {
		switch c.Database.Driver {
		case "postgres":
			c.Database.Port = 5432
		default:
			c.Database.Port = 3306
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.WriteTimeout <= 0 {
		c.Database.WriteTimeout = 15 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "minio"
	}
	if c.Storage.LocalPath == "" {
		c.Storage.LocalPath = "./data"
	}
	if c.Engine.Provider == "" {
		c.Engine.Provider = "http"
	}
	// timeout <= 0 diganti default supaya panggilan engine tidak pernah tanpa batas
	if c.Engine.Timeout <= 0 {
		c.Engine.Timeout = 120 * time.Second
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "compliance-gateway"
	}
}

// Validate cek kombinasi yang tidak mungkin jalan
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "minio", "local":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Engine.Provider {
	case "http":
		if strings.TrimSpace(c.Engine.BaseURL) == "" {
			return fmt.Errorf("engine.baseURL is required (or ENGINE_BASE_URL)")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai.apiKey is required (or OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("unknown engine provider %q", c.Engine.Provider)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtSecret is required (or JWT_SECRET)")
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN format URL untuk lib/pq
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}
