package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "SOC_ATLAS"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Data   DataConfig   `mapstructure:"data"`
	S3     S3Config     `mapstructure:"s3"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	DocAI  DocAIConfig  `mapstructure:"docai"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type DataConfig struct {
	// Source is a URL, an s3:// URI or a local path of the report document.
	Source string `mapstructure:"source"`
}

type S3Config struct {
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
	Bucket  string `mapstructure:"bucket"`
	Key     string `mapstructure:"key"`
}

type GeminiConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// DocAIConfig names the Document AI extractor processor used by the docai backend.
type DocAIConfig struct {
	Project   string `mapstructure:"project"`
	Location  string `mapstructure:"location"`
	Processor string `mapstructure:"processor"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("data.source", "data/soc_reports.json")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.profile", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.key", "data/soc_reports.json")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-pro")
	v.SetDefault("gemini.max_retries", 5)
	v.SetDefault("gemini.retry_delay", 3*time.Second)
	v.SetDefault("docai.project", "")
	v.SetDefault("docai.location", "us")
	v.SetDefault("docai.processor", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(os.TempDir(), "soc-atlas.log"))
}

// LoadConfig reads the optional config file at path and overlays SOC_ATLAS_* environment
// variables. An empty path uses defaults and the environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind gemini api key: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
