package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration marks configuration that cannot be used to build the collaborators.
var ErrConfiguration = eris.New("invalid configuration")

// Config holds runtime configuration values for a pptgen run.
type Config struct {
	ConfigPath  string
	LogLevel    string
	LLMEndpoint string
	LLMAPIKey   string
	LLMModels   []string
	MaxTokens   int
	ImageModel  string
	ImageSize   string
	OutputPath  string
	SentryDSN   string
	Environment string
}

const (
	defaultConfigPath  = "config.yml"
	defaultLogLevel    = "info"
	defaultEnvironment = "development"
	defaultTextModel   = "gpt-3.5-turbo"
	defaultImageModel  = "dall-e-2"
	defaultImageSize   = "1024x1024"
	defaultMaxTokens   = 1500
	defaultOutputPath  = "generated_presentation.pptx"
)

// fileConfig mirrors the optional YAML file layout.
type fileConfig struct {
	Client struct {
		OpenAI struct {
			APIKey     string `yaml:"api_key"`
			BaseURL    string `yaml:"base_url"`
			TextModel  string `yaml:"text_model"`
			ImageModel string `yaml:"image_model"`
			ImageSize  string `yaml:"image_size"`
		} `yaml:"openai"`
	} `yaml:"client"`
}

// Load reads the optional YAML file and then environment variables, applying defaults where necessary.
// Environment values take precedence over the file.
func Load() (*Config, error) {
	cfg := &Config{
		ConfigPath:  getEnv("CONFIG_PATH", defaultConfigPath),
		LogLevel:    getEnv("LOG_LEVEL", defaultLogLevel),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		Environment: getEnv("ENV", defaultEnvironment),
		OutputPath:  getEnv("OUTPUT_PATH", defaultOutputPath),
		MaxTokens:   defaultMaxTokens,
	}

	file, err := readFile(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	openaiFile := file.Client.OpenAI
	cfg.LLMAPIKey = getEnv("LLM_API_KEY", strings.TrimSpace(openaiFile.APIKey))
	cfg.LLMEndpoint = getEnv("LLM_ENDPOINT", strings.TrimSpace(openaiFile.BaseURL))
	cfg.ImageModel = getEnv("IMAGE_MODEL", fallback(openaiFile.ImageModel, defaultImageModel))
	cfg.ImageSize = getEnv("IMAGE_SIZE", fallback(openaiFile.ImageSize, defaultImageSize))

	if modelsJSON := os.Getenv("LLM_MODELS"); modelsJSON != "" {
		models, err := parseModels(modelsJSON)
		if err != nil {
			return nil, eris.Wrap(err, "parsing LLM_MODELS")
		}
		cfg.LLMModels = models
	} else {
		cfg.LLMModels = []string{fallback(openaiFile.TextModel, defaultTextModel)}
	}

	if raw := os.Getenv("LLM_MAX_TOKENS"); raw != "" {
		maxTokens, err := strconv.Atoi(raw)
		if err != nil || maxTokens <= 0 {
			return nil, eris.Wrapf(ErrConfiguration, "invalid LLM_MAX_TOKENS value: %s", raw)
		}
		cfg.MaxTokens = maxTokens
	}

	return cfg, nil
}

// TextModel returns the model used for outline generation.
func (c *Config) TextModel() string {
	if len(c.LLMModels) == 0 {
		return defaultTextModel
	}
	return c.LLMModels[0]
}

func readFile(path string) (fileConfig, error) {
	var file fileConfig

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return file, nil
		}
		return file, eris.Wrapf(ErrConfiguration, "reading config file %s: %v", path, err)
	}

	if err := yaml.Unmarshal(raw, &file); err != nil {
		return file, eris.Wrapf(ErrConfiguration, "parsing config file %s: %v", path, err)
	}

	return file, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func fallback(value, def string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return def
}

func parseModels(raw string) ([]string, error) {
	// Accept either a JSON array of strings or an object with a `models` field.
	var arrayInput []string
	if err := json.Unmarshal([]byte(raw), &arrayInput); err == nil {
		if len(arrayInput) == 0 {
			return nil, eris.New("models list is empty")
		}
		return arrayInput, nil
	}

	var objectInput struct {
		Models []string `json:"models"`
	}
	if err := json.Unmarshal([]byte(raw), &objectInput); err != nil {
		return nil, eris.Wrap(err, "decoding JSON")
	}

	if len(objectInput.Models) == 0 {
		return nil, eris.New("models list is empty")
	}

	return objectInput.Models, nil
}
