// Package config loads the bot configuration from a YAML file with
// environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/connections-bot/internal/board"
	"github.com/robalobadob/connections-bot/internal/game"
	"github.com/robalobadob/connections-bot/internal/model"
	"github.com/robalobadob/connections-bot/internal/policy"
)

// DefaultPath is read when no --config flag is given. A missing file is fine.
const DefaultPath = "connections-bot.yaml"

// DevJWTSecret is the default token secret; fine locally, never in production.
const DevJWTSecret = "dev_secret_change_me"

const (
	StrategyRefining = "refining"
	StrategySingle   = "single"
)

// Config holds all configuration for the bot.
type Config struct {
	LogLevel    string        `yaml:"log_level"`
	PuzzlesFile string        `yaml:"puzzles_file,omitempty"`
	Model       ModelConfig   `yaml:"model"`
	Policy      PolicyConfig  `yaml:"policy"`
	Browser     BrowserConfig `yaml:"browser"`
	Results     ResultsConfig `yaml:"results"`
	Server      ServerConfig  `yaml:"server"`
}

// ModelConfig configures the language model client.
type ModelConfig struct {
	APIKey          string  `yaml:"api_key,omitempty"`
	Name            string  `yaml:"name"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// PolicyConfig configures how guesses are chosen.
type PolicyConfig struct {
	Strategy         string   `yaml:"strategy"` // refining, single
	AllowedMistakes  int      `yaml:"allowed_mistakes"`
	MaxCorrections   int      `yaml:"max_corrections"`
	CorrectionOrder  []string `yaml:"correction_order"`
	ShuffleOnFailure bool     `yaml:"shuffle_on_failure"`
}

// BrowserConfig configures the puzzle page driver.
type BrowserConfig struct {
	ControlURL  string `yaml:"control_url,omitempty"`
	Headless    bool   `yaml:"headless"`
	URLPrefix   string `yaml:"url_prefix"`
	PageTimeout string `yaml:"page_timeout"`
	ClickDelay  string `yaml:"click_delay"`
}

// ResultsConfig configures where summaries are exported.
type ResultsConfig struct {
	DSN string `yaml:"dsn"`
}

// ServerConfig configures the results API.
type ServerConfig struct {
	Port      string `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret,omitempty"`
	TokenTTL  string `yaml:"token_ttl"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	bc := board.DefaultBrowserConfig()
	return &Config{
		LogLevel: "info",
		Model: ModelConfig{
			Name:            model.DefaultModel,
			Temperature:     0.2,
			MaxOutputTokens: 2048,
		},
		Policy: PolicyConfig{
			Strategy:        StrategyRefining,
			AllowedMistakes: game.DefaultAllowedMistakes,
			MaxCorrections:  policy.DefaultMaxCorrections,
			CorrectionOrder: []string{game.OneAway.String(), game.Failure.String()},
		},
		Browser: BrowserConfig{
			Headless:    bc.Headless,
			URLPrefix:   bc.URLPrefix,
			PageTimeout: bc.PageTimeout.String(),
			ClickDelay:  bc.ClickDelay.String(),
		},
		Results: ResultsConfig{DSN: "./data/results.db"},
		Server: ServerConfig{
			Port:      "5175",
			JWTSecret: DevJWTSecret,
			TokenTTL:  "24h",
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	// GEMINI_API_KEY wins when both are set
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Model.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Model.APIKey = key
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		c.Model.Name = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("RESULTS_DSN"); v != "" {
		c.Results.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("PUZZLES_FILE"); v != "" {
		c.PuzzlesFile = v
	}
	if v := os.Getenv("BROWSER_CONTROL_URL"); v != "" {
		c.Browser.ControlURL = v
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = b
		}
	}
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.Policy.Strategy {
	case StrategyRefining, StrategySingle:
	default:
		return fmt.Errorf("policy.strategy: unknown %q", c.Policy.Strategy)
	}
	if c.Policy.AllowedMistakes < 0 {
		return errors.New("policy.allowed_mistakes must be >= 0")
	}
	if _, err := c.correctionOrder(); err != nil {
		return err
	}
	for name, v := range map[string]string{
		"browser.page_timeout": c.Browser.PageTimeout,
		"browser.click_delay":  c.Browser.ClickDelay,
		"server.token_ttl":     c.Server.TokenTTL,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// PolicyConfig returns the guess policy settings.
func (c *Config) PolicyConfig() policy.Config {
	order, _ := c.correctionOrder()
	return policy.Config{
		AllowedMistakes: c.Policy.AllowedMistakes,
		CorrectionOrder: order,
		MaxCorrections:  c.Policy.MaxCorrections,
	}
}

// GeminiConfig returns the model client settings.
func (c *Config) GeminiConfig() model.GeminiConfig {
	return model.GeminiConfig{
		APIKey:          c.Model.APIKey,
		Model:           c.Model.Name,
		Temperature:     c.Model.Temperature,
		MaxOutputTokens: c.Model.MaxOutputTokens,
	}
}

// BrowserConfig returns the page driver settings.
func (c *Config) BrowserConfig() board.BrowserConfig {
	bc := board.DefaultBrowserConfig()
	bc.ControlURL = c.Browser.ControlURL
	bc.Headless = c.Browser.Headless
	if c.Browser.URLPrefix != "" {
		bc.URLPrefix = c.Browser.URLPrefix
	}
	if d, err := parseDuration(c.Browser.PageTimeout); err == nil && d > 0 {
		bc.PageTimeout = d
	}
	if d, err := parseDuration(c.Browser.ClickDelay); err == nil && d > 0 {
		bc.ClickDelay = d
	}
	return bc
}

// TokenTTL returns the admin token lifetime.
func (c *Config) TokenTTL() time.Duration {
	d, err := parseDuration(c.Server.TokenTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func (c *Config) correctionOrder() ([]game.Outcome, error) {
	if len(c.Policy.CorrectionOrder) == 0 {
		return append([]game.Outcome(nil), game.DefaultCorrectionOrder...), nil
	}
	out := make([]game.Outcome, 0, len(c.Policy.CorrectionOrder))
	for _, s := range c.Policy.CorrectionOrder {
		o, ok := game.ParseOutcome(s)
		if !ok || o == game.Success {
			return nil, fmt.Errorf("policy.correction_order: %q is not ONE_AWAY or FAILURE", s)
		}
		out = append(out, o)
	}
	return out, nil
}

func parseDuration(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
