package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/connections-bot/internal/game"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GOOGLE_API_KEY", "GEMINI_API_KEY", "MODEL_NAME", "LOG_LEVEL", "RESULTS_DSN",
		"JWT_SECRET", "PORT", "PUZZLES_FILE", "BROWSER_CONTROL_URL", "HEADLESS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	pc := cfg.PolicyConfig()
	assert.Equal(t, game.DefaultAllowedMistakes, pc.AllowedMistakes)
	assert.Equal(t, []game.Outcome{game.OneAway, game.Failure}, pc.CorrectionOrder)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
model:
  name: gemini-test
policy:
  strategy: single
  allowed_mistakes: 2
  correction_order: [FAILURE]
  shuffle_on_failure: true
browser:
  click_delay: 1s
server:
  token_ttl: 2h
`), 0o600))

	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("GEMINI_API_KEY", "gemini")
	t.Setenv("PORT", "9000")
	t.Setenv("HEADLESS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, StrategySingle, cfg.Policy.Strategy)
	assert.True(t, cfg.Policy.ShuffleOnFailure)
	assert.Equal(t, "gemini", cfg.Model.APIKey)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())

	gc := cfg.GeminiConfig()
	assert.Equal(t, "gemini-test", gc.Model)

	bc := cfg.BrowserConfig()
	assert.False(t, bc.Headless)
	assert.Equal(t, time.Second, bc.ClickDelay)

	pc := cfg.PolicyConfig()
	assert.Equal(t, 2, pc.AllowedMistakes)
	assert.Equal(t, []game.Outcome{game.Failure}, pc.CorrectionOrder)
	assert.Equal(t, 2, pc.Rules().AllowedMistakes)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"strategy": "policy:\n  strategy: random\n",
		"mistakes": "policy:\n  allowed_mistakes: -1\n",
		"order":    "policy:\n  correction_order: [SUCCESS]\n",
		"duration": "browser:\n  page_timeout: soon\n",
		"not yaml": "policy: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bot.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "bot.yaml")
	cfg := DefaultConfig()
	cfg.Policy.MaxCorrections = 5
	cfg.Results.DSN = "/tmp/x.db"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Policy.MaxCorrections)
	assert.Equal(t, "/tmp/x.db", got.Results.DSN)
}
