package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	for _, key := range []string{"API_BASE_URL", "API_SERVER_URL", "DATABASE_TYPE", "DATABASE_URL", "SEARCH_DEBOUNCE", "EXPLORE_PAGE_SIZE", "ASSISTANT_MODEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, "http://localhost:5000", cfg.APIServerURL)
	assert.Equal(t, 500*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 12, cfg.ExplorePageSize)
	assert.Equal(t, "donationhub.db", cfg.DatabaseURL)
	assert.Equal(t, "gemini-2.5-flash", cfg.AssistantModel)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: https://hub.example.org/api/
port: "9000"
search_debounce: 250ms
allowed_origins: [https://a.example, https://b.example]
`), 0o600))

	t.Setenv("PORT", "9100")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://hub.example.org/api", cfg.APIBaseURL)
	assert.Equal(t, "https://hub.example.org", cfg.APIServerURL)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvParsingFallsBack(t *testing.T) {
	t.Setenv("EXPLORE_PAGE_SIZE", "lots")
	t.Setenv("API_RETRY", "true")
	t.Setenv("API_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, 12, cfg.ExplorePageSize)
	assert.True(t, cfg.APIRetry)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
}

func TestServerOrigin(t *testing.T) {
	assert.Equal(t, "http://localhost:5000", ServerOrigin("http://localhost:5000/api"))
	assert.Equal(t, "relative", ServerOrigin("relative/api"))
}
