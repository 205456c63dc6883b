package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todoboard/internal/config"
)

var envVars = []string{
	"TODOBOARD_URL", "TODOBOARD_API_PREFIX", "TODOBOARD_THEME", "TODOBOARD_LOG_LEVEL",
	"TODOBOARD_LOG_FILE", "TODOBOARD_STRICT", "TODOBOARD_SERVE_ADDR",
}

// isolate points the config lookup at an empty temp dir and clears every
// TODOBOARD_* variable for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func Test_Load_ReturnsDefaults_When_NothingConfigured(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(config.LoadInput{})
	require.NoError(t, err)
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func Test_Load_ReadsUserConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "todoboard", "config.toml")
	writeFile(t, path, `
base_url = "https://todos.example.com"
api_prefix = "/v1"
user = "carol"
theme = "neon"
strict = true
`)

	cfg, err := config.Load(config.LoadInput{})
	require.NoError(t, err)
	assert.Equal(t, "https://todos.example.com", cfg.BaseURL)
	assert.Equal(t, "v1/", cfg.APIPrefix)
	assert.Equal(t, "carol", cfg.User)
	assert.Equal(t, "neon", cfg.Theme)
	assert.True(t, cfg.Strict)
	assert.Equal(t, path, cfg.Source)
}

func Test_Load_EnvOverridesFileAndFlagsOverrideEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "todoboard", "config.toml"), `
base_url = "http://file.example"
theme = "neon"
log_level = "warn"
`)
	t.Setenv("TODOBOARD_URL", "http://env.example")
	t.Setenv("TODOBOARD_THEME", "mono")

	strict := true
	cfg, err := config.Load(config.LoadInput{Overrides: config.Overrides{
		Theme:  "classic",
		Strict: &strict,
	}})
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.BaseURL)
	assert.Equal(t, "classic", cfg.Theme)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Strict)
}

func Test_Load_Fails_When_ExplicitFileMissing(t *testing.T) {
	dir := isolate(t)

	_, err := config.Load(config.LoadInput{ConfigPath: filepath.Join(dir, "nope.toml")})
	require.Error(t, err)
}

func Test_Load_Fails_When_BaseURLInvalid(t *testing.T) {
	isolate(t)

	_, err := config.Load(config.LoadInput{Overrides: config.Overrides{BaseURL: "ftp://x"}})
	require.ErrorContains(t, err, "scheme")
}

func Test_Load_Fails_When_LogLevelUnknown(t *testing.T) {
	isolate(t)

	_, err := config.Load(config.LoadInput{Overrides: config.Overrides{LogLevel: "chatty"}})
	require.ErrorContains(t, err, "log_level")
}
