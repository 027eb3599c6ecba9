package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	testCases := []struct {
		name        string
		content     string
		env         map[string]string
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults with admin token from env",
			env:  map[string]string{envAdminToken: "secret"},
			check: func(t *testing.T, cfg *Config) {
				require.Equal(t, defaultListen, cfg.Listen)
				require.Equal(t, defaultHFBaseURL, cfg.HuggingFace.BaseURL)
				require.Equal(t, defaultDatasetLimit, cfg.HuggingFace.DatasetLimit)
				require.Equal(t, defaultHFTimeout, cfg.HuggingFace.Timeout)
				require.Equal(t, defaultDescFileName, cfg.Local.DescFileName)
				require.Equal(t, "secret", cfg.AdminToken)
			},
		},
		{
			name: "yaml values",
			content: `listen: ":9090"
log_level: debug
admin_token: abc
huggingface:
  base_url: http://hf.local
  timeout: 5s
  dataset_limit: 20
local:
  work_dir: /srv/courses
  skip_files: [".DS_Store"]
`,
			check: func(t *testing.T, cfg *Config) {
				require.Equal(t, ":9090", cfg.Listen)
				require.Equal(t, LogLevelDebug, cfg.LogLevel)
				require.Equal(t, "http://hf.local", cfg.HFConfig().BaseURL)
				require.Equal(t, 5*time.Second, cfg.HFConfig().Timeout)
				require.Equal(t, 20, cfg.HFConfig().DatasetLimit)
				require.Equal(t, "/srv/courses", cfg.LocalConfig().WorkDir)
				require.Equal(t, []string{".DS_Store"}, cfg.LocalConfig().SkipFiles)
			},
		},
		{
			name: "env overrides yaml",
			content: `listen: ":9090"
admin_token: abc
`,
			env: map[string]string{envListen: ":7070", envHFToken: "hf_seed"},
			check: func(t *testing.T, cfg *Config) {
				require.Equal(t, ":7070", cfg.Listen)
				require.Equal(t, "hf_seed", cfg.HuggingFace.SeedToken)
			},
		},
		{
			name:        "missing admin token",
			content:     `listen: ":9090"`,
			expectError: true,
		},
		{
			name: "bad log level",
			content: `admin_token: abc
log_level: verbose
`,
			expectError: true,
		},
		{
			name:        "broken yaml",
			content:     "admin_token: [",
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, key := range []string{envListen, envRedisURL, envAdminToken, envLogLevel, envHFToken} {
				t.Setenv(key, "")
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yml")
			if tc.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			}

			cfg, err := Load(path)
			if tc.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestMustLoadPanics(t *testing.T) {
	t.Setenv(envAdminToken, "")

	require.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yml"))
	})
}
