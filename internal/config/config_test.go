package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ariel-frischer/changegen/internal/changelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolatedOptions points both config layers at files inside a temp dir so
// the developer's own config never leaks into a test.
func isolatedOptions(t *testing.T) (LoadOptions, string) {
	t.Helper()
	dir := t.TempDir()
	return LoadOptions{
		UserConfigPath: filepath.Join(dir, "user", "config.yml"),
		WarningWriter:  &bytes.Buffer{},
	}, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadWithOptions_Defaults(t *testing.T) {
	opts, _ := isolatedOptions(t)

	cfg, err := LoadWithOptions(opts)
	require.NoError(t, err)

	assert.Equal(t, "CHANGELOG.md", cfg.Output)
	assert.Equal(t, ".", cfg.RepoPath)
	assert.Equal(t, "gogit", cfg.Backend)
	assert.Equal(t, []string{"update unreleased section", "[skip ci]"}, cfg.SkipMarkers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce)
}

func TestLoadWithOptions_Layering(t *testing.T) {
	tests := map[string]struct {
		user      string
		project   string
		env       map[string]string
		overrides map[string]any
		check     func(t *testing.T, cfg *Configuration)
	}{
		"user config applies over defaults": {
			user: "backend: cli\n",
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, "cli", cfg.Backend)
			},
		},
		"project config wins over user config": {
			user:    "output: USER.md\n",
			project: "output: PROJECT.md\nwatch_debounce: 2s\n",
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, "PROJECT.md", cfg.Output)
				assert.Equal(t, 2*time.Second, cfg.WatchDebounce)
			},
		},
		"environment wins over project config": {
			project: "log_level: warn\n",
			env:     map[string]string{"CHANGEGEN_LOG_LEVEL": "debug"},
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		"environment skip markers are comma separated": {
			env: map[string]string{"CHANGEGEN_SKIP_MARKERS": "wip, [no log] ,"},
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, []string{"wip", "[no log]"}, cfg.SkipMarkers)
			},
		},
		"overrides win over environment": {
			env:       map[string]string{"CHANGEGEN_OUTPUT": "ENV.md"},
			overrides: map[string]any{"output": "FLAG.md"},
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, "FLAG.md", cfg.Output)
			},
		},
		"project skip markers replace defaults": {
			project: "skip_markers:\n  - chore(release)\n",
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, []string{"chore(release)"}, cfg.SkipMarkers)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			opts, dir := isolatedOptions(t)
			if tt.user != "" {
				writeFile(t, opts.UserConfigPath, tt.user)
			}
			if tt.project != "" {
				opts.ProjectConfigPath = filepath.Join(dir, ".changegen.yml")
				writeFile(t, opts.ProjectConfigPath, tt.project)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			opts.Overrides = tt.overrides

			cfg, err := LoadWithOptions(opts)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadWithOptions_InvalidValues(t *testing.T) {
	tests := map[string]struct {
		project   string
		wantField string
	}{
		"unknown backend":   {project: "backend: svn\n", wantField: "backend"},
		"empty output":      {project: "output: \"\"\n", wantField: "output"},
		"unknown log level": {project: "log_level: loud\n", wantField: "log_level"},
		"unknown format":    {project: "log_format: xml\n", wantField: "log_format"},
		"negative debounce": {project: "watch_debounce: -1s\n", wantField: "watch_debounce"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			opts, dir := isolatedOptions(t)
			opts.ProjectConfigPath = filepath.Join(dir, ".changegen.yml")
			writeFile(t, opts.ProjectConfigPath, tt.project)

			_, err := LoadWithOptions(opts)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestLoadWithOptions_YAMLSyntaxError(t *testing.T) {
	opts, dir := isolatedOptions(t)
	opts.ProjectConfigPath = filepath.Join(dir, ".changegen.yml")
	writeFile(t, opts.ProjectConfigPath, "output: CHANGELOG.md\nbackend: gogit\nlog_level: info: debug\n")

	_, err := LoadWithOptions(opts)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 3, verr.Line)
	assert.Contains(t, err.Error(), ".changegen.yml:3:")
}

func TestLoadWithOptions_MissingCustomProjectConfig(t *testing.T) {
	opts, dir := isolatedOptions(t)
	opts.ProjectConfigPath = filepath.Join(dir, "nope.yml")

	_, err := LoadWithOptions(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadWithOptions_CustomJSONPath(t *testing.T) {
	opts, dir := isolatedOptions(t)
	opts.ProjectConfigPath = filepath.Join(dir, "changegen.json")
	writeFile(t, opts.ProjectConfigPath, `{"output": "HISTORY.md", "backend": "cli"}`)

	cfg, err := LoadWithOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, "HISTORY.md", cfg.Output)
	assert.Equal(t, "cli", cfg.Backend)
}

func TestLoadWithOptions_LegacyJSON(t *testing.T) {
	tests := map[string]struct {
		yaml        string
		skip        bool
		wantOutput  string
		wantWarning string
	}{
		"legacy json is read with a warning": {
			wantOutput:  "LEGACY.md",
			wantWarning: "deprecated JSON config",
		},
		"yaml takes priority over legacy json": {
			yaml:        "output: NEW.md\n",
			wantOutput:  "NEW.md",
			wantWarning: "Legacy JSON config found",
		},
		"warnings can be suppressed": {
			skip:       true,
			wantOutput: "LEGACY.md",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			opts, dir := isolatedOptions(t)
			t.Chdir(dir)
			writeFile(t, filepath.Join(dir, LegacyProjectConfigPath()), `{"output": "LEGACY.md"}`)
			if tt.yaml != "" {
				writeFile(t, filepath.Join(dir, ProjectConfigPath()), tt.yaml)
			}
			var warnings bytes.Buffer
			opts.WarningWriter = &warnings
			opts.SkipWarnings = tt.skip

			cfg, err := LoadWithOptions(opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutput, cfg.Output)
			if tt.wantWarning == "" {
				assert.Empty(t, warnings.String())
			} else {
				assert.Contains(t, warnings.String(), tt.wantWarning)
			}
		})
	}
}

func TestGetDefaultConfigTemplate_IsValidYAML(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateYAMLSyntaxFromBytes([]byte(GetDefaultConfigTemplate()), "template"))
}

func TestExtractLineColumn(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		msg      string
		wantLine int
		wantCol  int
	}{
		"line only":       {msg: "yaml: line 5: could not find expected ':'", wantLine: 5, wantCol: 1},
		"line and column": {msg: "yaml: line 2: column 7: bad", wantLine: 2, wantCol: 7},
		"no position":     {msg: "yaml: something else", wantLine: 0, wantCol: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			line, col := extractLineColumn(tt.msg)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}

func TestExpandHomePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "notes", "CHANGELOG.md"), expandHomePath("~/notes/CHANGELOG.md"))
	assert.Equal(t, "docs/CHANGELOG.md", expandHomePath("docs/CHANGELOG.md"))
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "CHANGELOG.md", cfg.Output)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce)
	assert.Equal(t, changelog.DefaultSkipMarkers(), cfg.SkipMarkers)
	assert.NoError(t, ValidateConfigValues(cfg, "defaults"))
}

func TestGetDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	opts, dir := isolatedOptions(t)
	opts.ProjectConfigPath = filepath.Join(dir, ".changegen.yml")
	writeFile(t, opts.ProjectConfigPath, GetDefaultConfigTemplate())

	cfg, err := LoadWithOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
