package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ariel-frischer/changegen/internal/build"
	"github.com/ariel-frischer/changegen/internal/changelog"
	"github.com/ariel-frischer/changegen/internal/config"
	cgerrors "github.com/ariel-frischer/changegen/internal/errors"
	"github.com/ariel-frischer/changegen/internal/git"
	"github.com/ariel-frischer/changegen/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// releasedRepo builds a repository with one tagged release and some
// unreleased work, including subjects that must be left out.
func releasedRepo(t *testing.T) *testutil.GitRepo {
	t.Helper()
	repo := testutil.NewGitRepo(t)
	repo.Commit("feat: initial api")
	repo.Commit("fix: crash on empty input")
	repo.Tag("v0.1.0")
	repo.Commit("docs: usage guide")
	repo.Commit("build: bump toolchain")
	repo.Commit("chore: update unreleased section")
	return repo
}

const releasedRepoChangelog = changelog.Intro +
	"## [Unreleased]\n\n### Changed\n- usage guide\n" +
	"\n\n" +
	"## [v0.1.0] - 2024-01-10\n\n### Added\n- initial api\n\n### Fixed\n- crash on empty input"

// testConfig points the default configuration at repo, writing into a
// fresh temp directory.
func testConfig(t *testing.T, repoDir string) *config.Configuration {
	t.Helper()
	cfg := config.Default()
	cfg.RepoPath = repoDir
	cfg.Output = filepath.Join(t.TempDir(), "CHANGELOG.md")
	return cfg
}

// testCmd returns a command whose context carries cfg and whose output is captured.
func testCmd(cfg *config.Configuration) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetContext(withConfig(context.Background(), cfg))
	return cmd, &stdout, &stderr
}

func TestGenerateChangelog_WritesDocument(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, releasedRepo(t).Dir)

	versions, err := generateChangelog(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, versions)

	got, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Equal(t, releasedRepoChangelog, string(got))
	assert.False(t, strings.HasSuffix(string(got), "\n"), "document has no trailing newline")
}

func TestGenerateChangelog_Idempotent(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, releasedRepo(t).Dir)

	_, err := generateChangelog(context.Background(), cfg)
	require.NoError(t, err)
	first, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)

	_, err = generateChangelog(context.Background(), cfg)
	require.NoError(t, err)
	second, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunGenerate_PrintsSummary(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, releasedRepo(t).Dir)
	cmd, stdout, _ := testCmd(cfg)

	require.NoError(t, runGenerate(cmd, nil))
	assert.Equal(t, "✓ Regenerated "+cfg.Output+" (1 versions)\n", stdout.String())
}

func TestRunGenerate_FailureLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, t.TempDir())
	require.NoError(t, os.WriteFile(cfg.Output, []byte("previous contents"), 0o644))
	cmd, stdout, _ := testCmd(cfg)

	err := runGenerate(cmd, nil)
	require.Error(t, err)

	assert.True(t, strings.HasPrefix(err.Error(), "Failed to regenerate changelog: "), err.Error())
	assert.ErrorIs(t, err, git.ErrNotRepository)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Empty(t, stdout.String())

	got, readErr := os.ReadFile(cfg.Output)
	require.NoError(t, readErr)
	assert.Equal(t, "previous contents", string(got))
}

func TestRunGenerate_EmptyRepository(t *testing.T) {
	t.Parallel()

	// no commits: HEAD cannot be resolved
	cfg := testConfig(t, testutil.NewGitRepo(t).Dir)
	cmd, _, _ := testCmd(cfg)

	err := runGenerate(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading commits for Unreleased")
	assert.NoFileExists(t, cfg.Output)
}

func TestRunCheck(t *testing.T) {
	t.Parallel()

	repo := releasedRepo(t)
	cfg := testConfig(t, repo.Dir)

	// nothing written yet
	cmd, _, _ := testCmd(cfg)
	err := runCheck(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, ExitOutOfSync, ExitCode(err))

	_, err = generateChangelog(context.Background(), cfg)
	require.NoError(t, err)

	cmd, stdout, _ := testCmd(cfg)
	require.NoError(t, runCheck(cmd, nil))
	assert.Contains(t, stdout.String(), "is up to date")

	repo.Commit("feat: something new")

	cmd, _, _ = testCmd(cfg)
	err = runCheck(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, ExitOutOfSync, ExitCode(err))
	assert.Contains(t, err.Error(), "is out of date")

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	require.NotNil(t, cgerrors.AsCLIError(exitErr.Err))
}

func TestRunCheck_DoesNotWrite(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, releasedRepo(t).Dir)
	require.NoError(t, os.WriteFile(cfg.Output, []byte("stale"), 0o644))
	cmd, _, _ := testCmd(cfg)

	require.Error(t, runCheck(cmd, nil))

	got, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Equal(t, "stale", string(got))
}

func TestRunPreview(t *testing.T) {
	tests := map[string]struct {
		markdown  bool
		plain     bool
		skipEmpty bool
		check     func(t *testing.T, out string)
	}{
		"markdown matches the written file": {
			markdown: true,
			check: func(t *testing.T, out string) {
				assert.Equal(t, releasedRepoChangelog+"\n", out)
			},
		},
		"terminal output lists versions and entries": {
			plain: true,
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "Unreleased")
				assert.Contains(t, out, "v0.1.0")
				assert.Contains(t, out, "initial api")
				assert.NotContains(t, out, "bump toolchain")
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			previewMarkdownFlag, previewPlainFlag, previewSkipEmptyFlag = tt.markdown, tt.plain, tt.skipEmpty
			t.Cleanup(func() {
				previewMarkdownFlag, previewPlainFlag, previewSkipEmptyFlag = false, false, false
			})

			cfg := testConfig(t, releasedRepo(t).Dir)
			cmd, stdout, _ := testCmd(cfg)

			require.NoError(t, runPreview(cmd, nil))
			tt.check(t, stdout.String())
			assert.NoFileExists(t, cfg.Output, "preview must not write")
		})
	}
}

func TestRunPreview_RejectsConflictingFlags(t *testing.T) {
	previewMarkdownFlag, previewPlainFlag = true, true
	t.Cleanup(func() { previewMarkdownFlag, previewPlainFlag = false, false })

	cmd, _, _ := testCmd(config.Default())
	err := runPreview(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArguments, ExitCode(err))
}

func TestRegenerateAndReport(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		repoDir    func(t *testing.T) string
		wantStdout string
		wantStderr string
	}{
		"success is printed": {
			repoDir:    func(t *testing.T) string { return releasedRepo(t).Dir },
			wantStdout: "✓ Regenerated",
		},
		"failure is printed and swallowed": {
			repoDir:    func(t *testing.T) string { return t.TempDir() },
			wantStderr: "Failed to regenerate changelog",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig(t, tt.repoDir(t))
			var stdout, stderr bytes.Buffer

			err := regenerateAndReport(cfg, &stdout, &stderr)(context.Background())
			assert.NoError(t, err)
			if tt.wantStdout != "" {
				assert.Contains(t, stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" {
				assert.Contains(t, stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	cmd, stdout, _ := testCmd(testConfig(t, releasedRepo(t).Dir))
	require.NoError(t, runDoctor(cmd, nil))
	assert.Contains(t, stdout.String(), "✓ Repository")
	assert.Contains(t, stdout.String(), "latest v0.1.0")

	cmd, stdout, _ = testCmd(testConfig(t, t.TempDir()))
	err := runDoctor(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, stdout.String(), "✗ Repository")
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cmd, stdout, _ := testCmd(config.Default())
	require.NoError(t, configShowCmd.RunE(cmd, nil))

	out := stdout.String()
	assert.Contains(t, out, "output: CHANGELOG.md")
	assert.Contains(t, out, "backend: gogit")
	assert.Contains(t, out, "watch_debounce: 500ms")
	assert.Contains(t, out, "skip_markers:")
	assert.Contains(t, out, "[skip ci]")
}

func TestWriteConfigTemplate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".changegen.yml")
	cmd, stdout, _ := testCmd(config.Default())

	require.NoError(t, writeConfigTemplate(cmd, path, false))
	assert.Contains(t, stdout.String(), "Created "+path)
	assert.NoError(t, config.ValidateYAMLSyntax(path))

	err := writeConfigTemplate(cmd, path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.NoError(t, writeConfigTemplate(cmd, path, true))
}

func TestPrintPlainVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printPlainVersion(&buf, build.Info{
		Version:   "v1.0.0",
		Commit:    "abc1234",
		BuildDate: "2024-01-10",
		GoVersion: "go1.25.1",
		Platform:  "linux/amd64",
	})

	assert.Equal(t, "changegen v1.0.0\ncommit: abc1234\nbuilt: 2024-01-10\ngo: go1.25.1\nplatform: linux/amd64\n", buf.String())
}

func TestPrintPrettyVersion(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		version string
		wantDev bool
	}{
		"release": {version: "v1.0.0", wantDev: false},
		"dev":     {version: "dev", wantDev: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			printPrettyVersion(&buf, build.Info{Version: tt.version, Commit: "abc1234def"})

			out := buf.String()
			assert.Contains(t, out, "changegen "+tt.version+" (abc1234)")
			assert.Equal(t, tt.wantDev, strings.Contains(out, "development build"))
		})
	}
}
