package commands

import (
	"bytes"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/myshell/core/config"
	"github.com/josephlewis42/myshell/core/logger"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/klogr"
)

// requirePrograms skips the test unless every program is on the PATH.
func requirePrograms(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
	}
}

type testShell struct {
	*Shell
	output *os.File
	events *bytes.Buffer
}

func newTestShellWithConfig(t *testing.T, cfg *config.Configuration) *testShell {
	t.Helper()
	cfg.Color = config.ColorNever

	output, err := os.Create(filepath.Join(t.TempDir(), "output"))
	require.NoError(t, err)
	t.Cleanup(func() { output.Close() })

	stdin, err := os.Open(os.DevNull)
	require.NoError(t, err)
	t.Cleanup(func() { stdin.Close() })

	events := &bytes.Buffer{}
	s, err := NewShell(
		cfg,
		Streams(stdin, output, output),
		EventLogger(logger.NewJsonLinesLogRecorder(events)),
		Logger(klogr.New()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return &testShell{Shell: s, output: output, events: events}
}

func newTestShell(t *testing.T) *testShell {
	t.Helper()
	return newTestShellWithConfig(t, config.Default())
}

// Output returns everything written to stdout and stderr so far.
func (ts *testShell) Output(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(ts.output.Name())
	require.NoError(t, err)
	return string(data)
}

func (ts *testShell) RunLines(lines ...string) {
	for _, line := range lines {
		ts.RunLine(line)
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	Lines []string
	// Programs must be installed for the test to run.
	Programs []string
	// InTempDir runs the lines from a fresh working directory.
	InTempDir bool
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func (gts goldenTestSuite) Run(t *testing.T) {
	t.Helper()

	// Absolute, so fixtures are still found after chdirTemp.
	fixtureDir, err := filepath.Abs(filepath.Join("testdata", "golden"))
	require.NoError(t, err)

	g := goldie.New(
		t,
		goldie.WithFixtureDir(fixtureDir),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)

	for tn, tc := range gts {
		t.Run(tn, func(t *testing.T) {
			requirePrograms(t, tc.Programs...)
			if tc.InTempDir {
				chdirTemp(t)
			}

			ts := newTestShell(t)
			ts.RunLines(tc.Lines...)

			g.Assert(t, tn, []byte(ts.Output(t)))
		})
	}
}

func TestColorPrinter(t *testing.T) {
	never := ColorPrinter{Mode: config.ColorNever}
	assert.Equal(t, "myshell> ", never.Sprintf(ColorBoldGreen, "%s", "myshell> "))

	always := ColorPrinter{Mode: config.ColorAlways}
	assert.Contains(t, always.Sprintf(ColorBoldRed, "err"), "\x1b[")

	auto := ColorPrinter{Mode: config.ColorAuto, IsTerminal: func() bool { return false }}
	assert.False(t, auto.ShouldColor())
	auto.IsTerminal = func() bool { return true }
	assert.True(t, auto.ShouldColor())
}

func TestSimpleCommand_BadFlag(t *testing.T) {
	ts := newTestShell(t)

	ts.RunLine("history -z")
	assert.Equal(t, 1, ts.LastStatus())
	assert.Contains(t, ts.Output(t), "usage: history [-c]")
}

func TestSimpleCommand_Help(t *testing.T) {
	ts := newTestShell(t)

	ts.RunLine("jobs --help")
	assert.Equal(t, 0, ts.LastStatus())
	assert.Contains(t, ts.Output(t), "usage: jobs\nList background jobs.\n")
}
