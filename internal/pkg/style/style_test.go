package style

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger() (*Logger, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &Logger{Out: out, Err: errOut, Level: LevelNormal}, out, errOut
}

func TestInfoSuppressedAtQuietLevel(t *testing.T) {
	l, out, _ := newTestLogger()
	l.SetQuiet(true)
	l.Info("building %s", "app")
	assert.Empty(t, out.String())
}

func TestDebugOnlyPrintsAtVerboseLevel(t *testing.T) {
	l, out, _ := newTestLogger()
	l.Debug("resolving %s", "fmt")
	assert.Empty(t, out.String())

	l.SetVerbose(true)
	l.Debug("resolving %s", "fmt")
	assert.Contains(t, out.String(), "resolving fmt")
}

func TestWarnAndErrorAlwaysWriteToErrStream(t *testing.T) {
	l, _, errOut := newTestLogger()
	l.SetQuiet(true)
	l.Warn("missing %s", "cforge.lock")
	l.Error("%s failed", "build")
	assert.Contains(t, errOut.String(), "missing cforge.lock")
	assert.Contains(t, errOut.String(), "build failed")
}

func TestSuccessPrintsToOutStream(t *testing.T) {
	l, out, _ := newTestLogger()
	l.Success("configured in %s", "2.1s")
	assert.Contains(t, out.String(), "configured in 2.1s")
}
