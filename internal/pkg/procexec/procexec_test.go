package procexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cferrors "github.com/ozacod/cforge/pkg/errors"
)

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	res, err := Run(context.Background(), "sh", []string{"-c", "echo hello; echo world"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Output, "hello")
	assert.Contains(t, res.Output, "world")
}

func TestRunStreamsLinesToOnLine(t *testing.T) {
	var lines []string
	_, err := Run(context.Background(), "sh", []string{"-c", "echo a; echo b"}, Options{
		OnLine: func(line string) { lines = append(lines, line) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)
}

func TestRunReturnsExitErrorWithCode(t *testing.T) {
	res, err := Run(context.Background(), "sh", []string{"-c", "exit 3"}, Options{})
	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunTimeoutReturnsTimeoutError(t *testing.T) {
	_, err := Run(context.Background(), "sh", []string{"-c", "sleep 5"}, Options{Timeout: 50 * time.Millisecond})
	require.Error(t, err)
	var timeoutErr *cferrors.TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}
