package repl_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combo/repl"
)

const sampleIR = `
BLOCK entry (entry)
  %x = Unknown :i32
  %t = Sub :i32 (%x, %x)
  %e = End
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.combo-ir")
	require.NoError(t, os.WriteFile(path, []byte(sampleIR), 0o644))
	return path
}

func TestLoadStepRunReportsProgress(t *testing.T) {
	path := writeSample(t)

	var out strings.Builder
	in := strings.NewReader("load " + path + "\nstep\nstep\nrun\nreport\nquit\n")

	repl.Start(in, &out)

	text := out.String()
	assert.Contains(t, text, "loaded "+path)
	assert.Contains(t, text, "cprop:")
	assert.Contains(t, text, "constants folded")
}

func TestUnknownCommandIsReported(t *testing.T) {
	var out strings.Builder
	repl.Start(strings.NewReader("frobnicate\nquit\n"), &out)
	assert.Contains(t, out.String(), `unknown command "frobnicate"`)
}

func TestStepWithoutLoadIsReported(t *testing.T) {
	var out strings.Builder
	repl.Start(strings.NewReader("step\nquit\n"), &out)
	assert.Contains(t, out.String(), "no graph loaded")
}
