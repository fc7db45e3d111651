package commands

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Version Command Tests ----------

func TestVersionCommandOutput(t *testing.T) {
	for _, version := range []string{"0.1.0", "1.2.3-rc.1", "dev"} {
		t.Run(version, func(t *testing.T) {
			var out bytes.Buffer
			cmd := NewVersionCommand(version)
			cmd.SetOut(&out)
			cmd.SetArgs(nil)

			require.NoError(t, cmd.Execute())
			assert.Equal(t,
				"leapquery v"+version+"\nSQL parser and rewriter built with "+runtime.Version()+"\n",
				out.String())
		})
	}
}

func TestVersionCommandIgnoresArgs(t *testing.T) {
	cmd := NewVersionCommand("test")
	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	// Extra arguments are ignored rather than failing the command.
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"extra"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "leapquery vtest")
}
