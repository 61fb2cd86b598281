package root

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozacod/forge/internal/pkg/msg"
	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

func TestExecuteWithBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forge.yaml"), []byte("package_manager: [conan\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("FORGE_CONFIG", "")
	t.Setenv("FORGE_GLOBAL_CONFIG", filepath.Join(dir, "missing.yaml"))

	var stderr bytes.Buffer
	t.Cleanup(msg.SetOutput(&bytes.Buffer{}, &stderr))

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "root help", args: []string{"--help"}, code: forgeerrors.ExitOK},
		{name: "command help", args: []string{"install", "--help"}, code: forgeerrors.ExitOK},
		{name: "missing argument", args: []string{"install", "engine"}, code: forgeerrors.ExitUsage},
		{name: "unknown command", args: []string{"deploy"}, code: forgeerrors.ExitUsage},
		{name: "valid command reads the config", args: []string{"clean"}, code: forgeerrors.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, Execute(context.Background(), tt.args))
		})
	}
	assert.Contains(t, stderr.String(), "config error")
}
