package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, "Print the version number", versionCmd.Short)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	SetVersion("test-version-1.0.0")
	defer func() { version = originalVersion }()

	out, err := run(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "socrates version test-version-1.0.0")
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	originalVersion := version
	version = "dev"
	defer func() { version = originalVersion }()

	SetVersion("")

	assert.Equal(t, "dev", version)
}

func TestVersionCmd_JSON(t *testing.T) {
	originalVersion := version
	SetVersion("1.2.3")
	defer func() { version = originalVersion }()

	out, err := run(t, "version", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"version": "1.2.3"`)
	assert.Contains(t, out, `"go"`)
}
