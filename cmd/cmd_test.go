package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args against a scratch directory
// layout and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := t.TempDir()
	t.Setenv("INPUT_DIR", filepath.Join(root, "input"))
	t.Setenv("OUTPUT_DIR", filepath.Join(root, "output"))
	t.Setenv("MAPPING_FILE", filepath.Join(root, "map_dictionary.csv"))
	t.Setenv("DEFAULT_TAX_RATE", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--config", filepath.Join(root, "config.yaml")))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    "+Version)
}

func TestReconcile_NoCombinedInput(t *testing.T) {
	out, err := execute(t, "reconcile")
	require.NoError(t, err)
	assert.Equal(t, "Run \"pricecmp extract\" first.\n", out)
}

func TestExtract_NoDocuments(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	out, err := execute(t, "extract")
	require.NoError(t, err)
	assert.Contains(t, out, "Put invoice images/PDFs into ")
	assert.Contains(t, out, " then run again.\n")
}

func TestExtract_NoDocumentsWithBrokenAWSProfile(t *testing.T) {
	t.Setenv("AWS_PROFILE", "does-not-exist")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))

	out, err := execute(t, "extract")
	require.NoError(t, err)
	assert.Contains(t, out, "Put invoice images/PDFs into ")
}

func TestStageCommandsRejectArguments(t *testing.T) {
	_, err := execute(t, "reconcile", "extra")
	require.Error(t, err)
}
