package matcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOverrides(t *testing.T) {
	o := DefaultOverrides()
	assert.Equal(t, "Classification",
		o["What is the most sensitive data classification that the third party will have access to for this engagement?"])
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	content := `
"Where  is your   HQ?": "Where is your headquarters?"
"Data retention period?": "How long do you retain data?"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	o, err := LoadOverrides(path)
	require.NoError(t, err)
	require.Len(t, o, 2)

	// Keys and values are normalized on load.
	assert.Equal(t, "Where is your headquarters?", o["Where is your HQ?"])
	assert.Equal(t, "How long do you retain data?", o["Data retention period?"])
}

func TestLoadOverrides_MissingFile(t *testing.T) {
	_, err := LoadOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read overrides")
}

func TestLoadOverrides_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid: yaml"), 0o644))

	_, err := LoadOverrides(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse overrides")
}
