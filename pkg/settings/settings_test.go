package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := loadFrom(filepath.Join(t.TempDir(), "missing.toml"))

	require.NoError(t, err)
	assert.Equal(t, "relcm.yaml", s.Document)
	assert.Equal(t, "https://slack.com/api", s.Slack.API)
	assert.Empty(t, s.Jira.URL)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relcm.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
document = "site.yaml"

[jira]
url = "https://jira.example.com"
username = "release-bot"

[slack]
token = "xoxb-123"
`), 0644))

	s, err := loadFrom(path)

	require.NoError(t, err)
	assert.Equal(t, "site.yaml", s.Document)
	assert.Equal(t, "https://jira.example.com", s.Jira.URL)
	assert.Equal(t, "release-bot", s.Jira.Username)
	assert.Equal(t, "xoxb-123", s.Slack.Token)
	// Defaults still fill what the file leaves out.
	assert.Equal(t, "https://slack.com/api", s.Slack.API)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relcm.toml")
	require.NoError(t, os.WriteFile(path, []byte("[jira]\ntoken = \"from-file\"\n"), 0644))
	t.Setenv("RELCM_JIRA_TOKEN", "from-env")
	t.Setenv("RELCM_DOCUMENT", "env.yaml")

	s, err := loadFrom(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Jira.Token)
	assert.Equal(t, "env.yaml", s.Document)
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relcm.toml")
	require.NoError(t, os.WriteFile(path, []byte("jira = [broken\n"), 0644))

	_, err := loadFrom(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
