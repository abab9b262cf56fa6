package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultJobStorePath, cfg.JobStorePath)
	assert.Empty(t, cfg.Groups)
}

func TestLoadConfigFileYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
region: ap-southeast-1
workers: 3
groups:
  - name: Aryanoble
    accounts:
      - profile: arbel-prod
        account_id: "620463044477"
        display_name: Connect Prod (Non Cis)
slack:
  webhook_url: https://hooks.slack.com/services/T000/B000/XXX
  routes:
    - report: backup
      client_key: arbel-prod
      webhook_url: https://hooks.slack.com/services/T000/B001/YYY
      channel: "#aryanoble-backup"
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ap-southeast-1", cfg.Region)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, DefaultJobStorePath, cfg.JobStorePath)

	accounts := cfg.AccountsForGroup("Aryanoble")
	require.Len(t, accounts, 1)
	assert.Equal(t, "arbel-prod", accounts[0].Profile)
	assert.Equal(t, "620463044477", cfg.AccountID("arbel-prod"))
	assert.Equal(t, "Connect Prod (Non Cis)", cfg.DisplayName("arbel-prod"))

	require.Len(t, cfg.Slack.Routes, 1)
	assert.Equal(t, "#aryanoble-backup", cfg.Slack.Routes[0].Channel)
}

func TestLoadConfigFileTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
region = "us-west-2"

[[groups]]
name = "Staging"

  [[groups.accounts]]
  profile = "staging"
  account_id = "111122223333"
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "us-west-2", cfg.Region)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, "111122223333", cfg.AccountID("staging"))
}

func TestLoadConfigFileJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"region": "sa-east-1", "workers": 8}`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "sa-east-1", cfg.Region)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoadConfigFileUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.ini", "region = x")

	_, err := LoadConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file format")
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error accessing config file")
}

func TestLoadConfigFileDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfigFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestUnknownLookupsFallBack(t *testing.T) {
	cfg := Default()

	assert.Nil(t, cfg.AccountsForGroup("nope"))
	assert.Equal(t, "", cfg.AccountID("nope"))
	assert.Equal(t, "nope", cfg.DisplayName("nope"))
}
