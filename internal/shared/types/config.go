package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Region       string       `json:"region" yaml:"region" toml:"region"`
	Workers      int          `json:"workers" yaml:"workers" toml:"workers"`
	Groups       []Group      `json:"groups" yaml:"groups" toml:"groups"`
	Slack        SlackConfig  `json:"slack" yaml:"slack" toml:"slack"`
	RDS          []RDSTarget  `json:"rds" yaml:"rds" toml:"rds"`
	Backup       BackupConfig `json:"backup" yaml:"backup" toml:"backup"`
	JobStorePath string       `json:"job_store_path" yaml:"job_store_path" toml:"job_store_path"`
}

// Group is a named set of AWS accounts monitored together.
type Group struct {
	Name     string         `json:"name" yaml:"name" toml:"name"`
	Accounts []AccountEntry `json:"accounts" yaml:"accounts" toml:"accounts"`
}

// AccountEntry maps a CLI profile to its account id and human label.
type AccountEntry struct {
	Profile     string `json:"profile" yaml:"profile" toml:"profile"`
	AccountID   string `json:"account_id" yaml:"account_id" toml:"account_id"`
	DisplayName string `json:"display_name" yaml:"display_name" toml:"display_name"`
}

// SlackConfig holds the default webhook plus per-report routing.
type SlackConfig struct {
	WebhookURL string       `json:"webhook_url" yaml:"webhook_url" toml:"webhook_url"`
	Channel    string       `json:"channel" yaml:"channel" toml:"channel"`
	Username   string       `json:"username" yaml:"username" toml:"username"`
	IconEmoji  string       `json:"icon_emoji" yaml:"icon_emoji" toml:"icon_emoji"`
	Routes     []SlackRoute `json:"routes" yaml:"routes" toml:"routes"`
}

// SlackRoute sends one report kind for one client to a dedicated webhook.
type SlackRoute struct {
	Report     string `json:"report" yaml:"report" toml:"report"`
	ClientKey  string `json:"client_key" yaml:"client_key" toml:"client_key"`
	WebhookURL string `json:"webhook_url" yaml:"webhook_url" toml:"webhook_url"`
	Channel    string `json:"channel" yaml:"channel" toml:"channel"`
}

// RDSTarget describes one Aurora cluster watched by the daily RDS check.
type RDSTarget struct {
	Profile     string        `json:"profile" yaml:"profile" toml:"profile"`
	AccountName string        `json:"account_name" yaml:"account_name" toml:"account_name"`
	ClusterID   string        `json:"cluster_id" yaml:"cluster_id" toml:"cluster_id"`
	Writer      string        `json:"writer" yaml:"writer" toml:"writer"`
	Reader      string        `json:"reader" yaml:"reader" toml:"reader"`
	Region      string        `json:"region" yaml:"region" toml:"region"`
	Thresholds  RDSThresholds `json:"thresholds" yaml:"thresholds" toml:"thresholds"`
}

// RDSThresholds are the warning levels for the daily RDS metrics.
type RDSThresholds struct {
	FreeableMemoryGB float64 `json:"freeable_memory_gb" yaml:"freeable_memory_gb" toml:"freeable_memory_gb"`
	ACUPercent       float64 `json:"acu_percent" yaml:"acu_percent" toml:"acu_percent"`
	CPUPercent       float64 `json:"cpu_percent" yaml:"cpu_percent" toml:"cpu_percent"`
	Connections      float64 `json:"connections" yaml:"connections" toml:"connections"`
}

// BackupConfig scopes the backup check to specific vaults and snapshot profiles.
type BackupConfig struct {
	RDSSnapshotProfiles []string      `json:"rds_snapshot_profiles" yaml:"rds_snapshot_profiles" toml:"rds_snapshot_profiles"`
	Vaults              []VaultTarget `json:"vaults" yaml:"vaults" toml:"vaults"`
}

// VaultTarget identifies a Backup vault inspected from a given profile.
type VaultTarget struct {
	Profile   string `json:"profile" yaml:"profile" toml:"profile"`
	VaultName string `json:"vault_name" yaml:"vault_name" toml:"vault_name"`
}

// AccountsForGroup returns the configured accounts of a group, nil if unknown.
func (c *Config) AccountsForGroup(name string) []AccountEntry {
	for _, g := range c.Groups {
		if g.Name == name {
			return g.Accounts
		}
	}
	return nil
}

// DisplayName resolves the human label for a profile, falling back to the
// profile name itself.
func (c *Config) DisplayName(profile string) string {
	for _, g := range c.Groups {
		for _, a := range g.Accounts {
			if a.Profile == profile && a.DisplayName != "" {
				return a.DisplayName
			}
		}
	}
	return profile
}

// AccountID returns the configured account id for a profile, empty if unknown.
func (c *Config) AccountID(profile string) string {
	for _, g := range c.Groups {
		for _, a := range g.Accounts {
			if a.Profile == profile {
				return a.AccountID
			}
		}
	}
	return ""
}
