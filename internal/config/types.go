package config

import (
	"fmt"
	"path/filepath"

	"github.com/maksimkurb/hostsfilter/internal/utils"
)

type Config struct {
	// ConfigVersion is the configuration file version.
	ConfigVersion uint8 `toml:"config_version" json:"config_version"`
	// General holds general configuration.
	General *GeneralConfig `toml:"general"`
	// Sources are the managed blocklists. You can add multiple sources and select which of them are merged by toggling "enabled".
	Sources []*Source `toml:"source,omitempty"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// HostsPath is the target hosts file path (default: /etc/hosts).
	HostsPath string `toml:"hosts_path" json:"hosts_path" validate:"required"`
	// BackupPath is the backup file path. If empty, "<hosts_path>.bak" is used.
	BackupPath string `toml:"backup_path,omitempty" json:"backup_path,omitempty"`
	// ManifestPath is the path of the manifest recording entries written on the last apply. If empty, "<hosts_path>.hostsfilter" is used.
	ManifestPath string `toml:"manifest_path,omitempty" json:"manifest_path,omitempty"`
	// WhitelistPath is an optional file with hostnames that must never be blocked, one per line.
	WhitelistPath string `toml:"whitelist_path,omitempty" json:"whitelist_path,omitempty"`
	// CacheDir is the directory for downloaded lists.
	CacheDir string `toml:"cache_dir" json:"cache_dir" validate:"required"`
	// FetchTimeoutSeconds is the per-list download timeout (default: 30).
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds" json:"fetch_timeout_seconds" validate:"gte=0"`
	// UserAgent is the User-Agent header sent when downloading lists.
	UserAgent string `toml:"user_agent,omitempty" json:"user_agent,omitempty"`
	// APIListenAddr is the HTTP API bind address (default: 127.0.0.1:8765).
	APIListenAddr string `toml:"api_listen_addr,omitempty" json:"api_listen_addr,omitempty" validate:"hostport_or_empty"`
}

type Source struct {
	// Name is the identifier of the source list.
	Name string `toml:"name" json:"name" validate:"required,source_name"`
	// URL is the download URL of the list.
	URL string `toml:"url" json:"url" validate:"required,url"`
	// Enabled selects the list for merging.
	Enabled bool `toml:"enabled" json:"enabled"`
}

const (
	DefaultFetchTimeoutSeconds = 30
	DefaultAPIListenAddr       = "127.0.0.1:8765"
	DefaultUserAgent           = "hostsfilter/1.0"
)

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

// GetAbsCacheDir returns the absolute path of the downloaded-lists directory.
func (c *Config) GetAbsCacheDir() string {
	return utils.GetAbsolutePath(c.General.CacheDir, c.GetConfigDir())
}

// GetBackupPath returns the configured backup path or the default sibling
// of the target file.
func (c *Config) GetBackupPath() string {
	if c.General.BackupPath != "" {
		return utils.GetAbsolutePath(c.General.BackupPath, c.GetConfigDir())
	}
	return c.General.HostsPath + ".bak"
}

// GetManifestPath returns the configured manifest path or the default
// sibling of the target file.
func (c *Config) GetManifestPath() string {
	if c.General.ManifestPath != "" {
		return utils.GetAbsolutePath(c.General.ManifestPath, c.GetConfigDir())
	}
	return c.General.HostsPath + ".hostsfilter"
}

// GetWhitelistPath returns the absolute whitelist path, or "" if none is
// configured.
func (c *Config) GetWhitelistPath() string {
	if c.General.WhitelistPath == "" {
		return ""
	}
	return utils.GetAbsolutePath(c.General.WhitelistPath, c.GetConfigDir())
}

// GetFetchTimeoutSeconds returns the configured download timeout or its default.
func (c *Config) GetFetchTimeoutSeconds() int {
	if c.General.FetchTimeoutSeconds == 0 {
		return DefaultFetchTimeoutSeconds
	}
	return c.General.FetchTimeoutSeconds
}

// GetUserAgent returns the configured User-Agent or its default.
func (c *Config) GetUserAgent() string {
	if c.General.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.General.UserAgent
}

// GetAPIListenAddr returns the configured API bind address or its default.
func (c *Config) GetAPIListenAddr() string {
	if c.General.APIListenAddr == "" {
		return DefaultAPIListenAddr
	}
	return c.General.APIListenAddr
}

// GetSourceByName returns the source with the given name.
func (c *Config) GetSourceByName(name string) (*Source, error) {
	for _, src := range c.Sources {
		if src.Name == name {
			return src, nil
		}
	}
	return nil, fmt.Errorf("source \"%s\" not found", name)
}

// EnabledSourceNames returns the names of enabled sources in config order.
// This order is the merge priority order: earlier sources win conflicts.
func (c *Config) EnabledSourceNames() []string {
	var names []string
	for _, src := range c.Sources {
		if src.Enabled {
			names = append(names, src.Name)
		}
	}
	return names
}

// CachePath returns the on-disk path of the downloaded copy of this source.
func (s *Source) CachePath(cfg *Config) string {
	return filepath.Join(cfg.GetAbsCacheDir(), fmt.Sprintf("%s.lst", s.Name))
}
