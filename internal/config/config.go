package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/maksimkurb/hostsfilter/internal/log"
)

func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var config Config
	if err := toml.Unmarshal(content, &config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf(derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return nil, fmt.Errorf("failed to parse config file")
		}
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	config._absConfigFilePath = configFile

	log.Debugf("Configuration file path: %s", configFile)
	log.Debugf("Downloaded lists directory: %s", config.GetAbsCacheDir())

	return &config, nil
}

func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}

// WriteConfig persists the configuration back to its file. The UI layer
// uses this to store the source selection between sessions.
func (c *Config) WriteConfig() error {
	config, err := c.SerializeConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(c._absConfigFilePath, config.Bytes(), 0644); err != nil {
		return err
	}
	return nil
}

// DefaultConfig returns a configuration pre-populated with the stock source
// catalog. Written on "init-config" when no configuration exists yet.
func DefaultConfig(configPath string) *Config {
	return &Config{
		ConfigVersion: 1,
		General: &GeneralConfig{
			HostsPath:           "/etc/hosts",
			CacheDir:            "sources.d",
			FetchTimeoutSeconds: DefaultFetchTimeoutSeconds,
			APIListenAddr:       DefaultAPIListenAddr,
		},
		Sources: []*Source{
			{Name: "malware_pihole", URL: "https://raw.githubusercontent.com/davidonzo/Threat-Intel/master/lists/latestdomains.piHole.txt", Enabled: true},
			{Name: "malware_urlhaus", URL: "https://urlhaus.abuse.ch/downloads/hostfile/", Enabled: true},
			{Name: "malware_urlhaus_filter", URL: "https://curben.gitlab.io/malware-filter/urlhaus-filter-hosts.txt", Enabled: false},
			{Name: "spam", URL: "https://raw.githubusercontent.com/FadeMind/hosts.extras/master/add.Spam/hosts", Enabled: false},
			{Name: "no_coin", URL: "https://raw.githubusercontent.com/greatis/Anti-WebMiner/master/hosts", Enabled: false},
			{Name: "ads_stevenblack", URL: "https://raw.githubusercontent.com/StevenBlack/hosts/master/hosts", Enabled: true},
		},
		_absConfigFilePath: configPath,
	}
}

// WriteDefaultConfig writes a default configuration file, creating parent
// directories as needed. Fails if the file already exists.
func WriteDefaultConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)
	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	if _, err := os.Stat(configFile); err == nil {
		return nil, fmt.Errorf("configuration file already exists: %s", configFile)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %v", err)
	}

	cfg := DefaultConfig(configFile)
	if err := cfg.WriteConfig(); err != nil {
		return nil, fmt.Errorf("failed to write default config: %v", err)
	}

	log.Infof("Default configuration written to %s", configFile)
	return cfg, nil
}
