package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/aiot/config"
	ConfigFileName    = "aiot.yml"
)

// Default service ports, matching the deployment topology the gateway
// route table assumes.
const (
	DefaultRBACPort    = 3051
	DefaultDronePort   = 3052
	DefaultGeneralPort = 3053
	DefaultGatewayPort = 8000
)

// AiotConfig holds all aiot-in-go configuration settings
type AiotConfig struct {
	// TrustedProxies is a list of CIDR ranges for trusted proxies
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// APIListLimitMax is the maximum number of results for listing requests
	APIListLimitMax int `yaml:"api_list_limit_max" json:"api_list_limit_max"`

	// TokenTTL is the lifetime of issued access tokens in seconds
	TokenTTL int `yaml:"token_ttl" json:"token_ttl"`

	// TokenIssuer is the iss claim stamped on issued tokens
	TokenIssuer string `yaml:"token_issuer" json:"token_issuer"`

	// ArchiveRetentionDays is the age in days past which telemetry rows are archived
	ArchiveRetentionDays int `yaml:"archive_retention_days" json:"archive_retention_days"`

	// ArchiveBatchSize bounds the number of rows moved per archive pass
	ArchiveBatchSize int `yaml:"archive_batch_size" json:"archive_batch_size"`

	// ArchiveInterval is the seconds between archive runs
	ArchiveInterval int `yaml:"archive_interval" json:"archive_interval"`

	// PositionCacheTTL is the seconds a latest-position entry stays in Redis
	PositionCacheTTL int `yaml:"position_cache_ttl" json:"position_cache_ttl"`

	// PermissionCacheTTL is the seconds a permission snapshot stays in Redis
	PermissionCacheTTL int `yaml:"permission_cache_ttl" json:"permission_cache_ttl"`

	// ConsulEnabled controls service registration with Consul
	ConsulEnabled bool `yaml:"consul_enabled" json:"consul_enabled"`

	// ServiceAddress is the address advertised to Consul
	ServiceAddress string `yaml:"service_address" json:"service_address"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *AiotConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *AiotConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// Default returns a config populated with built-in defaults only, without
// consulting the config file or environment
func Default() *AiotConfig {
	return newDefault()
}

// newDefault returns a config with default values
func newDefault() *AiotConfig {
	return &AiotConfig{
		TrustedProxies:       []string{},
		APIListLimitMax:      1000,
		TokenTTL:             3600,
		TokenIssuer:          "aiot",
		ArchiveRetentionDays: 30,
		ArchiveBatchSize:     1000,
		ArchiveInterval:      3600,
		PositionCacheTTL:     60,
		PermissionCacheTTL:   900,
		ConsulEnabled:        true,
		ServiceAddress:       "",
		sources:              make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*AiotConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("AIOT_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig AiotConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"trusted_proxies", "api_list_limit_max", "token_ttl", "token_issuer",
		"archive_retention_days", "archive_batch_size", "archive_interval",
		"position_cache_ttl", "permission_cache_ttl", "consul_enabled",
		"service_address",
	}
}

func (c *AiotConfig) applyFileConfig(file *AiotConfig) {
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	if file.APIListLimitMax != 0 {
		c.APIListLimitMax = file.APIListLimitMax
		c.sources["api_list_limit_max"] = "file"
	}
	if file.TokenTTL != 0 {
		c.TokenTTL = file.TokenTTL
		c.sources["token_ttl"] = "file"
	}
	if file.TokenIssuer != "" {
		c.TokenIssuer = file.TokenIssuer
		c.sources["token_issuer"] = "file"
	}
	if file.ArchiveRetentionDays != 0 {
		c.ArchiveRetentionDays = file.ArchiveRetentionDays
		c.sources["archive_retention_days"] = "file"
	}
	if file.ArchiveBatchSize != 0 {
		c.ArchiveBatchSize = file.ArchiveBatchSize
		c.sources["archive_batch_size"] = "file"
	}
	if file.ArchiveInterval != 0 {
		c.ArchiveInterval = file.ArchiveInterval
		c.sources["archive_interval"] = "file"
	}
	if file.PositionCacheTTL != 0 {
		c.PositionCacheTTL = file.PositionCacheTTL
		c.sources["position_cache_ttl"] = "file"
	}
	if file.PermissionCacheTTL != 0 {
		c.PermissionCacheTTL = file.PermissionCacheTTL
		c.sources["permission_cache_ttl"] = "file"
	}
	if file.ServiceAddress != "" {
		c.ServiceAddress = file.ServiceAddress
		c.sources["service_address"] = "file"
	}
}

func (c *AiotConfig) applyEnvConfig() {
	if val := os.Getenv("AIOT_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("AIOT_API_LIST_LIMIT_MAX"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.APIListLimitMax = i
			c.sources["api_list_limit_max"] = "environment"
		}
	}
	if val := os.Getenv("AIOT_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.TokenTTL = i
			c.sources["token_ttl"] = "environment"
		}
	}
	if val := os.Getenv("AIOT_TOKEN_ISSUER"); val != "" {
		c.TokenIssuer = val
		c.sources["token_issuer"] = "environment"
	}
	if val := os.Getenv("AIOT_ARCHIVE_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.ArchiveRetentionDays = i
			c.sources["archive_retention_days"] = "environment"
		}
	}
	if val := os.Getenv("AIOT_ARCHIVE_BATCH_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.ArchiveBatchSize = i
			c.sources["archive_batch_size"] = "environment"
		}
	}
	if val := os.Getenv("AIOT_ARCHIVE_INTERVAL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.ArchiveInterval = i
			c.sources["archive_interval"] = "environment"
		}
	}
	if val := os.Getenv("AIOT_POSITION_CACHE_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.PositionCacheTTL = i
			c.sources["position_cache_ttl"] = "environment"
		}
	}
	if val := os.Getenv("AIOT_PERMISSION_CACHE_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.PermissionCacheTTL = i
			c.sources["permission_cache_ttl"] = "environment"
		}
	}
	if val := os.Getenv("AIOT_CONSUL_ENABLED"); val != "" {
		c.ConsulEnabled = val == "true" || val == "1"
		c.sources["consul_enabled"] = "environment"
	}
	if val := os.Getenv("AIOT_SERVICE_ADDRESS"); val != "" {
		c.ServiceAddress = val
		c.sources["service_address"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *AiotConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *AiotConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// TokenLifetime returns the token TTL as a duration
func (c *AiotConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// ArchiveRunInterval returns the archive interval as a duration
func (c *AiotConfig) ArchiveRunInterval() time.Duration {
	return time.Duration(c.ArchiveInterval) * time.Second
}

// PositionTTL returns the position cache TTL as a duration
func (c *AiotConfig) PositionTTL() time.Duration {
	return time.Duration(c.PositionCacheTTL) * time.Second
}

// PermissionTTL returns the permission cache TTL as a duration
func (c *AiotConfig) PermissionTTL() time.Duration {
	return time.Duration(c.PermissionCacheTTL) * time.Second
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *AiotConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *AiotConfig) Validate() error {
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %d", c.TokenTTL)
	}
	if c.ArchiveRetentionDays <= 0 {
		return fmt.Errorf("archive_retention_days must be positive, got %d", c.ArchiveRetentionDays)
	}
	if c.ArchiveBatchSize <= 0 {
		return fmt.Errorf("archive_batch_size must be positive, got %d", c.ArchiveBatchSize)
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *AiotConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "api_list_limit_max", Value: strconv.Itoa(c.APIListLimitMax), Source: c.Source("api_list_limit_max")},
		{Name: "token_ttl", Value: strconv.Itoa(c.TokenTTL), Source: c.Source("token_ttl")},
		{Name: "token_issuer", Value: c.TokenIssuer, Source: c.Source("token_issuer")},
		{Name: "archive_retention_days", Value: strconv.Itoa(c.ArchiveRetentionDays), Source: c.Source("archive_retention_days")},
		{Name: "archive_batch_size", Value: strconv.Itoa(c.ArchiveBatchSize), Source: c.Source("archive_batch_size")},
		{Name: "archive_interval", Value: strconv.Itoa(c.ArchiveInterval), Source: c.Source("archive_interval")},
		{Name: "position_cache_ttl", Value: strconv.Itoa(c.PositionCacheTTL), Source: c.Source("position_cache_ttl")},
		{Name: "permission_cache_ttl", Value: strconv.Itoa(c.PermissionCacheTTL), Source: c.Source("permission_cache_ttl")},
		{Name: "consul_enabled", Value: strconv.FormatBool(c.ConsulEnabled), Source: c.Source("consul_enabled")},
		{Name: "service_address", Value: c.ServiceAddress, Source: c.Source("service_address")},
	}
}

// FormatText returns a text representation of the configuration
func (c *AiotConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *AiotConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
