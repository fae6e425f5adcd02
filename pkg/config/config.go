package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LEADERS_API_BASE_URL.
const EnvPrefix = "LEADERS"

var configDir string
var configFilePath string
var credentialsPath string

// systemConfigPaths is swapped out in tests
var systemConfigPaths = getSystemConfigPaths

// NotificationSettings groups the notification subsystem keys.
type NotificationSettings struct {
	PollInterval time.Duration
	PageSize     int
	SoundFile    string
	SoundPlayer  string
	StreamURL    string
}

// getConfigDir returns platform-specific config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		// Windows: %LOCALAPPDATA%\leaders-tax\cli
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "leaders-tax", "cli"), nil
	}

	// Unix-like (macOS, Linux): ~/.config/leaders-tax/cli
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "leaders-tax", "cli"), nil
}

// getSystemConfigPaths returns platform-specific system config paths
func getSystemConfigPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramFiles"), "LeadersTax", "cli", "config.toml")}
	}

	return []string{
		"/etc/leaders-tax/cli/config.toml",
		"/usr/local/etc/leaders-tax/cli/config.toml",
	}
}

// Init initializes the configuration. Precedence, lowest first: defaults,
// system config, user config, .env file, process environment.
func Init(configPath string) error {
	var err error
	if configPath != "" {
		configDir = filepath.Dir(configPath)
		configFilePath = configPath
	} else {
		configDir, err = getConfigDir()
		if err != nil {
			return err
		}
		configFilePath = filepath.Join(configDir, "config.toml")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	credentialsPath = filepath.Join(configDir, "credentials")

	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	viper.Reset()
	viper.SetConfigType("toml")
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for _, sysConfigPath := range systemConfigPaths() {
		if mergeConfigFile(sysConfigPath) {
			break
		}
	}
	mergeConfigFile(configFilePath)

	return nil
}

// mergeConfigFile layers path over the values read so far and reports
// whether the file exists. An unreadable file is logged and skipped; config
// is read before the logger is set up, so this uses the default logger.
func mergeConfigFile(path string) bool {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("Cannot read config file", "file", path, "error", err)
		}
		return false
	}

	viper.SetConfigFile(path)
	if err := viper.MergeInConfig(); err != nil {
		log.Warn("Ignoring invalid config file", "file", path, "error", err)
	}
	return true
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:5000")
	viper.SetDefault("api.timeout", 30)

	viper.SetDefault("auth.store", "file")

	viper.SetDefault("notifications.poll_interval", 15)
	viper.SetDefault("notifications.page_size", 20)
	viper.SetDefault("notifications.sound_file", "")
	viper.SetDefault("notifications.sound_player", "")
	viper.SetDefault("notifications.stream_url", "")

	viper.SetDefault("output.format", "text")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(configDir, "leaders-cli.log"))
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetString returns a string configuration value
func GetString(key string) string {
	value := viper.GetString(key)
	switch key {
	case "log.file", "notifications.sound_file":
		return expandPath(value)
	}
	return value
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool configuration value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Set overrides a value for the running process without touching the file.
func Set(key string, value interface{}) {
	viper.Set(key, value)
}

// SetString sets a string configuration value and persists it to the user
// config. Only keys already in the user file are written back with it, so
// defaults and system config stay out of the file.
func SetString(key string, value string) error {
	user := viper.New()
	user.SetConfigType("toml")
	user.SetConfigFile(configFilePath)
	if _, err := os.Stat(configFilePath); err == nil {
		if err := user.ReadInConfig(); err != nil {
			return err
		}
	}
	user.Set(key, value)
	if err := user.WriteConfigAs(configFilePath); err != nil {
		return err
	}

	viper.Set(key, value)
	return nil
}

// Notifications returns the notification settings with sane floors applied.
func Notifications() NotificationSettings {
	interval := GetInt("notifications.poll_interval")
	if interval <= 0 {
		interval = 15
	}
	pageSize := GetInt("notifications.page_size")
	if pageSize <= 0 {
		pageSize = 20
	}
	return NotificationSettings{
		PollInterval: time.Duration(interval) * time.Second,
		PageSize:     pageSize,
		SoundFile:    GetString("notifications.sound_file"),
		SoundPlayer:  GetString("notifications.sound_player"),
		StreamURL:    GetString("notifications.stream_url"),
	}
}

// APITimeout returns the per-request timeout for the API client.
func APITimeout() time.Duration {
	return time.Duration(GetInt("api.timeout")) * time.Second
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// GetConfigFilePath returns the user config file path
func GetConfigFilePath() string {
	return configFilePath
}

// GetCredentialsPath returns the path to the credentials file
func GetCredentialsPath() string {
	return credentialsPath
}
