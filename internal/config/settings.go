package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	cwerrors "github.com/toyz/cachewire/internal/errors"
	"github.com/toyz/cachewire/internal/utils"
)

// Settings configure the cachewire CLI.
type Settings struct {
	ServicesFile string `mapstructure:"services_file"`
	ProxyDir     string `mapstructure:"proxy_dir"`
	LogLevel     string `mapstructure:"log_level"`
	Listen       string `mapstructure:"listen"`
}

// Setting keys, usable with viper.BindPFlag.
const (
	KeyServicesFile = "services_file"
	KeyProxyDir     = "proxy_dir"
	KeyLogLevel     = "log_level"
	KeyListen       = "listen"
)

// NewViper returns a viper instance reading cachewire.yaml from the working
// directory or ./config, with CACHEWIRE_* environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("cachewire")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("CACHEWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyServicesFile, "services.yaml")
	v.SetDefault(KeyProxyDir, "var/cache/proxies")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyListen, ":8080")
	return v
}

// LoadSettings reads the configuration of v. configFile overrides the search
// paths; a missing default config file is not an error.
func LoadSettings(v *viper.Viper, configFile string) (*Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, cwerrors.WrapConfigurationError("cachewire", "read", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, cwerrors.WrapConfigurationError("cachewire", "decode", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks the settings values.
func (s *Settings) Validate() error {
	checks := []error{
		utils.NotEmpty(KeyServicesFile)(s.ServicesFile),
		utils.NotEmpty(KeyProxyDir)(s.ProxyDir),
		utils.IsOneOf(KeyLogLevel, "silent", "error", "warn", "info", "verbose", "debug")(strings.ToLower(s.LogLevel)),
	}
	for _, err := range checks {
		if err != nil {
			return cwerrors.WrapConfigurationError("cachewire", "validate", err)
		}
	}
	return nil
}
