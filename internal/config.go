package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type AppConfig struct {
	// BackupRoot overrides the secret-store root pointer when set.
	BackupRoot      string `mapstructure:"backup_root"`
	ChunkSizeBytes  uint64 `mapstructure:"chunk_size_bytes"`
	RemoteFolder    string `mapstructure:"remote_folder"`
	DriveAPIBase    string `mapstructure:"drive_api_base"`
	DriveUploadBase string `mapstructure:"drive_upload_base"`
	ClientUuid      string `mapstructure:"client_uuid"`
	LogLevel        string `mapstructure:"log_level"`
}

func LoadAppConfig(configPath string) (*AppConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	v, err := initViper(configPath, filepath.Join(home, ".cloudchain"), "config", "toml", "CLOUDCHAIN")
	if err != nil {
		return nil, err
	}

	v.SetDefault("backup_root", "")
	v.SetDefault("chunk_size_bytes", 8<<20)
	v.SetDefault("remote_folder", "backup")
	v.SetDefault("drive_api_base", "")
	v.SetDefault("drive_upload_base", "")
	v.SetDefault("client_uuid", uuid.New().String())
	v.SetDefault("log_level", "info")

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.BackupRoot = expandPath(cfg.BackupRoot)

	// Create-on-first-run ONLY: if no file was read, persist the defaults.
	if v.ConfigFileUsed() == "" {
		writePath := configPath
		if writePath == "" {
			writePath = filepath.Join(home, ".cloudchain", "config.toml")
		}
		if _, statErr := os.Stat(writePath); errors.Is(statErr, os.ErrNotExist) {
			if _, err := cfg.Save(writePath); err != nil {
				return nil, fmt.Errorf("persist default app config: %w", err)
			}
			Info("app config written", Fields{
				ConfigPath: writePath,
			})
		}
	}

	return &cfg, nil
}

func (cfg *AppConfig) Save(path string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "" {
		path = filepath.Join(home, ".cloudchain", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("backup_root", cfg.BackupRoot)
	v.Set("chunk_size_bytes", cfg.ChunkSizeBytes)
	v.Set("remote_folder", cfg.RemoteFolder)
	v.Set("drive_api_base", cfg.DriveAPIBase)
	v.Set("drive_upload_base", cfg.DriveUploadBase)
	v.Set("client_uuid", cfg.ClientUuid)
	v.Set("log_level", cfg.LogLevel)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write app config: %w", err)
	}
	_ = os.Chmod(path, 0o600)
	return path, nil
}

func initViper(configPath, defaultDir, defaultName, defaultType, envPrefix string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType(defaultType)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(defaultDir)
		v.AddConfigPath(".")
		v.SetConfigName(defaultName)
	}

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
