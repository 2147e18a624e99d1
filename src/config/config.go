package config

import (
	"os"
	"path/filepath"

	"walkforward/src/datamodels"
	"walkforward/src/utils/general"

	"github.com/spf13/viper"
)

func Load() (*datamodels.WalkforwardConfig, error) {
	// read config path from env var
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		currentDir := general.GetCurrentDir()
		// go up two levels to the repository root
		configPath = filepath.Join(currentDir, "..", "..", "config.local.yaml")
	}

	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var walkforwardConfig datamodels.WalkforwardConfig
	if err := viper.Unmarshal(&walkforwardConfig); err != nil {
		return nil, err
	}

	return &walkforwardConfig, nil
}
