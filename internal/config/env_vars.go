package config

import (
	"os"
	"path/filepath"
)

const (
	appNameVar    = "MTDASH_APP_NAME"
	dataFolderVar = "MTDASH_DATA_FOLDER"
	envVar        = "MTDASH_ENV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Media Translator")
}

// GetDataFolder is where the scoped stores live. Defaults to the user
// config dir so sessions survive process restarts.
func (EnvVars) GetDataFolder() string {
	if folder := os.Getenv(dataFolderVar); folder != "" {
		return folder
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ".mtdash"
	}
	return filepath.Join(base, "mtdash")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "PROD")
}
