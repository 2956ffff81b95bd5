package config

import "os"

type Config interface {
	EnvConfig
	CognitoConfig
	LambdaConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Cognito
	Lambda
}

func New() Config {
	return mainConfig{}
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
