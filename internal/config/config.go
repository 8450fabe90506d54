package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	PlatformURL    string `env:"PLATFORM_URL,notEmpty,required"`
	PlatformAPIKey string `env:"PLATFORM_API_KEY"`
	Region         string `env:"PLATFORM_REGION" envDefault:"us-east-1"`
	Role           string `env:"TRAINING_ROLE,notEmpty,required"`

	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	DataBucketName    string `env:"DATA_BUCKET_NAME" envDefault:"training-data"`

	HistoryDBPath string `env:"HISTORY_DB_PATH" envDefault:"mltrain-history.db"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return &cfg, nil
}
