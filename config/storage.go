package config

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and catalog object info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	ObjectKey  string
}

// NewS3Config initializes the S3 client for the catalog seed object
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	if cfg.CatalogS3Bucket == "" {
		return nil, fmt.Errorf("CATALOG_S3_BUCKET is not set")
	}

	// Load AWS config from environment or shared config
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: cfg.CatalogS3Bucket,
		ObjectKey:  cfg.CatalogS3Key,
	}, nil
}
