package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
)

// S3GetObjectAPI is the part of the S3 client the catalog loader needs.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3CatalogLoader reads a JSON array of recipes from one S3 object.
type S3CatalogLoader struct {
	client S3GetObjectAPI
	bucket string
	key    string
}

// NewS3CatalogLoader creates a new S3CatalogLoader instance
func NewS3CatalogLoader(client S3GetObjectAPI, bucket, key string) *S3CatalogLoader {
	return &S3CatalogLoader{client: client, bucket: bucket, key: key}
}

// Load fetches and decodes the catalog object. Recipes come back with
// nutrition defaults applied.
func (l *S3CatalogLoader) Load(ctx context.Context) ([]model.Recipe, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(l.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog object s3://%s/%s: %w", l.bucket, l.key, err)
	}
	defer out.Body.Close()

	var recipes []model.Recipe
	if err := json.NewDecoder(out.Body).Decode(&recipes); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	valid := recipes[:0]
	for _, r := range recipes {
		if r.ID != "" && r.Title != "" {
			valid = append(valid, r)
		}
	}
	return ApplyNutritionDefaults(valid), nil
}
