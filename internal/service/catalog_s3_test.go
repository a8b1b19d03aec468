package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func objectWithKey(bucket, key string) interface{} {
	return mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Bucket == bucket && *in.Key == key
	})
}

func TestS3CatalogLoaderLoad(t *testing.T) {
	body := `[
		{"id":"r1","title":"Shakshuka","category":"breakfast","ingredients":[{"id":"egg","amount":2,"unit":"pc"}]},
		{"id":"","title":"No id"},
		{"id":"r2","title":""},
		{"id":"r3","title":"Dal","nutrition":{"calories":380,"protein":18,"fiber":9}}
	]`
	client := new(mockS3Client)
	client.On("GetObject", mock.Anything, objectWithKey("catalog", "recipes.json")).
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil)

	recipes, err := NewS3CatalogLoader(client, "catalog", "recipes.json").Load(context.Background())

	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "r1", recipes[0].ID)
	assert.Equal(t, CostPerIngredient, recipes[0].Nutrition.Cost)
	assert.Equal(t, 380.0, recipes[1].Nutrition.Calories)
	assert.NotNil(t, recipes[1].NutrientScore)
	client.AssertExpectations(t)
}

func TestS3CatalogLoaderErrors(t *testing.T) {
	client := new(mockS3Client)
	client.On("GetObject", mock.Anything, objectWithKey("catalog", "missing.json")).
		Return(nil, errors.New("NoSuchKey"))
	client.On("GetObject", mock.Anything, objectWithKey("catalog", "broken.json")).
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("{"))}, nil)

	_, err := NewS3CatalogLoader(client, "catalog", "missing.json").Load(context.Background())
	assert.ErrorContains(t, err, "s3://catalog/missing.json")

	_, err = NewS3CatalogLoader(client, "catalog", "broken.json").Load(context.Background())
	assert.ErrorContains(t, err, "decode")
}
