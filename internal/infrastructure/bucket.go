package infrastructure

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/marquee/internal/model"
)

const posterKeyPrefix = "posters/"

// BucketPosterStore stores posters in an S3 compatible bucket
type BucketPosterStore struct {
	client *minio.Client
	bucket string
}

func NewBucketPosterStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*BucketPosterStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("could not check bucket '%s': %w", bucket, err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("could not create bucket '%s': %w", bucket, err)
		}
		log.Info().Str("bucket", bucket).Msg("Created posters bucket")
	}

	return &BucketPosterStore{
		client: client,
		bucket: bucket,
	}, nil
}

func (bs BucketPosterStore) objectURLPrefix() string {
	return fmt.Sprintf("%s/%s/", bs.client.EndpointURL(), bs.bucket)
}

// StorePoster uploads the poster under a generated unique key and returns its URL
func (bs BucketPosterStore) StorePoster(ctx context.Context, poster model.PosterUpload) (string, error) {
	key := posterKeyPrefix + uniquePosterName(poster.Filename)

	in, err := poster.Open()
	if err != nil {
		return "", fmt.Errorf("could not open poster '%s': %w", poster.Filename, err)
	}
	defer in.Close()

	_, err = bs.client.PutObject(ctx, bs.bucket, key, in, poster.Size, minio.PutObjectOptions{
		ContentType: poster.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("could not upload poster '%s': %w", poster.Filename, err)
	}
	log.Debug().Str("bucket", bs.bucket).Str("key", key).Msg("Uploaded poster")

	return bs.objectURLPrefix() + key, nil
}

// RemovePoster deletes a poster previously uploaded with StorePoster
func (bs BucketPosterStore) RemovePoster(ctx context.Context, ref string) error {
	prefix := bs.objectURLPrefix()
	if !strings.HasPrefix(ref, prefix) {
		return fmt.Errorf("poster '%s' is not stored in bucket '%s'", ref, bs.bucket)
	}
	return bs.client.RemoveObject(ctx, bs.bucket, strings.TrimPrefix(ref, prefix), minio.RemoveObjectOptions{})
}
