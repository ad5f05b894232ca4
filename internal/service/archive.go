package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/yourname/fittrack/internal"
)

// Uploader is the slice of the S3 client used for export archives.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func NewS3Uploader(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// ArchiveKey is the object key for an archived export.
func ArchiveKey(userID string, now time.Time) string {
	return fmt.Sprintf("exports/%s/fittrack-export-%s-%d.json", userID, now.Format(internal.DateLayout), now.UnixNano())
}

// ArchiveExport uploads the user's export to bucket and returns its key.
func ArchiveExport(ctx context.Context, recs Records, up Uploader, bucket string, user *internal.User, now time.Time) (string, error) {
	doc, err := Export(ctx, recs, user, now)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	key := ArchiveKey(user.ID, now)
	_, err = up.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	return key, nil
}
