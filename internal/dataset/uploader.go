package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
)

type S3Api interface {
	manager.UploadAPIClient

	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Uploader stages local training data into the platform's object storage so
// a RecordSet can point at it.
type Uploader struct {
	s3Client   S3Api
	uploader   *manager.Uploader
	bucketName string

	// ShowProgress renders a byte progress bar during uploads; off by
	// default so tests and non-interactive runs stay quiet.
	ShowProgress bool
}

type Config struct {
	S3EndpointURL     string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	DataBucketName    string
}

func NewUploader(cfg *Config) (*Uploader, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) { // nolint:staticcheck
		if cfg.S3EndpointURL != "" {
			return aws.Endpoint{ // nolint:staticcheck
				PartitionID:       "aws",
				URL:               cfg.S3EndpointURL,
				HostnameImmutable: true, // Important for MinIO
			}, nil
		}
		// fallback to default AWS endpoint resolution
		return aws.Endpoint{}, &aws.EndpointNotFoundError{} // nolint:staticcheck
	})

	var awsCfg aws.Config
	var err error

	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		awsCfg, err = aws_config.LoadDefaultConfig(context.TODO(),
			aws_config.WithEndpointResolverWithOptions(resolver),
			aws_config.WithRegion(cfg.S3Region),
			aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")),
		)
	} else {
		awsCfg, err = aws_config.LoadDefaultConfig(context.TODO(),
			aws_config.WithEndpointResolverWithOptions(resolver),
			aws_config.WithRegion(cfg.S3Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true // path-style addressing, needed for MinIO
	})

	return NewFromClient(s3Client, cfg.DataBucketName), nil
}

func NewFromClient(client S3Api, bucketName string) *Uploader {
	return &Uploader{
		s3Client:   client,
		uploader:   manager.NewUploader(client),
		bucketName: bucketName,
	}
}

// UploadRecordSet uploads a local training data file and returns a RecordSet
// describing it. The key is namespaced under a fresh upload id so repeated
// uploads of the same file never collide.
func (u *Uploader) UploadRecordSet(ctx context.Context, localPath string, recordCount int64, featureDim int, channel string) (*RecordSet, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open training data %s: %w", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat training data %s: %w", localPath, err)
	}

	key := fmt.Sprintf("datasets/%s/%s", uuid.New().String(), filepath.Base(localPath))

	var body io.Reader = file
	if u.ShowProgress {
		bar := progressbar.DefaultBytes(info.Size(), "uploading "+filepath.Base(localPath))
		body = io.TeeReader(file, bar)
	}

	slog.Info("uploading training data", "bucket", u.bucketName, "key", key, "bytes", info.Size())
	_, err = u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucketName),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload training data to s3://%s/%s: %w", u.bucketName, key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", u.bucketName, key)
	slog.Info("uploaded training data", "location", location)

	return NewRecordSet(location, recordCount, featureDim, channel)
}

// EnsureBucket creates the data bucket if it does not already exist.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	_, err := u.s3Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(u.bucketName)})
	if err != nil {
		var exists *types.BucketAlreadyExists
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &exists) || errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", u.bucketName, err)
	}
	return nil
}
