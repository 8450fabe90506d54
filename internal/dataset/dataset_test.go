package dataset_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mltrain/internal/dataset"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordSet(t *testing.T) {
	rs, err := dataset.NewRecordSet("s3://bucket/prefix", 100, 10, "train")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/prefix", rs.DataLocation)
	assert.Equal(t, int64(100), rs.RecordCount)
	assert.Equal(t, 10, rs.FeatureDim)
	assert.Equal(t, "train", rs.Channel)
}

func TestNewRecordSetDefaultsChannel(t *testing.T) {
	rs, err := dataset.NewRecordSet("s3://bucket/prefix", 1, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "train", rs.Channel)
}

func TestNewRecordSetValidation(t *testing.T) {
	_, err := dataset.NewRecordSet("file:///tmp/data", 1, 1, "train")
	assert.Error(t, err)

	_, err = dataset.NewRecordSet("s3://bucket/prefix", 0, 1, "train")
	assert.Error(t, err)

	_, err = dataset.NewRecordSet("s3://bucket/prefix", 1, 0, "train")
	assert.Error(t, err)
}

func TestAPIChannel(t *testing.T) {
	rs, err := dataset.NewRecordSet("s3://bucket/prefix", 5, 3, "train")
	require.NoError(t, err)

	channel := rs.APIChannel()
	assert.Equal(t, "train", channel.Name)
	assert.Equal(t, "s3://bucket/prefix", channel.DataLocation)
	assert.Equal(t, int64(5), channel.RecordCount)
	assert.Equal(t, 3, channel.FeatureDim)
}

type capturingS3 struct {
	puts []*s3.PutObjectInput
	body []byte
}

func (c *capturingS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	c.puts = append(c.puts, params)
	c.body = data
	return &s3.PutObjectOutput{}, nil
}

func (c *capturingS3) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return &s3.UploadPartOutput{}, nil
}

func (c *capturingS3) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return &s3.CreateMultipartUploadOutput{}, nil
}

func (c *capturingS3) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (c *capturingS3) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (c *capturingS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	return &s3.CreateBucketOutput{}, nil
}

func TestUploadRecordSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.rec")
	content := []byte("record data")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	fake := &capturingS3{}
	uploader := dataset.NewFromClient(fake, "training-data")

	rs, err := uploader.UploadRecordSet(context.Background(), path, 42, 10, "train")
	require.NoError(t, err)

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "training-data", *fake.puts[0].Bucket)
	assert.True(t, strings.HasPrefix(*fake.puts[0].Key, "datasets/"))
	assert.True(t, strings.HasSuffix(*fake.puts[0].Key, "/train.rec"))
	assert.Equal(t, content, fake.body)

	assert.Equal(t, "s3://training-data/"+*fake.puts[0].Key, rs.DataLocation)
	assert.Equal(t, int64(42), rs.RecordCount)
	assert.Equal(t, 10, rs.FeatureDim)
	assert.Equal(t, "train", rs.Channel)
}

func TestUploadRecordSetMissingFile(t *testing.T) {
	uploader := dataset.NewFromClient(&capturingS3{}, "training-data")

	_, err := uploader.UploadRecordSet(context.Background(), "/does/not/exist", 1, 1, "train")
	assert.Error(t, err)
}

func TestUploadKeysAreUnique(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.rec")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	fake := &capturingS3{}
	uploader := dataset.NewFromClient(fake, "training-data")

	_, err := uploader.UploadRecordSet(context.Background(), path, 1, 1, "train")
	require.NoError(t, err)
	_, err = uploader.UploadRecordSet(context.Background(), path, 1, 1, "train")
	require.NoError(t, err)

	require.Len(t, fake.puts, 2)
	assert.NotEqual(t, *fake.puts[0].Key, *fake.puts[1].Key)
}
