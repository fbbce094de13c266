package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/findnest-api/pkg/config"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, f.err
}

func withFakeS3(t *testing.T, fake *fakeS3) *s3.Options {
	t.Helper()
	origLoad, origClient := loadAWSConfig, newS3Client
	t.Cleanup(func() { loadAWSConfig, newS3Client = origLoad, origClient })

	opts := &s3.Options{}
	loadAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	}
	newS3Client = func(_ aws.Config, optFns ...func(*s3.Options)) objectAPI {
		for _, fn := range optFns {
			fn(opts)
		}
		return fake
	}
	return opts
}

func TestObjectStorePutReturnsPublicURL(t *testing.T) {
	fake := &fakeS3{}
	opts := withFakeS3(t, fake)

	store, err := NewObjectStore(context.Background(), config.ObjectStorageConfig{
		Bucket:       "findnest",
		Region:       "us-east-1",
		Endpoint:     "http://minio:9000",
		AccessKey:    "key",
		SecretKey:    "secret",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)

	url, err := store.Put(context.Background(), "/items/abc 1.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/findnest/items/abc%201.jpg", url)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "items/abc 1.jpg", aws.ToString(fake.puts[0].Key))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.puts[0].ContentType))
	assert.Equal(t, []byte("jpeg"), fake.bodies[0])

	require.NoError(t, store.Delete(context.Background(), "items/abc 1.jpg"))
	assert.Equal(t, []string{"items/abc 1.jpg"}, fake.deletes)
}

func TestObjectStorePutError(t *testing.T) {
	fake := &fakeS3{err: errors.New("denied")}
	withFakeS3(t, fake)

	store, err := NewObjectStore(context.Background(), config.ObjectStorageConfig{Bucket: "b", Region: "eu-west-1"})
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "k", []byte("x"), "image/png")
	assert.ErrorContains(t, err, "denied")
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/k", store.URL("k"))
}

func TestNewObjectStoreRequiresBucket(t *testing.T) {
	_, err := NewObjectStore(context.Background(), config.ObjectStorageConfig{})
	assert.Error(t, err)
}

func TestPublicBaseURLOverride(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(config.ObjectStorageConfig{PublicBaseURL: "https://cdn.example.com/", Bucket: "b"}))
}
