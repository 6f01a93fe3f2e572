package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	input   *s3.PutObjectInput
	expires time.Duration
	err     error
}

func (f *fakePresigner) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.input = in
	opts := &s3.PresignOptions{}
	for _, fn := range optFns {
		fn(opts)
	}
	f.expires = opts.Expires
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + aws.ToString(in.Key), Method: "PUT"}, nil
}

func TestS3ImageStore_PresignUpload(t *testing.T) {
	p := &fakePresigner{}
	store := newS3ImageStore(p, S3Config{Region: "us-east-1", Bucket: "grubio-images"})

	up, err := store.PresignUpload(context.Background(), "events/ev-1/posts/a.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "grubio-images", aws.ToString(p.input.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(p.input.ContentType))
	assert.Equal(t, 15*time.Minute, p.expires)
	assert.Equal(t, "https://signed.example/events/ev-1/posts/a.jpg", up.UploadURL)
	assert.Equal(t, "https://grubio-images.s3.us-east-1.amazonaws.com/events/ev-1/posts/a.jpg", up.ImageURL)
	assert.Equal(t, 900, up.ExpiresIn)
}

func TestS3ImageStore_PublicBaseURL(t *testing.T) {
	store := newS3ImageStore(&fakePresigner{}, S3Config{Bucket: "b", PublicBaseURL: "https://cdn.grubio.app/", URLExpiry: time.Minute})

	up, err := store.PresignUpload(context.Background(), "events/ev 1/posts/a.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.grubio.app/events/ev%201/posts/a.png", up.ImageURL)
	assert.Equal(t, 60, up.ExpiresIn)
}

func TestS3ImageStore_PresignError(t *testing.T) {
	store := newS3ImageStore(&fakePresigner{err: errors.New("no credentials")}, S3Config{Bucket: "b"})
	_, err := store.PresignUpload(context.Background(), "k", "image/png")
	assert.Error(t, err)
}
