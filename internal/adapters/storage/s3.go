package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"grubio/internal/domain"
)

// S3Config configures post image uploads.
type S3Config struct {
	Region string
	Bucket string
	// PublicBaseURL is prepended to object keys to form image URLs, e.g. a CDN origin.
	// Empty means the bucket's virtual-hosted S3 URL.
	PublicBaseURL string
	URLExpiry     time.Duration
}

type presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type s3ImageStore struct {
	presigner presigner
	bucket    string
	baseURL   string
	expiry    time.Duration
}

// NewS3ImageStore returns an ImageStore that hands out presigned PUT URLs so
// clients upload images straight to the bucket.
func NewS3ImageStore(ctx context.Context, cfg S3Config) (domain.ImageStore, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newS3ImageStore(s3.NewPresignClient(s3.NewFromConfig(awsCfg)), cfg), nil
}

func newS3ImageStore(p presigner, cfg S3Config) *s3ImageStore {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &s3ImageStore{presigner: p, bucket: cfg.Bucket, baseURL: base, expiry: expiry}
}

func (s *s3ImageStore) PresignUpload(ctx context.Context, key, contentType string) (*domain.ImageUpload, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.expiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}
	return &domain.ImageUpload{
		UploadURL: req.URL,
		ImageURL:  s.baseURL + "/" + (&url.URL{Path: key}).EscapedPath(),
		ExpiresIn: int(s.expiry.Seconds()),
	}, nil
}
