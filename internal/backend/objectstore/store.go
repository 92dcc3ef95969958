// Package objectstore keeps avatar blobs in an S3 compatible bucket.
// Uploads go through presigned PUT URLs; reads resolve to either a public
// bucket URL or a presigned GET URL.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/logging"
	"github.com/dmitrijs2005/hrmis/internal/netx"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const defaultPresignTTL = 15 * time.Minute

type Config struct {
	Region       string
	RootUser     string
	RootPassword string
	BaseEndpoint string
	Bucket       string

	// PublicBaseURL, when set, is the public read prefix of the bucket and
	// ResolvePublicURL returns PublicBaseURL/key without signing.
	PublicBaseURL string
	PresignTTL    time.Duration
}

type Store struct {
	cfg     Config
	presign *s3.PresignClient
	http    netx.HTTPClient
	logger  logging.Logger
}

// New builds the presign client once. httpClient may be nil.
func New(ctx context.Context, cfg Config, httpClient netx.HTTPClient, logger logging.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("object store bucket is not configured")
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = defaultPresignTTL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	pc, err := newPresignClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Store{
		cfg:     cfg,
		presign: pc,
		http:    httpClient,
		logger:  logger.With("component", "objectstore", "bucket", cfg.Bucket),
	}, nil
}

func newPresignClient(ctx context.Context, cfg Config) (*s3.PresignClient, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.RootUser,
			cfg.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// UploadBlob stores data under key. Failures wrap common.ErrUnavailable.
func (s *Store) UploadBlob(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("%w: empty object key", common.ErrValidation)
	}

	bucket := s.cfg.Bucket
	in := &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(s.presign, ctx, in, s3.WithPresignExpires(s.cfg.PresignTTL))
	if err != nil {
		return fmt.Errorf("%w: presign put: %w", common.ErrUnavailable, err)
	}

	if err := netx.PutPresigned(ctx, s.http, req.URL, data, contentType); err != nil {
		s.logger.Warn(ctx, "blob upload failed", "key", key, "error", err)
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}

	s.logger.Debug(ctx, "blob uploaded", "key", key, "size", len(data))
	return nil
}

func (s *Store) ResolvePublicURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty object key", common.ErrValidation)
	}

	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + strings.TrimLeft(key, "/"), nil
	}

	bucket := s.cfg.Bucket
	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.cfg.PresignTTL))
	if err != nil {
		return "", fmt.Errorf("%w: presign get: %w", common.ErrUnavailable, err)
	}

	return req.URL, nil
}
