package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bnema/zerowrap"

	"github.com/bnema/ferry/internal/boundaries/out"
)

var _ out.ContentSource = (*S3)(nil)

// ObjectGetter is the subset of the S3 API the content source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config configures the S3 client.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

// S3 serves s3://bucket/key locations.
type S3 struct {
	client ObjectGetter
	log    zerowrap.Logger
}

// NewS3 creates an S3 content source over client.
func NewS3(client ObjectGetter, log zerowrap.Logger) *S3 {
	return &S3{client: client, log: log}
}

// NewS3FromConfig builds an S3 client from the default AWS credential chain.
func NewS3FromConfig(ctx context.Context, cfg S3Config, log zerowrap.Logger) (*S3, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = "us-east-1"
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	log.Info().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "content").
		Str("region", awsCfg.Region).
		Str("endpoint", cfg.Endpoint).
		Msg("s3 content source initialized")

	return NewS3(client, log), nil
}

// Open streams the object at location. The size is -1 when S3 does not report it.
func (s *S3) Open(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	bucket, key, err := parseS3Location(location)
	if err != nil {
		return nil, 0, err
	}

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, 0, fmt.Errorf("%w: %s", ErrContentNotFound, location)
		}
		return nil, 0, fmt.Errorf("failed to get object %s: %w", location, err)
	}

	size := int64(-1)
	if resp.ContentLength != nil {
		size = *resp.ContentLength
	}

	s.log.Debug().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "content").
		Str("bucket", bucket).
		Str("key", key).
		Int64(zerowrap.FieldSize, size).
		Msg("object opened")

	return resp.Body, size, nil
}

func parseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 location %s: %w", location, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("invalid s3 location %s: scheme must be s3", location)
	}

	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %s: expected s3://bucket/key", location)
	}
	return u.Host, key, nil
}
