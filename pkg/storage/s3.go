package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"ytstream.api/internal/config"
)

// ErrDisabled is returned by NewS3Provider when no bucket is configured.
var ErrDisabled = errors.New("object storage is not configured")

// ErrNoSuchObject is returned by Get for a missing key.
var ErrNoSuchObject = errors.New("object not found")

// maxObjectSize caps how much of an object Get will read.
const maxObjectSize = 8 << 20

// Object is a fetched object body plus the version markers S3 reports.
type Object struct {
	Body         []byte
	ETag         string
	LastModified time.Time
}

type Provider interface {
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key string, body []byte) error
}

type s3Provider struct {
	client *s3.Client
	bucket string
}

func NewS3Provider(cfg *config.Config) (Provider, error) {
	if cfg.AWS.Bucket == "" {
		return nil, ErrDisabled
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWS.Region)}
	// fall back to the default credential chain when no static keys are set
	if cfg.AWS.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKey, cfg.AWS.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.AWS.ForcePathStyle
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})

	return &s3Provider{
		client: client,
		bucket: cfg.AWS.Bucket,
	}, nil
}

func (s *s3Provider) Get(ctx context.Context, key string) (*Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNoSuchObject
		}
		return nil, err
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, maxObjectSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxObjectSize {
		return nil, fmt.Errorf("object %s exceeds %d bytes", key, maxObjectSize)
	}

	obj := &Object{Body: body, ETag: aws.ToString(out.ETag)}
	if out.LastModified != nil {
		obj.LastModified = *out.LastModified
	}
	return obj, nil
}

func (s *s3Provider) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/plain"),
	})
	return err
}
