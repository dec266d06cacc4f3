package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

type S3Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	const op = "images.NewS3Store"
	loadOpts := []func(*config.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(opts.Endpoint))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	publicURL := opts.PublicURL
	if publicURL == "" && opts.Endpoint != "" {
		publicURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	}

	return &S3Store{
		client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = opts.Endpoint != "" // MinIO and friends
		}),
		bucket:    opts.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	const op = "images.S3Store.Put"
	key := "event-images/" + name

	// PutObject over plain http rejects bodies it cannot seek
	body, ok := r.(*bytes.Reader)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("%s: read: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(int64(body.Len())),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("max-age=604800"),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.publicURL + "/" + key, nil
}
