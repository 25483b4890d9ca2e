package upload

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config — параметры бакета; Endpoint пустой для настоящего AWS (MinIO, R2 - задать)
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string
	Key      string
	Secret   string
	Prefix   string
	BaseURL  string
}

// S3Disk кладёт картинки в S3-совместимое хранилище
type S3Disk struct {
	client  *s3.Client
	bucket  string
	prefix  string
	baseURL string
}

func NewS3Disk(ctx context.Context, cfg S3Config) (*S3Disk, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: S3_BUCKET is not configured")
	}
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.Key != "" && cfg.Secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Disk{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (d *S3Disk) Put(ctx context.Context, name string, r io.Reader, contentType string) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key(name)),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3: put %s: %w", name, err)
	}
	return nil
}

// Delete в S3 идемпотентен: отсутствующий ключ не ошибка
func (d *S3Disk) Delete(ctx context.Context, name string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(name)),
	})
	if err != nil {
		return fmt.Errorf("s3: delete %s: %w", name, err)
	}
	return nil
}

func (d *S3Disk) URL(name string) string {
	return d.baseURL + "/" + d.key(name)
}

func (d *S3Disk) key(name string) string {
	if d.prefix == "" {
		return name
	}
	return d.prefix + "/" + name
}
