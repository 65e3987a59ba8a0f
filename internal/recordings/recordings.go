// Package recordings hands out time-limited links to call recordings kept in
// S3-compatible object storage.
package recordings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrNoKey = errors.New("recording key is empty")

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	TTL       time.Duration
}

type Presigner struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

// New returns nil, nil when no endpoint is configured.
func New(cfg Config) (*Presigner, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, nil
	}
	if cfg.Bucket == "" {
		return nil, errors.New("recordings bucket is required")
	}
	region := cfg.Region
	if region == "" {
		// a fixed region lets presigning skip the bucket location lookup
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Presigner{client: client, bucket: cfg.Bucket, ttl: ttl}, nil
}

// URL signs a GET for the object at key. The link is valid for the
// configured TTL.
func (p *Presigner) URL(ctx context.Context, key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrNoKey
	}
	params := url.Values{}
	params.Set("response-content-type", contentType(key))
	u, err := p.client.PresignedGetObject(ctx, p.bucket, key, p.ttl, params)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

// Ping checks that the bucket is reachable.
func (p *Presigner) Ping(ctx context.Context) error {
	ok, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", p.bucket)
	}
	return nil
}

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(key, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(key, ".ogg"):
		return "audio/ogg"
	}
	return "application/octet-stream"
}
