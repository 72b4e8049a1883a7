package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/openkraft/codegate/internal/domain"
)

// ErrNotConfigured is returned when no object-store endpoint is set.
var ErrNotConfigured = errors.New("object store endpoint not configured (set CODEGATE_S3_ENDPOINT)")

// Client implements domain.ArchiveFetcher against an S3-compatible store.
type Client struct {
	mc *minio.Client
}

func New(env domain.Environment) (*Client, error) {
	if env.S3Endpoint == "" {
		return nil, ErrNotConfigured
	}
	mc, err := minio.New(env.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(env.S3AccessKey, env.S3SecretKey, ""),
		Secure: env.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating object store client: %w", err)
	}
	return &Client{mc: mc}, nil
}

// Fetch downloads bucket/key into dst, removing dst if the copy fails.
func (c *Client) Fetch(ctx context.Context, bucket, key, dst string) error {
	obj, err := c.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("getting s3://%s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, obj); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("downloading s3://%s/%s: %w", bucket, key, err)
	}
	return out.Close()
}

// ParseURL splits s3://bucket/path/to/key into bucket and key.
func ParseURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parsing %q: %w", raw, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("unsupported scheme %q in %q (want s3://bucket/key)", u.Scheme, raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%q must name both a bucket and a key", raw)
	}
	return u.Host, key, nil
}
