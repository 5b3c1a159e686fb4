// Package blobstore wraps an S3-compatible object store for CRAC/network
// model upload and download (§6.2), with preemptive auth-token renewal
// serialized under a per-instance mutex — the same pattern the teacher's
// resources.Manager uses to serialize its checkpoint/spillover operations.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Baltic-RCC/RAO/internal/models"
)

// Store is the surface the orchestrator and builder use; callers never see
// the minio client directly.
type Store interface {
	Upload(ctx context.Context, bucket, key string, data []byte, metadata map[string]string) error
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Stat(ctx context.Context, bucket, key string) (bool, error)
}

// TokenSource obtains a short-lived credential set via an identity-assumption
// call. Expiry is explicit so the client can renew preemptively.
type TokenSource interface {
	AssumeRole(ctx context.Context) (accessKey, secretKey, sessionToken string, expiry time.Time, err error)
}

// Client is the minio-go-backed Store implementation. Exactly one Client
// exists per worker; its session token is mutable and guarded by mu for
// renewal, matching the concurrency model of spec §5.
type Client struct {
	endpoint string
	useSSL   bool
	tokens   TokenSource
	margin   time.Duration

	mu      sync.Mutex
	current *minio.Client
	expiry  time.Time
}

// NewClient returns a Client that lazily authenticates on first use and
// renews whenever wall-clock time exceeds expiry-margin.
func NewClient(endpoint string, useSSL bool, tokens TokenSource, margin time.Duration) *Client {
	return &Client{endpoint: endpoint, useSSL: useSSL, tokens: tokens, margin: margin}
}

func (c *Client) client(ctx context.Context) (*minio.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && time.Now().Before(c.expiry.Add(-c.margin)) {
		return c.current, nil
	}

	accessKey, secretKey, sessionToken, expiry, err := c.tokens.AssumeRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: assume role: %v", models.ErrTokenExpired, err)
	}

	mc, err := minio.New(c.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, sessionToken),
		Secure: c.useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: new minio client: %v", models.ErrTransientIO, err)
	}

	c.current = mc
	c.expiry = expiry
	return mc, nil
}

// Upload implements Store.Upload.
func (c *Client) Upload(ctx context.Context, bucket, key string, data []byte, metadata map[string]string) error {
	mc, err := c.client(ctx)
	if err != nil {
		return err
	}
	_, err = mc.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		UserMetadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("%w: upload %s/%s: %v", models.ErrTransientIO, bucket, key, err)
	}
	return nil
}

// Download implements Store.Download.
func (c *Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	mc, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	obj, err := mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: download %s/%s: %v", models.ErrTransientIO, bucket, key, err)
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

// Stat implements Store.Stat.
func (c *Client) Stat(ctx context.Context, bucket, key string) (bool, error) {
	mc, err := c.client(ctx)
	if err != nil {
		return false, err
	}
	_, err = mc.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat %s/%s: %v", models.ErrTransientIO, bucket, key, err)
	}
	return true, nil
}

// StaticTokenSource is a TokenSource for deployments authenticating with a
// long-lived access/secret key pair rather than an STS-assumed role; its
// expiry is always far in the future so the renewal check in client()
// never re-authenticates.
type StaticTokenSource struct {
	AccessKey string
	SecretKey string
}

// AssumeRole implements TokenSource.
func (s StaticTokenSource) AssumeRole(ctx context.Context) (accessKey, secretKey, sessionToken string, expiry time.Time, err error) {
	return s.AccessKey, s.SecretKey, "", time.Now().Add(100 * 365 * 24 * time.Hour), nil
}

// CracObjectKey builds the deterministic CRAC upload key of spec §6.2:
// RAO/CRAC_<time_horizon>_<YYYYMMDDTHHMM>_CO_<contingency_id>.json
func CracObjectKey(timeHorizon string, scenarioTime time.Time, contingencyID string) string {
	return fmt.Sprintf("RAO/CRAC_%s_%s_CO_%s.json", timeHorizon, scenarioTime.UTC().Format("20060102T1504"), contingencyID)
}
