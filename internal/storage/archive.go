// Package storage provides the S3-compatible archive for downloaded
// documents (bills, statements, torrent files).
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gleanerd/gleaner/internal/config"
	"github.com/gleanerd/gleaner/internal/models"
)

// Client wraps an S3-compatible object storage client.
type Client struct {
	s3     *s3.Client
	bucket string
}

// Manifest records metadata about one archived document.
type Manifest struct {
	Backend    string    `json:"backend"`
	DocumentID string    `json:"document_id"`
	Label      string    `json:"label,omitempty"`
	Format     string    `json:"format,omitempty"`
	ArchivedAt time.Time `json:"archived_at"`
	SHA256     string    `json:"sha256"`
	Size       int       `json:"size"`
}

// NewClient creates a new S3-compatible storage client. An empty endpoint
// leaves archiving disabled: Store becomes a logged no-op.
func NewClient(ctx context.Context, cfg config.S3Config) (*Client, error) {
	if cfg.Endpoint == "" {
		slog.Warn("S3 endpoint not configured, document archive disabled")
		return &Client{bucket: cfg.Bucket}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = &cfg.Endpoint
		o.UsePathStyle = true
	})

	return &Client{
		s3:     client,
		bucket: cfg.Bucket,
	}, nil
}

// Configured returns true if the S3 client has a valid connection configured.
func (c *Client) Configured() bool {
	return c.s3 != nil
}

func (c *Client) prefix(backend, documentID string) string {
	return fmt.Sprintf("documents/%s/%s", backend, documentID)
}

// Store compresses and uploads a downloaded document plus its manifest.
func (c *Client) Store(ctx context.Context, backend, documentID, label, format string, body []byte) error {
	if c.s3 == nil {
		slog.Warn("document archive not configured, skipping upload",
			"backend", backend, "document", documentID)
		return nil
	}

	prefix := c.prefix(backend, documentID)

	manifest := Manifest{
		Backend:    backend,
		DocumentID: documentID,
		Label:      label,
		Format:     format,
		ArchivedAt: time.Now().UTC(),
		SHA256:     models.HashContent(body),
		Size:       len(body),
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal manifest: %w", err)
	}

	compressed, err := gzipCompress(body)
	if err != nil {
		return fmt.Errorf("storage: compress document: %w", err)
	}

	uploads := map[string][]byte{
		prefix + "/file.gz":       compressed,
		prefix + "/manifest.json": manifestJSON,
	}
	for key, data := range uploads {
		_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &c.bucket,
			Key:    &key,
			Body:   bytes.NewReader(data),
		})
		if err != nil {
			return fmt.Errorf("storage: upload %s: %w", key, err)
		}
		slog.Debug("document archived", "key", key, "size", len(data))
	}

	return nil
}

// Fetch retrieves an archived document and its manifest.
func (c *Client) Fetch(ctx context.Context, backend, documentID string) ([]byte, *Manifest, error) {
	if c.s3 == nil {
		return nil, nil, fmt.Errorf("storage: not configured")
	}

	prefix := c.prefix(backend, documentID)

	compressed, err := c.getObject(ctx, prefix+"/file.gz")
	if err != nil {
		return nil, nil, err
	}
	body, err := gzipDecompress(compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: decompress document: %w", err)
	}

	manifestJSON, err := c.getObject(ctx, prefix+"/manifest.json")
	if err != nil {
		return nil, nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(manifestJSON, &manifest); err != nil {
		return nil, nil, fmt.Errorf("storage: unmarshal manifest: %w", err)
	}

	return body, &manifest, nil
}

// Delete removes an archived document and its manifest.
func (c *Client) Delete(ctx context.Context, backend, documentID string) error {
	if c.s3 == nil {
		return nil
	}

	prefix := c.prefix(backend, documentID)
	for _, suffix := range []string{"/file.gz", "/manifest.json"} {
		key := prefix + suffix
		_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: &c.bucket,
			Key:    &key,
		})
		if err != nil {
			// Individual objects may already be gone.
			slog.Debug("archive delete (may not exist)", "key", key, "err", err)
		}
	}
	return nil
}

func (c *Client) getObject(ctx context.Context, key string) ([]byte, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &c.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
