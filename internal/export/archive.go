package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pranshu05/BackendManager-sub003/internal/config"
	"github.com/pranshu05/BackendManager-sub003/internal/errs"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

// Archiver copies finished export artifacts into an object-store bucket.
// It is safe for concurrent use by multiple goroutines.
type Archiver struct {
	client *miniogo.Client
	bucket string
	log    *logger.Logger
}

// NewArchiver connects to the configured object store. An empty endpoint
// disables archiving: the returned *Archiver is nil, which Store treats as
// a no-op.
func NewArchiver(ctx context.Context, cfg config.ExportConfig, log *logger.Logger) (*Archiver, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create object store client", err)
	}

	a := &Archiver{client: client, bucket: cfg.Bucket, log: log}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Enabled reports whether an object store is configured.
func (a *Archiver) Enabled() bool {
	return a != nil
}

// Store uploads one CSV artifact under a timestamped key and returns that
// key. A nil archiver returns an empty key with no error.
func (a *Archiver) Store(ctx context.Context, projectID, table string, data []byte) (string, error) {
	if !a.Enabled() {
		return "", nil
	}

	key := fmt.Sprintf("%s/%s-%s.csv", projectID, table, time.Now().UTC().Format("20060102T150405Z"))
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		return "", errs.Wrap(errs.ErrKindQueryFailed, "failed to archive export", err)
	}

	a.log.With().Str("key", key).Logger().Debug("export archived")
	return key, nil
}

func (a *Archiver) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return errs.Wrap(errs.ErrKindConnectionFailed, "failed to check export bucket", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, miniogo.MakeBucketOptions{}); err != nil {
		return errs.Wrap(errs.ErrKindConnectionFailed, "failed to create export bucket", err)
	}
	return nil
}
