// Package deploy uploads a pre-rendered site to S3-compatible object
// storage.
package deploy

import (
	"context"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pagekit-dev/pagekit/internal/config"
	"github.com/pagekit-dev/pagekit/internal/errors"
)

// ObjectPutter is the slice of the S3 API the deployer needs. *s3.Client
// satisfies it.
type ObjectPutter interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Cache-control for the two kinds of files a pre-rendered site contains:
// hashed assets never change, documents and context files must revalidate.
const (
	cacheImmutable  = "public, max-age=31536000, immutable"
	cacheRevalidate = "public, max-age=0, must-revalidate"
)

// Summary reports what a deploy uploaded.
type Summary struct {
	// Files is the number of uploaded objects.
	Files int

	// Bytes is the total uploaded payload size.
	Bytes int64

	// Duration is how long the deploy took.
	Duration time.Duration
}

// Deployer uploads a directory tree to a bucket.
type Deployer struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// New creates a deployer with an existing client. A nil logger falls back
// to slog.Default.
func New(client ObjectPutter, bucket, prefix string, logger *slog.Logger) (*Deployer, error) {
	if bucket == "" {
		return nil, errors.Newf(errors.CategoryConfig, "a deploy requires an S3 bucket (set deploy.s3Bucket in pagekit.json)")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Deployer{client: client, bucket: bucket, prefix: prefix, logger: logger}, nil
}

// NewFromConfig creates a deployer from the project's deploy configuration,
// resolving AWS credentials from the default chain.
func NewFromConfig(ctx context.Context, cfg config.DeployConfig, logger *slog.Logger) (*Deployer, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Newf(errors.CategoryConfig, "failed to load AWS configuration").Wrap(err)
	}
	return New(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix, logger)
}

// Deploy uploads every file under dir, keyed by its path relative to dir.
func (d *Deployer) Deploy(ctx context.Context, dir string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := d.prefix + filepath.ToSlash(rel)
		size, err := d.uploadFile(ctx, path, key)
		if err != nil {
			return err
		}
		d.logger.Debug("uploaded", "key", key, "bytes", size)
		summary.Files++
		summary.Bytes += size
		return nil
	})
	if err != nil {
		return nil, err
	}
	if summary.Files == 0 {
		return nil, errors.Newf(errors.CategoryConfig, "nothing to deploy in %s: run `pagekit prerender` first", dir)
	}

	summary.Duration = time.Since(start)
	d.logger.Info("deploy complete", "bucket", d.bucket, "files", summary.Files, "bytes", summary.Bytes)
	return summary, nil
}

func (d *Deployer) uploadFile(ctx context.Context, path, key string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	_, err = d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(d.bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String(contentTypeFor(key)),
		CacheControl: aws.String(cacheControlFor(key)),
	})
	if err != nil {
		return 0, errors.Transport("failed to upload %s to s3://%s/%s", path, d.bucket, key).Wrap(err)
	}
	return info.Size(), nil
}

// contentTypeFor maps a key to its MIME type by extension.
func contentTypeFor(key string) string {
	if strings.HasSuffix(key, ".pageContext.json") {
		return "application/json"
	}
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// cacheControlFor: content-hashed assets are immutable, everything else
// (documents, context files) must revalidate so a redeploy takes effect.
func cacheControlFor(key string) string {
	if strings.Contains(key, "assets/") {
		return cacheImmutable
	}
	return cacheRevalidate
}
