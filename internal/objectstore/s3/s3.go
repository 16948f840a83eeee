// Package s3 implements objectstore.Store against an S3-compatible
// endpoint using the minio-go SDK, ported from the way the teacher's
// S3 backend authenticates and wraps the client.
package s3

import (
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/s3ops/s3pitrestore/internal/debug"
	"github.com/s3ops/s3pitrestore/internal/errors"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
)

// Config configures the S3 client.
type Config struct {
	Endpoint     string
	Region       string
	UseHTTP      bool
	KeyID        string
	Secret       string
	BucketLookup string // "auto" (default), "dns", or "path"
	Connections  uint   // default 5
	MaxRetries   uint
}

// Store wraps a minio.Client to implement objectstore.Store.
type Store struct {
	client *minio.Client
	sem    semaphore
}

var _ objectstore.Store = (*Store)(nil)

// New opens an S3 client using the same credential chain the teacher's
// S3 backend uses: AWS env vars, then static credentials, then Minio
// env vars, then AWS/Minio credential files, then the EC2 IAM instance
// profile.
func New(cfg Config, rt http.RoundTripper) (*Store, error) {
	debug.Log("objectstore/s3 New, config %#v", cfg)

	if cfg.MaxRetries > 0 {
		minio.MaxRetry = int(cfg.MaxRetries)
	}

	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.Static{
			Value: credentials.Value{
				AccessKeyID:     cfg.KeyID,
				SecretAccessKey: cfg.Secret,
			},
		},
		&credentials.EnvMinio{},
		&credentials.FileAWSCredentials{},
		&credentials.FileMinioClient{},
		&credentials.IAM{
			Client: &http.Client{Transport: http.DefaultTransport},
		},
	})

	options := &minio.Options{
		Creds:     creds,
		Secure:    !cfg.UseHTTP,
		Region:    cfg.Region,
		Transport: rt,
	}

	switch strings.ToLower(cfg.BucketLookup) {
	case "", "auto":
		options.BucketLookup = minio.BucketLookupAuto
	case "dns":
		options.BucketLookup = minio.BucketLookupDNS
	case "path":
		options.BucketLookup = minio.BucketLookupPath
	default:
		return nil, errors.Errorf(`bad bucket-lookup style %q must be "auto", "path" or "dns"`, cfg.BucketLookup)
	}

	client, err := minio.New(cfg.Endpoint, options)
	if err != nil {
		return nil, errors.Wrap(err, "minio.New")
	}

	connections := cfg.Connections
	if connections == 0 {
		connections = 5
	}

	return &Store{client: client, sem: newSemaphore(connections)}, nil
}

// classify turns a minio SDK error into the pipeline's error taxonomy:
// authorization errors and a missing bucket are permanent (fatal to the
// run); a missing key or version is returned unmarked (neither retried
// nor fatal); everything else is transient and eligible for
// backoff+retry.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.Code {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "NoSuchBucket":
			return errors.Permanentf("s3: %v", err)
		case "NoSuchKey", "NoSuchVersion":
			return err
		}
	}

	return errors.MarkTransient(err)
}
