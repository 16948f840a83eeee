package main

import (
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/s3ops/s3pitrestore/internal/errors"
	"github.com/s3ops/s3pitrestore/internal/objectstore/s3"
	"github.com/s3ops/s3pitrestore/internal/pipeline/config"
	"github.com/s3ops/s3pitrestore/internal/ui"
	"github.com/s3ops/s3pitrestore/internal/ui/termstatus"
)

// GlobalOptions holds every flag the root command accepts, matching
// spec.md §6's flag set plus the ambient connection flags a real S3
// client needs (out of scope for the pipeline's own contract, but
// required to actually reach a bucket) and the supplemented features
// (--dry-run, --max-ops-per-sec, --json).
type GlobalOptions struct {
	Src               string
	Dest              string
	RestoreTime       string
	Prefixes          string
	VersionInfoOutput string
	Delete            bool
	DryRun            bool
	MaxOpsPerSec      int
	JSON              bool

	Endpoint     string
	Region       string
	UseHTTP      bool
	AccessKeyID  string
	SecretKey    string
	BucketLookup string
	Connections  uint

	stdout io.Writer
	stderr io.Writer
}

func (opts *GlobalOptions) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&opts.Src, "src", "", "source `s3://bucket[/prefix]` to restore from (required)")
	f.StringVar(&opts.Dest, "dest", "", "destination `s3://bucket[/prefix]` (default: --src)")
	f.StringVar(&opts.RestoreTime, "restore-time", "", "restore to the state as of this ISO-8601 `time` (required)")
	f.StringVar(&opts.Prefixes, "prefixes", "", "`path` to a newline-separated file of prefixes to restore")
	f.StringVar(&opts.VersionInfoOutput, "version-info-output", "", "`dir` to write the versions.txt/restored.txt intermediate outputs to")
	f.BoolVar(&opts.Delete, "delete", false, "delete destination objects that did not exist at restore-time")
	f.BoolVar(&opts.DryRun, "dry-run", false, "compute and report actions without applying them")
	f.IntVar(&opts.MaxOpsPerSec, "max-ops-per-sec", 0, "cap outbound copy/delete calls per second (0 = unlimited)")
	f.BoolVar(&opts.JSON, "json", false, "print the run summary as one JSON object on stdout")

	f.StringVar(&opts.Endpoint, "endpoint", "", "object store `endpoint` host[:port]")
	f.StringVar(&opts.Region, "region", "", "object store `region`")
	f.BoolVar(&opts.UseHTTP, "use-http", false, "connect over plain HTTP instead of HTTPS")
	f.StringVar(&opts.AccessKeyID, "access-key-id", "", "static access key id (falls back to the environment/IAM chain)")
	f.StringVar(&opts.SecretKey, "secret-access-key", "", "static secret access key")
	f.StringVar(&opts.BucketLookup, "bucket-lookup", "auto", "bucket lookup style: auto, dns, or path")
	f.UintVar(&opts.Connections, "connections", 5, "maximum concurrent connections to the object store")
}

// buildConfig validates flags and constructs the immutable
// config.RestoreConfig the pipeline runs with, per spec.md §6's
// validation rules.
func (opts *GlobalOptions) buildConfig() (config.RestoreConfig, error) {
	if opts.Src == "" {
		return config.RestoreConfig{}, errors.Usage("--src is required")
	}
	srcBucket, srcPrefix, err := config.ParseURI(opts.Src)
	if err != nil {
		return config.RestoreConfig{}, err
	}

	destURI := opts.Dest
	if destURI == "" {
		destURI = opts.Src
	}
	destBucket, destPrefix, err := config.ParseURI(destURI)
	if err != nil {
		return config.RestoreConfig{}, err
	}

	if opts.RestoreTime == "" {
		return config.RestoreConfig{}, errors.Usage("--restore-time is required")
	}
	restoreTime, err := time.Parse(time.RFC3339, opts.RestoreTime)
	if err != nil {
		return config.RestoreConfig{}, errors.Usagef("invalid --restore-time %q: %v", opts.RestoreTime, err)
	}

	return config.RestoreConfig{
		SrcBucket:   srcBucket,
		SrcPrefix:   srcPrefix,
		DestBucket:  destBucket,
		DestPrefix:  destPrefix,
		RestoreTime: restoreTime,
		Delete:      opts.Delete,
		DryRun:      opts.DryRun,
	}, nil
}

func (opts *GlobalOptions) buildStoreConfig() s3.Config {
	return s3.Config{
		Endpoint:     opts.Endpoint,
		Region:       opts.Region,
		UseHTTP:      opts.UseHTTP,
		KeyID:        opts.AccessKeyID,
		Secret:       opts.SecretKey,
		BucketLookup: opts.BucketLookup,
		Connections:  opts.Connections,
	}
}

func (opts *GlobalOptions) versionOutputWriters() (versions, restored io.WriteCloser, err error) {
	if opts.VersionInfoOutput == "" {
		return nopWriteCloser{io.Discard}, nopWriteCloser{io.Discard}, nil
	}

	if err := os.MkdirAll(opts.VersionInfoOutput, 0o755); err != nil {
		return nil, nil, errors.Fatalf("creating --version-info-output dir: %v", err)
	}

	vf, err := os.Create(opts.VersionInfoOutput + "/versions.txt")
	if err != nil {
		return nil, nil, errors.Fatalf("creating versions.txt: %v", err)
	}
	rf, err := os.Create(opts.VersionInfoOutput + "/restored.txt")
	if err != nil {
		_ = vf.Close()
		return nil, nil, errors.Fatalf("creating restored.txt: %v", err)
	}
	return vf, rf, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (opts *GlobalOptions) terminal() ui.Terminal {
	return termstatus.New(opts.stdout, opts.stderr)
}
