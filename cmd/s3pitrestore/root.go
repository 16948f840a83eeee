package main

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/s3ops/s3pitrestore/internal/debug"
	"github.com/s3ops/s3pitrestore/internal/json"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
	"github.com/s3ops/s3pitrestore/internal/objectstore/retry"
	"github.com/s3ops/s3pitrestore/internal/objectstore/s3"
	"github.com/s3ops/s3pitrestore/internal/pipeline/orchestrator"
)

const defaultMaxElapsedTime = 5 * time.Minute

var globalOptions GlobalOptions

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "s3pitrestore",
		Short: "Restore a versioned S3 prefix to its state at a point in time",
		Long: `
s3pitrestore lists every object version under a source bucket/prefix,
selects the version in effect at a given restore time, and copies (or
deletes) destination objects so they match that point in time.
`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, globalOptions)
		},
	}

	globalOptions.stdout = cmd.OutOrStdout()
	globalOptions.stderr = cmd.ErrOrStderr()
	globalOptions.AddFlags(cmd.Flags())

	return cmd
}

func runRestore(cmd *cobra.Command, opts GlobalOptions) error {
	cfg, err := opts.buildConfig()
	if err != nil {
		return err
	}

	store, err := s3.New(opts.buildStoreConfig(), http.DefaultTransport)
	if err != nil {
		return err
	}

	retried := retry.New(objectstore.Store(store), defaultMaxElapsedTime, func(op string, err error, wait time.Duration) {
		debug.Log("retry %v: %v (waiting %v)", op, err, wait)
	})

	versionsOut, restoredOut, err := opts.versionOutputWriters()
	if err != nil {
		return err
	}
	defer versionsOut.Close()
	defer restoredOut.Close()

	term := opts.terminal()

	summary, err := orchestrator.Run(cmd.Context(), retried, cfg, orchestrator.Options{
		PrefixesPath:   opts.Prefixes,
		VersionsOutput: versionsOut,
		RestoredOutput: restoredOut,
		MaxOpsPerSec:   opts.MaxOpsPerSec,
		Term:           term,
	})
	if err != nil {
		return err
	}

	if opts.JSON {
		data, jerr := json.Marshal(summary)
		if jerr != nil {
			return jerr
		}
		_, _ = cmd.OutOrStdout().Write(append(data, '\n'))
	}

	return nil
}
