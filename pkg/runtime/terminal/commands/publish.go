package commands

import (
	"errors"
	"fmt"

	"github.com/de-tools/soc-atlas/pkg/services/publish"
	"github.com/spf13/cobra"
)

type PublishCmd struct {
	env    *Env
	file   string
	bucket string
	key    string
}

func NewPublishCmd(env *Env) *cobra.Command {
	pc := &PublishCmd{env: env}
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Validate the report document and upload it to the site bucket",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.file, "file", "", "Path of the report document to upload")
	cmd.Flags().StringVar(&pc.bucket, "bucket", "", "Target bucket (default s3.bucket)")
	cmd.Flags().StringVar(&pc.key, "key", "", "Target key (default s3.key)")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (pc *PublishCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := pc.env.Config()
	if err != nil {
		return err
	}
	ctx, _ := pc.env.Context(cmd.Context(), cfg, cmd.ErrOrStderr())

	bucket, key := pc.bucket, pc.key
	if bucket == "" {
		bucket = cfg.S3.Bucket
	}
	if key == "" {
		key = cfg.S3.Key
	}
	if bucket == "" {
		return errors.New("no bucket given: set --bucket or s3.bucket")
	}

	store, err := pc.env.NewObjectStore(ctx, cfg.S3)
	if err != nil {
		return err
	}

	n, err := publish.NewPublisher(store).PublishFile(ctx, pc.file, bucket, key)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", pc.file, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Published %d reports to s3://%s/%s\n", n, bucket, key)
	return nil
}
