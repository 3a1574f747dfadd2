package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ralsponsors/internal/publish"
)

func (a *app) newPublishCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload generated avatars to the hosting repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				dir = a.cfg.Avatar.OutputDir
			}

			return a.publish(cmd.Context(), cmd, dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Avatar directory (default avatar.output_dir)")

	return cmd
}

func (a *app) publish(ctx context.Context, cmd *cobra.Command, dir string) error {
	if err := a.cfg.ValidatePublish(); err != nil {
		return fmt.Errorf("invalid publish settings: %w", err)
	}

	uploader, err := publish.NewUploader(ctx, a.cfg.Publish, a.log)
	if err != nil {
		return err
	}

	result, err := uploader.UploadDir(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Avatars: %d created, %d updated, %d unchanged, %d failed\n",
		result.Created, result.Updated, result.Skipped, len(result.Errors))

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d avatar uploads failed: %w", len(result.Errors), errors.Join(result.Errors...))
	}

	return nil
}
