package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"attendance/internal/env"
	"attendance/internal/keys"
	"attendance/internal/storage"
	"attendance/pkg/datasource"
)

func newUploadCmd() *cobra.Command {
	var (
		bucket  string
		mapName string
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Validate a dataset and store it in the object store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if _, _, err := datasource.Decode(data, datasource.FormatOf(args[0])); err != nil {
				return err
			}

			s3, err := storage.NewS3Service(env.Load().Minio, zap.NewNop())
			if err != nil {
				return err
			}
			if _, err := s3.CreateBucket(cmd.Context(), bucket, ""); err != nil {
				return err
			}
			key := keys.Dataset(mapName, args[0])
			if err := s3.PutDataset(cmd.Context(), bucket, key, data, force); err != nil {
				if errors.Is(err, storage.ErrObjectExists) {
					return fmt.Errorf("%w (use --force to replace it)", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "DATA_SOURCE=s3://%s/%s\n", bucket, key)
			return nil
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", env.Get("DATASET_BUCKET", "attendance"), "target bucket")
	cmd.Flags().StringVar(&mapName, "map", "attendance", "map name used in the object key")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing dataset")
	return cmd
}
