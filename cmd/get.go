package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"deltaglider/pkg/facade"
)

func newGetCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "get <s3://bucket/key>",
		Short: "Download and, if delta-backed, reconstruct an object byte-for-byte",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			resolved, err := resolveConfig()
			if err != nil {
				return err
			}
			logger, ctx, cancel := setupCommand(c.Context(), resolved)
			defer cancel()

			client, err := buildClient(ctx, resolved, logger)
			if err != nil {
				return err
			}

			bucket, key, err := parseS3URL(args[0])
			if err != nil {
				return err
			}

			dest := outPath
			if dest == "" {
				dest = strings.TrimSuffix(filepath.Base(key), ".delta")
			}

			return client.GetObject(ctx, facade.GetObjectInput{Bucket: bucket, Key: key}, dest)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Destination path (default: basename of key with .delta stripped)")

	return cmd
}
