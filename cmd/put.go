package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"deltaglider/pkg/deltaservice"
	"deltaglider/pkg/facade"
)

func newPutCmd() *cobra.Command {
	var maxRatio float64

	cmd := &cobra.Command{
		Use:   "put <local_file> <s3://bucket/prefix>",
		Short: "Upload a file, delta-encoding it against its deltaspace reference when profitable",
		Args:  cobra.ExactArgs(2),
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

			localFile := args[0]
			bucket, prefix, err := parseS3URL(args[1])
			if err != nil {
				return err
			}

			var ratio *float64
			if c.Flags().Changed("max-ratio") {
				ratio = &maxRatio
			}

			out, err := client.PutObject(ctx, facade.PutObjectInput{
				Bucket:    bucket,
				Key:       filepath.Join(prefix, filepath.Base(localFile)),
				LocalPath: localFile,
				MaxRatio:  ratio,
			})
			if err != nil {
				return err
			}

			return printPutSummary(bucket, prefix, localFile, out)
		},
	}

	cmd.Flags().Float64Var(&maxRatio, "max-ratio", 0, "Override the configured max delta/file size ratio for this put")

	return cmd
}

func printPutSummary(bucket, prefix, localFile string, out facade.PutObjectOutput) error {
	name := filepath.Base(localFile)
	summary := map[string]interface{}{
		"operation":     out.Operation,
		"bucket":        bucket,
		"key":           filepath.Join(prefix, name),
		"original_name": name,
		"file_size":     out.FileSize,
		"file_sha256":   out.FileSHA256,
		"cache_hit":     out.CacheHit,
	}
	if out.Operation == deltaservice.OpCreateDelta || out.Operation == deltaservice.OpCreateReference {
		summary["delta_size"] = out.DeltaSize
		summary["delta_ratio"] = out.DeltaRatio
		summary["ref_key"] = out.RefKey
		summary["ref_sha256"] = out.RefSHA256
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return err
	}
	for _, w := range out.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	return nil
}
