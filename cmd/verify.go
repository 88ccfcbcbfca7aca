package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <s3://bucket/key>",
		Short: "Reconstruct an object and confirm its SHA-256 matches what was recorded at put time",
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

			result, err := client.VerifyObject(ctx, bucket, key)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(map[string]interface{}{
				"valid":           result.Valid,
				"expected_sha256": result.ExpectedSHA256,
				"actual_sha256":   result.ActualSHA256,
				"message":         result.Message,
			}); encErr != nil {
				return encErr
			}

			if !result.Valid {
				return fmt.Errorf("verification failed: %s", result.Message)
			}
			return nil
		},
	}
}
