// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/convertd/internal/jobfile"
)

var batchCmd = &cobra.Command{
	Use:   "batch <jobfile.yaml>",
	Short: "Run a batch of conversion jobs from a YAML job file",
	Long: `Batch reads a YAML job file and runs each job against the server in
order. Jobs that fail do not stop the batch; the command exits non-zero
when any job failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().String("addr", "", "server address")
}

func runBatch(cmd *cobra.Command, args []string) error {
	jf, err := jobfile.Read(args[0])
	if err != nil {
		return err
	}

	c := clientFromFlags(cmd)
	result := jobfile.Run(cmd.Context(), c, jf, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d of %d jobs failed", result.Failed, result.Total())
	}
	return nil
}
