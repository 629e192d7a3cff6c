// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/convertd/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>...",
	Short: "Convert documents or images to PDF",
	Long: `Convert sends one or more files to the server for conversion to PDF.

Images (jpg, jpeg, png) are imported into a single PDF. Office documents
(doc, docx, odt, ppt, pptx, odp, xls, xlsx, ods, html, htm) are
converted one per input.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	addClientFlags(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	return runOperation(cmd, types.OpConvert, nil, args)
}
