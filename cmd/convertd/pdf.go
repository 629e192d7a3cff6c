// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/convertd/pkg/types"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Manipulate PDF files",
}

var pdfMergeCmd = &cobra.Command{
	Use:   "merge <file> <file>...",
	Short: "Merge two or more PDFs into one",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, types.OpMerge, nil, args)
	},
}

var pdfSplitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Split a PDF into page ranges",
	Long: `Split extracts the given page ranges into separate PDFs.

Ranges are comma-separated, one output per range: "1-3,5,7-" produces
three files covering pages 1 to 3, page 5, and page 7 to the end.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ranges, _ := cmd.Flags().GetString("ranges")
		opts := map[string]string{types.OptRanges: ranges}
		return runOperation(cmd, types.OpSplit, opts, args)
	},
}

var pdfCompressCmd = &cobra.Command{
	Use:   "compress <file>",
	Short: "Reduce PDF file size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, types.OpCompress, nil, args)
	},
}

var pdfEncryptCmd = &cobra.Command{
	Use:   "encrypt <file>",
	Short: "Password-protect a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPasswordOperation(cmd, types.OpEncrypt, args)
	},
}

var pdfDecryptCmd = &cobra.Command{
	Use:   "decrypt <file>",
	Short: "Remove password protection from a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPasswordOperation(cmd, types.OpDecrypt, args)
	},
}

var pdfRotateCmd = &cobra.Command{
	Use:   "rotate <file>",
	Short: "Rotate PDF pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		angle, _ := cmd.Flags().GetInt("angle")
		pages, _ := cmd.Flags().GetString("pages")
		opts := map[string]string{
			types.OptAngle: strconv.Itoa(angle),
			types.OptPages: pages,
		}
		return runOperation(cmd, types.OpRotate, opts, args)
	},
}

var pdfWatermarkCmd = &cobra.Command{
	Use:   "watermark <file>",
	Short: "Stamp a text watermark on every page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		opts := map[string]string{types.OptText: text}
		return runOperation(cmd, types.OpWatermark, opts, args)
	},
}

var pdfNumbersCmd = &cobra.Command{
	Use:   "numbers <file>",
	Short: "Add page numbers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, _ := cmd.Flags().GetString("position")
		opts := map[string]string{types.OptPosition: pos}
		return runOperation(cmd, types.OpAddNumbers, opts, args)
	},
}

func init() {
	rootCmd.AddCommand(pdfCmd)

	pdfSplitCmd.Flags().String("ranges", "", "page ranges, e.g. 1-3,5,7- (required)")
	_ = pdfSplitCmd.MarkFlagRequired("ranges")

	pdfEncryptCmd.Flags().String("password", "", "password to set (required)")
	_ = pdfEncryptCmd.MarkFlagRequired("password")
	pdfDecryptCmd.Flags().String("password", "", "current password (required)")
	_ = pdfDecryptCmd.MarkFlagRequired("password")

	pdfRotateCmd.Flags().Int("angle", 90, "rotation angle, multiple of 90")
	pdfRotateCmd.Flags().String("pages", "all", "pages to rotate, e.g. 1-3,5 or all")

	pdfWatermarkCmd.Flags().String("text", "", "watermark text (required)")
	_ = pdfWatermarkCmd.MarkFlagRequired("text")

	pdfNumbersCmd.Flags().String("position", "bottom-center",
		"number position: bottom-center, bottom-left, bottom-right, top-center, top-left, top-right")

	for _, c := range []*cobra.Command{
		pdfMergeCmd, pdfSplitCmd, pdfCompressCmd, pdfEncryptCmd,
		pdfDecryptCmd, pdfRotateCmd, pdfWatermarkCmd, pdfNumbersCmd,
	} {
		addClientFlags(c)
		pdfCmd.AddCommand(c)
	}
}

func runPasswordOperation(cmd *cobra.Command, op types.Operation, args []string) error {
	pw, _ := cmd.Flags().GetString("password")
	opts := map[string]string{types.OptPassword: pw}
	return runOperation(cmd, op, opts, args)
}
