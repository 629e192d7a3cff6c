// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/convertd/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export PDF content to other formats",
}

var exportJPGCmd = &cobra.Command{
	Use:   "jpg <file>",
	Short: "Render PDF pages as JPEG images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, types.OpPDFToJPG, nil, args)
	},
}

var exportWordCmd = &cobra.Command{
	Use:   "word <file>",
	Short: "Convert a PDF to a Word document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, types.OpPDFToWord, nil, args)
	},
}

var exportPPTXCmd = &cobra.Command{
	Use:   "pptx <file>",
	Short: "Convert a PDF to a PowerPoint presentation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, types.OpPDFToPPTX, nil, args)
	},
}

var exportTextCmd = &cobra.Command{
	Use:   "text <file>",
	Short: "Extract plain text from a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, types.OpPDFToText, nil, args)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	for _, c := range []*cobra.Command{exportJPGCmd, exportWordCmd, exportPPTXCmd, exportTextCmd} {
		addClientFlags(c)
		exportCmd.AddCommand(c)
	}
}
