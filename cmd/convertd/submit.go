// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/convertd/internal/client"
	"github.com/pdiddy/convertd/internal/secrets"
	"github.com/pdiddy/convertd/pkg/types"
)

// addClientFlags registers the flags shared by every submitting command.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("addr", "", "server address (default "+types.DefaultListen+")")
	cmd.Flags().StringP("output", "o", "", "output file or directory (default: current directory)")
}

// clientFromFlags builds a Client from config file, environment, and flags.
func clientFromFlags(cmd *cobra.Command) *client.Client {
	cfg := types.DefaultClientConfig()

	if v := viper.GetString("client.addr"); v != "" {
		cfg.Addr = v
	}
	if d := viper.GetDuration("client.timeout"); d > 0 {
		cfg.Timeout = d
	}
	if n := viper.GetInt("client.max_retries"); n > 0 {
		cfg.MaxRetries = n
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Addr = v
	}
	cfg.Token = secretDefault(secrets.TokenKey, viper.GetString("client.token"))

	return client.New(cfg)
}

// loadInputs reads the given paths into request files.
func loadInputs(paths []string) ([]types.File, error) {
	files := make([]types.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading input %s: %w", p, err)
		}
		files = append(files, types.File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// runOperation is the shared submit path: load inputs, send the request,
// and save the result. Server-side failures surface as command errors
// carrying the server's message.
func runOperation(cmd *cobra.Command, op types.Operation, options map[string]string, inputs []string) error {
	files, err := loadInputs(inputs)
	if err != nil {
		return err
	}

	req := &types.Request{
		Op:           op,
		SourceFormat: strings.TrimPrefix(filepath.Ext(inputs[0]), "."),
		Options:      options,
		Files:        files,
	}

	res, err := clientFromFlags(cmd).Do(cmd.Context(), req)
	if err != nil {
		return err
	}
	if res.Failed() {
		return fmt.Errorf("%s failed (%s): %s", op, res.Code, res.Error)
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = "."
	}
	paths, err := client.SaveFiles(res.Files, out)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println("saved:", p)
	}
	return nil
}
