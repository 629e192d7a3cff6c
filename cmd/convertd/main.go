// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the convertd CLI. One binary
// carries both sides of the system: `convertd serve` runs the conversion
// server, and the remaining commands act as the client that submits
// files to it.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/convertd/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the convertd CLI.
var rootCmd = &cobra.Command{
	Use:   "convertd",
	Short: "Client-server file conversion and PDF toolbox",
	Long: `convertd converts documents over a socket connection: a server process
performs the conversions and PDF manipulations, and the client commands
submit files to it and save the results.

Start the server with 'serve'. Submit work with 'convert' (anything to
PDF), 'pdf' (merge, split, compress, encrypt, decrypt, rotate, watermark,
numbers), 'export' (PDF to JPG, Word, PPTX, or text), or 'batch' (a YAML
job list).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./convertd.yaml or ~/.config/convertd/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("convertd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "convertd"))
		}
	}

	viper.SetEnvPrefix("CONVERTD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
