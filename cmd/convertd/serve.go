// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/convertd/internal/engine"
	"github.com/pdiddy/convertd/internal/history"
	"github.com/pdiddy/convertd/internal/secrets"
	"github.com/pdiddy/convertd/internal/server"
	"github.com/pdiddy/convertd/internal/tool"
	"github.com/pdiddy/convertd/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the conversion server",
	Long: `Serve listens for client connections and performs the requested
conversions. Office-format conversions need a LibreOffice installation
(soffice) on PATH; PDF-to-JPG needs pdftoppm or mutool. Missing tools
disable only the operations that need them.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default "+types.DefaultListen+")")
	serveCmd.Flags().Duration("read-timeout", 0, "request read timeout")
	serveCmd.Flags().Duration("write-timeout", 0, "response write timeout")
	serveCmd.Flags().Int64("max-payload", 0, "maximum request payload in bytes")
	serveCmd.Flags().String("temp-dir", "", "base directory for request workspaces")
	serveCmd.Flags().String("history-db", "", "SQLite request-history database (empty disables history)")

	rootCmd.AddCommand(serveCmd)
}

func serveConfig(cmd *cobra.Command) types.ServerConfig {
	cfg := types.DefaultServerConfig()

	if v := viper.GetString("server.listen"); v != "" {
		cfg.Listen = v
	}
	if d := viper.GetDuration("server.read_timeout"); d > 0 {
		cfg.ReadTimeout = d
	}
	if d := viper.GetDuration("server.write_timeout"); d > 0 {
		cfg.WriteTimeout = d
	}
	if n := viper.GetInt64("server.max_payload"); n > 0 {
		cfg.MaxPayload = n
	}
	cfg.TempDir = viper.GetString("server.temp_dir")
	cfg.HistoryDB = viper.GetString("server.history_db")

	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		cfg.Listen = v
	}
	if d, _ := cmd.Flags().GetDuration("read-timeout"); d > 0 {
		cfg.ReadTimeout = d
	}
	if d, _ := cmd.Flags().GetDuration("write-timeout"); d > 0 {
		cfg.WriteTimeout = d
	}
	if n, _ := cmd.Flags().GetInt64("max-payload"); n > 0 {
		cfg.MaxPayload = n
	}
	if v, _ := cmd.Flags().GetString("temp-dir"); v != "" {
		cfg.TempDir = v
	}
	if v, _ := cmd.Flags().GetString("history-db"); v != "" {
		cfg.HistoryDB = v
	}

	cfg.Token = secretDefault(secrets.TokenKey, viper.GetString("server.token"))
	return cfg
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := serveConfig(cmd)

	engineOpts := []engine.Option{engine.WithTempDir(cfg.TempDir)}

	office, err := tool.DetectOffice()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; Office conversions disabled\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "office suite: %s\n", office.Name())
		engineOpts = append(engineOpts, engine.WithOffice(office))
	}

	raster, err := tool.DetectRasterizer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; PDF to JPG disabled\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "rasterizer: %s\n", raster.Name())
		engineOpts = append(engineOpts, engine.WithRasterizer(raster))
	}

	var serverOpts []server.Option
	if cfg.HistoryDB != "" {
		store, err := history.NewStore(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		serverOpts = append(serverOpts, server.WithHistory(store))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, engine.New(engineOpts...), serverOpts...)
	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "server stopped")
	return nil
}
