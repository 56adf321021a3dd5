/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/espkit/pkg/api"
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/storage"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the record index over HTTP",
	Long: `Start the REST API over the record index built by 'espkit index'.

Routes:
  GET /api/v1/health
  GET /api/v1/plugins
  GET /api/v1/plugins/{plugin}/records[?tag=XXXX]
  GET /api/v1/records/{plugin}/{local}
  GET /api/v1/editor-ids/{editorID}
  GET /api/v1/runs
  GET /metrics

API documentation is served under /swagger/. When --api-key is set,
/api/v1 requests must carry it in X-API-Key.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		if !cmd.Flags().Changed("port") {
			port = cfg.Port
		}
		bind, _ := cmd.Flags().GetString("bind")
		if !cmd.Flags().Changed("bind") {
			bind = cfg.Bind
		}
		apiKey, _ := cmd.Flags().GetString("api-key")
		origins, _ := cmd.Flags().GetStringSlice("cors-origin")
		if !cmd.Flags().Changed("cors-origin") {
			origins = cfg.CORSOrigins
		}

		names, err := cfg.Plugins()
		if err != nil {
			return err
		}

		ix, err := storage.Open(cfg.IndexDir)
		if err != nil {
			return err
		}
		defer ix.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, ix, formid.NewLoadOrder(names...), api.ServerConfig{
			Port:        port,
			Bind:        bind,
			APIKey:      apiKey,
			CORSOrigins: origins,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().String("api-key", "", "Require this key in the X-API-Key header")
	serveCmd.Flags().StringSlice("cors-origin", nil, "Allow browser requests from these origins")
}
