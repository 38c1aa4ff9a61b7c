package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"video2midi/apiserver"
	"video2midi/converter"
)

var serveFlags struct {
	addr    string
	origins []string
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", ":8888", "listen address")
	serveCmd.Flags().StringSliceVar(&serveFlags.origins, "origin", nil, "allowed CORS origins (default any)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves calibration and encoding over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		conv, err := converter.New(cfg, converter.Options{Logger: log})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		handler := apiserver.New(apiserver.Options{
			Converter:      conv,
			Logger:         log,
			AllowedOrigins: serveFlags.origins,
		})
		return apiserver.Run(ctx, serveFlags.addr, handler, log)
	},
}
