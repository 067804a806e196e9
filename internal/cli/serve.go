package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rohmanhakim/webqa/internal/httpapi"
	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/internal/storage"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the QA sessions over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		log := newLogger(cmd)
		var opts []httpapi.Option
		if cfg.DBPath() != "" {
			store := storage.NewRunStore(cfg.DBPath(), metadata.NewRecorder(log, ""))
			if err := store.Open(ctx); err != nil {
				return err
			}
			defer store.Close()
			opts = append(opts, httpapi.WithRunStore(store))
		}

		return httpapi.NewServer(cfg, log, opts...).ListenAndServe(ctx)
	},
}
