package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/abhisek/timestables/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the shared results server",
	Long: "Serve the REST API that game clients started with --remote " +
		"record sessions to, plus /health and /metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd, os.Stderr, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		rt.metrics.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		srv, err := server.New(rt.store,
			server.WithLogger(rt.log),
			server.WithRegistry(rt.metrics),
			server.WithMode(rt.cfg.Server.Mode),
			server.WithPing(rt.store.Ping),
		)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, rt.cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :3000)")
	serveCmd.Flags().String("mode", "", "Server mode: debug, release or test")
}
