package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maueyecare/clinic/internal/devstub"
)

func (a *app) serveStubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Run the in-memory stub backend",
		Long: "Serves the full clinic API surface from process memory. For local\n" +
			"development and demos only; all data is lost on exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetString("port")
			if port == "" {
				port = a.cfg.StubPort
			}

			srv := devstub.New(devstub.NewStore(), a.cfg.StubJWTKey, a.log)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(":" + port)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-quit:
				a.log.Info().Str("signal", sig.String()).Msg("shutting down stub")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().String("port", "", "Listen port (defaults to STUB_PORT)")
	return cmd
}
