package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "portfee/api/swagger" // swagger docs
	"portfee/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// @title           Port Fee API
// @version         1.0
// @description     Harbour dues forms, tax rate schedules and tax calculation.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "portfee",
		Short:         "Harbour dues and cruise passenger tax service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), seedCmd(), recalculateCmd(), versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portfee %s\n", version)
		},
	}
}

func serveCmd() *cobra.Command {
	var shutdownTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if a.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET must be set")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gin.SetMode(a.cfg.GinMode)
			go a.hub.Run(ctx)

			router := handler.NewRouter(handler.RouterConfig{
				JWTSecret:    []byte(a.cfg.JWTSecret),
				CORSOrigins:  a.cfg.CORSOrigins,
				SecureCookie: a.cfg.IsRelease(),
				Hub:          a.hub,
				Swagger:      !a.cfg.IsRelease(),
				Log:          a.log,
			}, a.services)

			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				a.log.Info("server listening", zap.String("addr", srv.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for in-flight requests")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [fixtures.yaml]",
		Short: "Load reference data, users, rate schedules and forms from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.seed.SeedFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for kind, n := range report.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %-24s %d\n", kind, n)
			}
			for kind, n := range report.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %-24s %d\n", kind, n)
			}
			return nil
		},
	}
}

func recalculateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalculate",
		Short: "Recompute and store the taxes of every submitted form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.taxes.RecalculateAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recalculated %d of %d forms\n", report.Succeeded, report.Total)
			for _, f := range report.Failures {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", f.FormID, f.Error)
			}
			if len(report.Failures) > 0 {
				return fmt.Errorf("%d forms failed", len(report.Failures))
			}
			return nil
		},
	}
}
