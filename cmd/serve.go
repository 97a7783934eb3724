package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brightpath-mortgage/intake-api/internal/crm"
	"github.com/brightpath-mortgage/intake-api/internal/extract"
	"github.com/brightpath-mortgage/intake-api/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the intake HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		ocrExtractor, err := initOCR()
		if err != nil {
			return err
		}

		pipeline, err := extract.NewPipeline(st, ocrExtractor, initAnthropic(), extract.Opts{
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Extract.MaxTokens,
		})
		if err != nil {
			return err
		}

		srv := server.New(st, pipeline, cfg.Upload.MaxBytes)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Router(cfg.Server),
		}

		sfClient, err := initSalesforce()
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})

		if sfClient != nil {
			syncer := crm.NewSyncer(st, sfClient, time.Duration(cfg.Salesforce.SyncSecs)*time.Second)
			g.Go(func() error {
				if err := syncer.Run(gctx); err != nil && err != context.Canceled {
					return err
				}
				return nil
			})
		} else {
			zap.L().Info("crm sync disabled: no salesforce client ID configured")
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
