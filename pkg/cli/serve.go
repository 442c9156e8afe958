package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/cli/config"
	httpctrl "github.com/secmon-lab/grc-risk/pkg/controller/http"
	"github.com/secmon-lab/grc-risk/pkg/service/event"
	"github.com/secmon-lab/grc-risk/pkg/service/worker"
	"github.com/secmon-lab/grc-risk/pkg/usecase"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var dirCfg config.Directory
	var authCfg config.Auth
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("GRC_RISK_ADDR"),
			Destination: &addr,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, dirCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Serve configuration",
				"addr", addr,
				"repository", repoCfg,
				"directory", dirCfg,
				"auth", authCfg,
				"slack", slackCfg,
			)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			authUC, err := authCfg.Configure(repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}

			bus := event.New()
			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack notifier")
			}
			if notifier != nil {
				sub := notifier.Attach(bus)
				defer sub.Unsubscribe()
				logging.Default().Info("Slack notifications enabled")
			}

			uc := usecase.New(repo,
				usecase.WithAuth(authUC),
				usecase.WithServerEventBus(bus),
			)

			// The initial load must succeed so stubs resolve from the first request
			var dirWorker *worker.DirectoryRefreshWorker
			if dirCfg.IsEnabled() {
				w := worker.NewDirectoryRefreshWorker(&dirCfg, uc.Risk, dirCfg.RefreshInterval())
				if err := w.Refresh(ctx); err != nil {
					return goerr.Wrap(err, "failed to load directory")
				}
				if dirCfg.RefreshInterval() > 0 {
					if err := w.Start(ctx); err != nil {
						return goerr.Wrap(err, "failed to start directory refresh worker")
					}
					dirWorker = w
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if dirWorker != nil {
					dirWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
