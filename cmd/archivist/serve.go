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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"archivist/internal/audit/outbox"
	httpapi "archivist/internal/http"
	jwttoken "archivist/internal/jwt_token"
	"archivist/internal/platform/httpserver"
	"archivist/internal/platform/metrics"
	"archivist/internal/platform/postgres"
)

const shutdownTimeout = 15 * time.Second

// ServeCmd returns the long-running server command.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the retention scheduler and the audit relay",
		Long: `Apply pending migrations, then serve the HTTP API until SIGINT or SIGTERM.

The retention scheduler runs a warm-up pass at start-up (unless disabled)
and a daily pass at retention.run_hour_utc. When kafka.brokers is set the
audit outbox relay publishes committed audit events to kafka.audit_topic.`,
		RunE: runServe,
	}
	cmd.Flags().Bool("skip-migrations", false, "Do not apply migrations before serving")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	if skip, _ := cmd.Flags().GetBool("skip-migrations"); !skip {
		if err := postgres.Migrate(cfg.Database.URL, log); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close resources", "error", err)
		}
	}()

	checkers := a.checkers()
	var relay *outbox.Relay
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := outbox.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
			return err
		}
		relay = outbox.New(a.auditStore, a.tx, sink,
			outbox.WithLogger(log),
			outbox.WithMetrics(outbox.NewMetrics()),
			outbox.WithInterval(cfg.Kafka.RelayInterval),
			outbox.WithBatchSize(cfg.Kafka.RelayBatchSize),
		)
		checkers = append(checkers, sink, relay)
	} else {
		log.Warn("kafka.brokers not set, audit outbox relay disabled")
	}

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, jwttoken.DefaultIssuer, jwttoken.DefaultAudience)
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Metrics:   metrics.New(),
		Validator: jwttoken.NewJWTServiceAdapter(tokens),
		Checkers:  checkers,
		Handlers:  a.handlers(),
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting archivist", "addr", cfg.Addr, "lock_backend", cfg.Lock.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		a.scheduler.Start(gctx)
		<-gctx.Done()
		a.scheduler.Stop()
		return nil
	})
	if relay != nil {
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}

	err = g.Wait()
	log.Info("archivist stopped")
	return err
}
