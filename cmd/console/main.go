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

	"github.com/ariefcatur/go-order-console/internal/api"
	"github.com/ariefcatur/go-order-console/internal/app"
	"github.com/ariefcatur/go-order-console/internal/config"
	"github.com/ariefcatur/go-order-console/internal/httpx"
	kafkax "github.com/ariefcatur/go-order-console/internal/kafka"
	"github.com/ariefcatur/go-order-console/internal/logging"
	"github.com/ariefcatur/go-order-console/internal/metrics"
	"github.com/ariefcatur/go-order-console/internal/redisx"
	"github.com/ariefcatur/go-order-console/internal/session"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

var _ session.Locker = (*redisx.Locker)(nil)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.ServiceName, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// persistence API
	client := api.New(cfg.APIBaseURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithMetrics(metrics.NewClientMetrics(reg)),
		api.WithLogger(log),
	)
	opts := []app.Option{app.WithLogger(log)}

	// Redis submit lock, shared by every console instance
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping")
		}
		opts = append(opts, app.WithLocker(redisx.NewLocker(rdb)))
	}

	// Kafka activity events
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, cfg.ActivityTopic, 1024, log)
		prod.Start()
		opts = append(opts, app.WithPublisher(kafkax.NewPublisher(prod, cfg.ServiceName)))
	}

	store := app.NewStore(client, cfg.LogLimit, opts...)
	if err := store.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial refresh failed, starting with empty lists")
	}

	drafts := session.NewRegistry(client, cfg.DraftTTL)
	go sweepDrafts(ctx, drafts, log)

	router := httpx.NewRouter(log, metrics.NewServerMetrics(reg), reg)
	(&httpx.OrdersHandler{Store: store, Log: log}).Register(router)
	(&httpx.DraftsHandler{Drafts: drafts, Store: store, Log: log}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("api", cfg.APIBaseURL).Msg("console listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()
	if prod != nil {
		prod.Close()
		prod.WaitClosed()
	}
}

func sweepDrafts(ctx context.Context, r *session.Registry, log zerolog.Logger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				log.Info().Int("drafts", n).Int("open", r.Len()).Msg("expired drafts dropped")
			}
		}
	}
}
