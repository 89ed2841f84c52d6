package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iota-uz/levels/modules/levels"
	"github.com/iota-uz/levels/modules/levels/services"
	"github.com/iota-uz/levels/pkg/configuration"
	"github.com/iota-uz/levels/pkg/eventbus"
	"github.com/iota-uz/levels/pkg/metrics"
	"github.com/iota-uz/levels/pkg/middleware"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	shutdownTracing := setupTracing(ctx, conf, logger)
	defer shutdownTracing(context.Background())

	module := levels.NewModule(
		services.Config{ValidateChainOrder: conf.ValidateChainOrder},
		logger,
		eventbus.NewEventPublisher(logger),
	)

	requestMetrics := metrics.NewRequestMetrics(prometheus.DefaultRegisterer)

	r := mux.NewRouter()
	r.Use(
		middleware.RequestLog(logger),
		requestMetrics.Middleware(),
		middleware.ProvidePool(pool),
		middleware.ProvideLogger(logger),
	)
	module.Register(r)
	metrics.NewPrometheusController(conf.PrometheusPath).Register(r)

	logger.Infof("listening on %s", conf.SocketAddress)
	if err := http.ListenAndServe(conf.SocketAddress, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
