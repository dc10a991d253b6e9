// Package server contains the command starting the HTTP API server.
package server

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/revlimit/modengine-go/log"
	"github.com/revlimit/modengine-go/pkg/config"
	"github.com/revlimit/modengine-go/pkg/db/postgres"
	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/repository/calibration"
	"github.com/revlimit/modengine-go/pkg/repository/catalog"
	"github.com/revlimit/modengine-go/pkg/repository/dyno"
	laptimerepos "github.com/revlimit/modengine-go/pkg/repository/laptime"
	"github.com/revlimit/modengine-go/pkg/server"
	"github.com/revlimit/modengine-go/pkg/service"
	"github.com/revlimit/modengine-go/pkg/sink"
	natssink "github.com/revlimit/modengine-go/pkg/sink/nats"
	"github.com/revlimit/modengine-go/pkg/utils"
)

func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer()
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddr,
		"server-addr",
		"a",
		"localhost:8080",
		"HTTP server listen address")
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"debug",
		"controls the log level for sql methods")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format")
	cmd.Flags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules applied to the logger")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	cmd.Flags().StringVar(&config.AdminToken,
		"admin-token",
		"",
		"admin token value (required for dyno submissions)")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

//nolint:funlen,cyclop // by design
func startServer() error {
	var logger *log.Logger
	var sqlLogger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.New(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))

	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if config.LogFilter != "" {
		filtered, err := log.NewWithFilter(logger, config.LogFilter)
		if err != nil {
			return err
		}
		logger = filtered
	}
	log.ResetDefault(logger)

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // by design
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	waitForRequiredServices()

	log.Info("Starting server")
	pool := postgres.InitWithURL(
		config.DB,
		postgres.WithTracer(sqlLogger),
	)
	defer pool.Close()

	sampleSink, err := setupSink()
	if err != nil {
		log.Error("could not setup sample sink", log.ErrorField(err))
		return err
	}
	if sampleSink != nil {
		defer sampleSink.Close()
	}

	evaluator := buildEvaluator(pool, sampleSink)
	apiServer := server.NewServer(
		server.WithEvaluator(evaluator),
		server.WithAdminToken(config.AdminToken),
		server.WithLogger(logger.Named("server")))

	httpServer := &http.Server{
		Addr:              config.ServerAddr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Starting HTTP server", log.String("addr", config.ServerAddr))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil &&
			serveErr != http.ErrServerClosed {
			log.Fatal("server could not be started", log.ErrorField(serveErr))
		}
	}()
	setupGoRoutinesDump()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	v := <-sigChan
	log.Debug("Got signal", log.Any("signal", v))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("could not shut down cleanly", log.ErrorField(err))
	}
	log.Info("Server terminated")
	return nil
}

func setupSink() (sink.SampleSink, error) {
	if config.NatsURL == "" {
		log.Info("No NATS url configured, sample emission disabled")
		//nolint:nilnil // absence of a sink is a valid setup
		return nil, nil
	}
	conn, err := nats.Connect(config.NatsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1))
	if err != nil {
		return nil, err
	}
	return natssink.NewNatsSink(conn), nil
}

func buildEvaluator(pool *pgxpool.Pool, sampleSink sink.SampleSink) *service.Evaluator {
	opts := []service.Option{
		service.WithCatalogSource(
			func(ctx context.Context) ([]*model.Modification, error) {
				return catalog.LoadAll(ctx, pool)
			}),
		service.WithCalibrationLookup(
			func(ctx context.Context, platformID, modID string) (*float64, error) {
				return calibration.LoadByPlatformMod(ctx, pool, platformID, modID)
			}),
		service.WithDynoLookup(
			func(ctx context.Context, vehicleID, buildHash string) (
				*model.DynoMeasurement, error,
			) {
				return dyno.LoadByVehicleBuild(ctx, pool, vehicleID, buildHash)
			}),
		service.WithDynoStore(
			func(ctx context.Context, vehicleID, buildHash string,
				m *model.DynoMeasurement,
			) error {
				return dyno.Upsert(ctx, pool, vehicleID, buildHash, m)
			}),
		service.WithLapSampleStore(
			func(ctx context.Context, sample *model.LapTimeSample) error {
				return laptimerepos.InsertSample(ctx, pool, sample)
			}),
		service.WithAggregateLookup(
			func(ctx context.Context, trackID string) (*model.PercentileStats, error) {
				return laptimerepos.LoadAggregate(ctx, pool, trackID)
			}),
	}
	if sampleSink != nil {
		opts = append(opts, service.WithSampleSink(sampleSink))
	}
	return service.NewEvaluator(opts...)
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

func waitForRequiredServices() {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}

	wg := sync.WaitGroup{}
	checkTCP := func(addr string) {
		if err = utils.WaitForTCP(addr, timeout); err != nil {
			log.Fatal("required services not ready", log.ErrorField(err))
		}
		wg.Done()
	}

	if postgresAddr := utils.ExtractFromDBURL(config.DB); postgresAddr != "" {
		wg.Add(1)
		go checkTCP(postgresAddr)
	}
	if natsAddr := utils.ExtractFromNatsURL(config.NatsURL); natsAddr != "" {
		wg.Add(1)
		go checkTCP(natsAddr)
	}
	log.Debug("Waiting for connection checks to return")
	wg.Wait()
	log.Debug("Required services are available")
}
