// Command server runs the order-processing demo against the graceful
// shutdown coordination core, following example/cmd/assistant/main.go's
// signal-channel-plus-WaitGroup shutdown pattern rather than a servlet
// container lifecycle.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"goa.design/clue/log"

	"github.com/agentscope-go/shutdown/shutdown"
	"github.com/agentscope-go/shutdown/config"
	"github.com/agentscope-go/shutdown/demo/orders"
	"github.com/agentscope-go/shutdown/readiness"
	"github.com/agentscope-go/shutdown/session"
	"github.com/agentscope-go/shutdown/session/inmem"
	"github.com/agentscope-go/shutdown/session/mongostore"
	"github.com/agentscope-go/shutdown/session/redisstore"
	"github.com/agentscope-go/shutdown/telemetry"
)

func main() {
	configPathF := flag.String("config", "", "Path to a YAML configuration file (optional, env vars always override)")
	dbgF := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if *dbgF {
		ctx = log.Context(ctx, log.WithDebug())
	}

	if err := run(ctx, *configPathF); err != nil {
		log.Fatal(ctx, err)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := telemetry.ClueLogger{}
	logger.Info(ctx, "starting server", telemetry.KV{K: "storeBackend", V: string(cfg.StoreBackend)}, telemetry.KV{K: "httpAddr", V: cfg.HTTPAddr})

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building session store: %w", err)
	}
	defer closeStore()

	const instrumentationName = "github.com/agentscope-go/shutdown"
	metrics := telemetry.NewGlobalMetrics(instrumentationName)
	tracer := telemetry.NewGlobalTracer(instrumentationName)

	controller := shutdown.New(logger, metrics, tracer)
	shutdown.SetDefault(controller)

	mux := http.NewServeMux()
	readiness.NewHandler(readiness.NewView(controller)).Register(mux)
	reasoner := orders.NewOpenAIReasoner(cfg.OpenAIAPIKey, logger)
	orders.NewHandler(orders.NewService(controller, store, logger, reasoner, tracer), logger).Register(mux)

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

	signalCtx, cancelSignalWait := context.WithCancel(ctx)
	defer cancelSignalWait()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info(ctx, "http server listening", telemetry.KV{K: "addr", V: cfg.HTTPAddr})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http server failed", telemetry.KV{K: "error", V: err})
			cancelSignalWait()
		}
	}()

	completed := controller.WaitForSignal(signalCtx, cfg.DrainDeadline, syscall.SIGINT, syscall.SIGTERM)
	logger.Info(ctx, "drain finished", telemetry.KV{K: "completedNormally", V: completed})

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http server shutdown error", telemetry.KV{K: "error", V: err})
	}

	wg.Wait()
	logger.Info(ctx, "exited")
	return nil
}

func buildStore(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return redisstore.New(client), func() { _ = client.Close() }, nil

	case config.StoreBackendMongo:
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		coll := client.Database(cfg.MongoDatabase).Collection("sessions")
		return mongostore.New(coll), func() { _ = client.Disconnect(ctx) }, nil

	case config.StoreBackendInMemory, "":
		return inmem.New(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
