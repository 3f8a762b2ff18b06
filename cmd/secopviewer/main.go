package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // DISPLAY_TZ sin depender del sistema

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	config "github.com/davicafu/secopviewer/internal/config"
	procesosApp "github.com/davicafu/secopviewer/internal/procesos/application"
	procesosDomain "github.com/davicafu/secopviewer/internal/procesos/domain"
	procesosEvents "github.com/davicafu/secopviewer/internal/procesos/infra/inbound/events"
	procesosHttp "github.com/davicafu/secopviewer/internal/procesos/infra/inbound/http"
	procesosAPI "github.com/davicafu/secopviewer/internal/procesos/infra/outbound/api"
	procesosSession "github.com/davicafu/secopviewer/internal/procesos/infra/outbound/session"
	sharedDomain "github.com/davicafu/secopviewer/internal/shared/domain"
	"github.com/davicafu/secopviewer/internal/shared/infra/events"
	"github.com/davicafu/secopviewer/internal/shared/infra/metrics"
	sharedBus "github.com/davicafu/secopviewer/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/secopviewer/internal/shared/infra/platform/cache"
	"github.com/davicafu/secopviewer/internal/shared/infra/platform/db/postgres"
	"github.com/davicafu/secopviewer/internal/shared/infra/platform/db/sqlite"
	"github.com/davicafu/secopviewer/internal/shared/infra/relayer"
	"github.com/davicafu/secopviewer/pkg/logger"
)

// outboxStore es lo que necesitan el worker y el servicio sobre la outbox.
type outboxStore interface {
	sharedDomain.OutboxRepository
	sharedDomain.OutboxWriter
}

// ---------------- Main ----------------
func main() {
	if err := config.LoadEnv(".env", ".env.local"); err != nil {
		panic(err)
	}
	cfg := config.LoadConfig()

	logger.Init(cfg.LogLevel) // inicializa zap
	log := logger.Logger()    // obtiene logger estructurado
	defer log.Sync()          // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		log.Warn("⚠️ Zona horaria no válida, se usa la local", zap.String("tz", cfg.DisplayTZ), zap.Error(err))
	}

	// ---------------- DB (outbox) ----------------
	var (
		db     *sql.DB
		outbox outboxStore
	)
	if cfg.LocalDeployment {
		db, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatal("failed to open SQLite", zap.Error(err))
		}
		if err := sqlite.InitOutbox(ctx, db); err != nil {
			log.Fatal("failed to initialize SQLite outbox", zap.Error(err))
		}
		outbox = sqlite.NewOutboxRepoSQLite(db)
	} else {
		db, err = postgres.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to open Postgres", zap.Error(err))
		}
		if err := postgres.InitOutbox(ctx, db); err != nil {
			log.Fatal("failed to initialize Postgres outbox", zap.Error(err))
		}
		outbox = postgres.NewOutboxRepoPostgres(db)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping outbox database", zap.Error(err))
	}

	// ---------------- Cache (sesiones) ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, sesiones en memoria", zap.Error(err))
		memCache := sharedCache.NewInMemoryCache(cfg.SessionTTL, cfg.SessionTTL)
		defer memCache.Stop()
		cacheInstance = memCache
	} else {
		cacheInstance = sharedCache.NewRedisCache(rdb, cfg.SessionTTL)
		log.Info("✅ Redis conectado, sesiones en Redis")
	}
	defer rdb.Close()

	// ---------------- Events ---------------
	exportConsumer := procesosEvents.NewExportConsumer(log)

	var publisher sharedBus.EventBus
	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos")

		// Hash reparte por session_id: los eventos de una sesión quedan en orden.
		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.Hash{},
		})
		defer writer.Close()
		publisher = events.NewKafkaPublisher(writer, log)

		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			GroupID:  "secopviewer-export-audit",
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		})
		defer reader.Close()
		events.NewConsumerAdapter(reader, exportConsumer, log).Start(ctx)
	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")

		bus := events.NewInMemoryEventBus(procesosDomain.ProcesosTopic)
		defer bus.Close()
		publisher = bus
		events.Dispatch(ctx, bus.Subscribe(64), exportConsumer)
	}

	// ------------ Outbox Worker ------------
	worker := relayer.NewOutboxWorker(outbox, publisher, procesosDomain.NewEventRegistry(), cfg.OutboxPeriod, cfg.OutboxLimit, log)
	go worker.Start(ctx)

	// --------------- Servicio --------------
	client, err := procesosAPI.NewClient(cfg.ProcesosAPIURL, cfg.ProcesosAPITimeout, log)
	if err != nil {
		log.Fatal("invalid PROCESOS_API_URL", zap.Error(err))
	}
	gateway := procesosAPI.NewCachedGateway(client, cacheInstance, cfg.CatalogTTL, log)
	m := metrics.NewMetrics()

	factory := func(sessionID string, state procesosDomain.BrowseState) *procesosApp.BrowserService {
		return procesosApp.NewBrowserService(gateway, log,
			procesosApp.WithSessionID(sessionID),
			procesosApp.WithState(state),
			procesosApp.WithLocation(loc),
			procesosApp.WithMetrics(m),
			procesosApp.WithAudit(outbox),
		)
	}
	store := procesosSession.NewCacheStateStore(cacheInstance, cfg.SessionTTL)
	registry := procesosApp.NewSessionRegistry(store, factory, cfg.SessionTTL, m, log)
	go registry.Run(ctx, time.Minute)

	// ---------------- HTTP ----------------
	router := gin.Default()
	procesosHttp.RegisterBrowserRoutes(router, procesosHttp.NewBrowserHandler(registry, cfg.SessionCookie, cfg.SessionTTL, log))
	procesosHttp.RegisterOpsRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("🚀 Server running",
			zap.String("url", "http://localhost:"+cfg.HTTPPort),
			zap.String("procesos_api", cfg.ProcesosAPIURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("🛑 Apagando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Shutdown incompleto", zap.Error(err))
	}
}
