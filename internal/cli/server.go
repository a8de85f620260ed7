package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"live-quiz-engine/internal/app"
	"live-quiz-engine/internal/catalog"
	"live-quiz-engine/internal/config"
	"live-quiz-engine/internal/infra/llm"
	"live-quiz-engine/internal/infra/memory"
	pgloader "live-quiz-engine/internal/infra/postgres"
	"live-quiz-engine/internal/infra/rabbit"
	rediscache "live-quiz-engine/internal/infra/redis"
	transport "live-quiz-engine/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	builtin, err := catalog.Builtin()
	if err != nil {
		return err
	}
	var loader catalog.Loader = builtin
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		pg := pgloader.NewCatalogLoader(pool)
		// A fresh database gets the built-in catalogs; existing rows are left alone.
		if ids, err := pg.CatalogIDs(ctx); err != nil {
			log.Printf("catalog seed check failed: %v", err)
		} else if len(ids) == 0 {
			if err := seedCatalogs(ctx, pg, builtin); err != nil {
				log.Printf("seeding built-in catalogs failed: %v", err)
			}
		}
		loader = catalog.NewFallback(pg, builtin)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = rediscache.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = rediscache.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	generateTimeout := config.TTLDuration(cfg.Generator.Timeout, 15*time.Second)
	opts := app.Options{
		HostSecret:           cfg.Host.Secret,
		MaxPlayers:           cfg.Game.MaxPlayers,
		DefaultTimerSeconds:  cfg.Game.DefaultTimerSeconds,
		DefaultQuestionCount: cfg.Game.DefaultQuestionCount,
		GenerateTimeout:      generateTimeout,
	}
	if cfg.Generator.Enabled && cfg.Generator.BaseURL != "" {
		opts.Generator = llm.NewGenerator(cfg.Generator.BaseURL, cfg.Generator.Model, generateTimeout)
	}
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbit.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			log.Printf("results publishing disabled: %v", err)
		} else {
			defer publisher.Close()
			opts.Publisher = publisher
		}
	}

	engine := app.NewEngine(store, catalogs, app.NewHub(), opts)
	wsHandler := transport.NewWSHandler(engine)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/catalogs", transport.CatalogsHandler(engine))
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	// Websocket connections outlive any write timeout; only bound header reads.
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting live quiz engine on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
