package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gamezone/services/storefront-api/internal/auth"
	httpx "gamezone/services/storefront-api/internal/http"
	"gamezone/services/storefront-api/internal/http/handlers"
	"gamezone/services/storefront-api/internal/repo"
	"gamezone/services/storefront-api/internal/service"
	"gamezone/shared/pkg/cache"
	"gamezone/shared/pkg/config"
	"gamezone/shared/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("storefront-api", cfg.Common.LogLevel)
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	var carts repo.Carts
	if cfg.Redis.Addr != "" {
		rdb := cache.New(cfg.Redis.Addr)
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect failed")
		}
		carts = &repo.CartsRedis{Redis: rdb, TTL: cfg.Cart.TTL}
		store.Products = &repo.ProductsCached{Products: store.Products, Redis: rdb, TTL: cfg.Catalog.CacheTTL, Log: log}
	} else {
		log.Warn().Msg("REDIS_ADDR not set, carts are kept in process memory")
		carts = repo.NewCartsMemory()
	}

	authSvc := &service.AuthService{
		Users:            store.Users,
		Hasher:           auth.Hasher{Cost: cfg.Auth.BcryptCost},
		Tokens:           &auth.Tokens{Secret: []byte(cfg.Auth.JWTSecret), TTL: cfg.Auth.TokenTTL},
		Log:              log,
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
	}
	products := &service.ProductService{Products: store.Products, Log: log}
	orders := &service.OrderService{Store: store, Log: log}
	users := &service.UserService{Store: store, Carts: carts, Log: log}
	cartSvc := &service.CartService{Carts: carts, Products: store.Products, Orders: orders, Log: log}

	router := httpx.NewRouter(&httpx.Handlers{
		Auth:     &handlers.AuthHandler{Auth: authSvc, Log: log},
		Products: &handlers.ProductHandler{Products: products, Log: log},
		Cart:     &handlers.CartHandler{Cart: cartSvc, Log: log},
		Orders:   &handlers.OrderHandler{Orders: orders, Auth: authSvc, Log: log},
		Users:    &handlers.UserHandler{Users: users, Log: log},
	}, httpx.Options{
		Log:            log,
		Authenticator:  authSvc,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Msg("http started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutdown...")
		shCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("stopped with error")
	}
}

func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (repo.Store, func()) {
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("memory storage: data is lost on restart")
		return repo.NewMemoryStore().Store(), func() {}
	}

	ctxDB, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	db, err := pgxpool.New(ctxDB, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("pg connect failed")
	}
	if err := db.Ping(ctxDB); err != nil {
		log.Fatal().Err(err).Msg("pg ping failed")
	}

	if cfg.Storage.AutoMigrate {
		applied, err := repo.Migrate(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}
		log.Info().Strs("applied", applied).Msg("migrations done")
	}
	return repo.NewPGStore(db), db.Close
}
