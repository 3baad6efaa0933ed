package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/beauty_shop/internal/config"
	"github.com/Skotchmaster/beauty_shop/internal/events"
	"github.com/Skotchmaster/beauty_shop/internal/httpserver"
	"github.com/Skotchmaster/beauty_shop/internal/payment/khalti"
	"github.com/Skotchmaster/beauty_shop/internal/repo"
	"github.com/Skotchmaster/beauty_shop/internal/search"
	"github.com/Skotchmaster/beauty_shop/internal/service"
	"github.com/Skotchmaster/beauty_shop/internal/storage"
	pkgdb "github.com/Skotchmaster/beauty_shop/pkg/db"
	"github.com/Skotchmaster/beauty_shop/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/beauty_shop/pkg/middleware/logging"
)

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run database migrations before serving")
	return cmd
}

type app struct {
	db      *gorm.DB
	closers []func(context.Context) error
}

func (a *app) close(ctx context.Context, logger *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown_close_failed", "error", err)
		}
	}
}

func runServe(parent context.Context, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	a := &app{}
	defer a.close(context.Background(), logger)

	openCtx, cancel := context.WithTimeout(parent, 10*time.Second)
	a.db, err = pkgdb.Open(openCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func(context.Context) error { return pkgdb.Close(a.db) })

	gormRepo := &repo.GormRepo{DB: a.db}
	if migrate {
		if err := gormRepo.Migrate(parent); err != nil {
			return err
		}
	}

	deps, err := wire(parent, cfg, logger, a, gormRepo)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "token", "X-CSRF-Token"},
		ExposeHeaders:    []string{"X-CSRF-Token"},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit("20M"))
	e.Use(csrf.Middleware(csrf.Config{
		Secure:         cfg.SecureCookies,
		AllowedOrigins: []string{cfg.FrontendURL},
	}))

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-stop:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server_shutdown_failed", "error", err)
	}

	logger.Info("storefront_stopped")
	return nil
}

// wire builds every handler from the configured backends. Optional
// backends (Kafka, Elasticsearch) are skipped when not configured.
func wire(ctx context.Context, cfg *config.Config, logger *slog.Logger, a *app, gormRepo *repo.GormRepo) (*httpserver.Deps, error) {
	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers)
		a.closers = append(a.closers, func(context.Context) error { return kp.Close() })
		publisher = kp
	} else {
		logger.Info("events_disabled", "reason", "KAFKA_BROKERS not set")
	}

	var searcher service.ProductSearcher
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			return nil, err
		}
		s := search.NewESSearcher(es, "")
		if err := s.EnsureIndex(ctx); err != nil {
			logger.Warn("search_index_unavailable", "error", err)
		}
		searcher = s
	}

	var cartStore service.CartStore = gormRepo
	if cfg.CartStore == config.CartStoreMongo {
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		mdb, err := pkgdb.OpenMongo(openCtx, cfg.MongoURI, cfg.MongoDatabase)
		cancel()
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(ctx context.Context) error { return mdb.Client().Disconnect(ctx) })
		cartStore = repo.NewMongoCartStore(mdb)
	}

	images, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicAssetURL)
	if err != nil {
		return nil, err
	}

	catalog := &service.CatalogService{Repo: gormRepo, Images: images, Search: searcher, Events: publisher}
	carts := &service.CartService{Store: cartStore, Products: gormRepo, Events: publisher}
	notes := &service.NotificationService{Repo: gormRepo, Events: publisher}
	profiles := &service.ProfileService{Repo: gormRepo}
	orders := &service.OrderService{
		Orders:   gormRepo,
		Products: gormRepo,
		Carts:    carts,
		Gateway:  khalti.NewClient(cfg.KhaltiBaseURL, cfg.KhaltiSecretKey, cfg.KhaltiTimeout),
		Events:   publisher,
		Notifier: notes,
		Cfg: service.OrderConfig{
			FrontendURL:       cfg.FrontendURL,
			DeliveryFee:       cfg.DeliveryFee,
			StrictTransitions: cfg.StrictTransitions,
		},
		Addresses: profiles,
	}
	if cfg.KhaltiSecretKey == "" {
		logger.Warn("khalti_not_configured", "reason", "KHALTI_SECRET_KEY not set")
	}

	return &httpserver.Deps{
		ProductHandler: &httpserver.ProductHTTP{Svc: catalog},
		CartHandler:    &httpserver.CartHTTP{Svc: carts, Currency: cfg.Currency},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orders},
		HeroHandler:    &httpserver.HeroHTTP{Svc: &service.HeroService{Repo: gormRepo, Images: images}},
		JWTSecret:      cfg.JWTSecret,
		Ready:          gormRepo.Ping,
		UploadDir:      cfg.UploadDir,
		PublicAssetURL: cfg.PublicAssetURL,

		NotificationHandler: &httpserver.NotificationHTTP{Svc: notes},
		ProfileHandler:      &httpserver.ProfileHTTP{Svc: profiles},
	}, nil
}
