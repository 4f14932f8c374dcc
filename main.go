package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gilanghuda/crewhub-backend/app/controllers"
	"github.com/gilanghuda/crewhub-backend/app/pricing"
	"github.com/gilanghuda/crewhub-backend/app/queries"
	"github.com/gilanghuda/crewhub-backend/app/scheduling"
	"github.com/gilanghuda/crewhub-backend/app/services"
	"github.com/gilanghuda/crewhub-backend/pkg/cache"
	"github.com/gilanghuda/crewhub-backend/pkg/config"
	"github.com/gilanghuda/crewhub-backend/pkg/database"
	"github.com/gilanghuda/crewhub-backend/pkg/events"
	"github.com/gilanghuda/crewhub-backend/pkg/logger"
	"github.com/gilanghuda/crewhub-backend/pkg/mailer"
	"github.com/gilanghuda/crewhub-backend/pkg/middleware"
	"github.com/gilanghuda/crewhub-backend/pkg/paystack"
	"github.com/gilanghuda/crewhub-backend/pkg/routes"
	"github.com/gilanghuda/crewhub-backend/pkg/utils"
)

func main() {
	envFile := flag.String("env", "", "path to a .env file")
	flag.Parse()
	defer logger.Sync()

	if err := config.Load(*envFile); err != nil {
		logger.Fatal(err)
	}
	cfg := config.Get()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal(err, "timezone", cfg.BookingTimezone)
	}

	dbCfg := database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
	}
	if cfg.DBMigrate {
		if err := database.Migrate(dbCfg); err != nil {
			logger.Fatal(err)
		}
	}
	db, err := database.InitDB(dbCfg, cfg.AppEnv == "dev")
	if err != nil {
		logger.Fatal(err)
	}
	defer db.Close()

	var priceCache cache.Cache
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		priceCache, err = cache.NewRedis(ctx, cfg.RedisKeyPrefix, &cache.Options{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDatabase,
		})
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, price cache disabled", "addr", cfg.RedisAddr, "error", err)
			priceCache = nil
		} else {
			defer priceCache.Close()
		}
	}

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaOrderTopic, cfg.KafkaWriteTimeout)
	defer publisher.Close()

	var mail mailer.Mailer = mailer.LogMailer{}
	if smtp, err := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}); err == nil {
		mail = smtp
	} else {
		logger.Warn("smtp disabled, emails will only be logged", "error", err)
	}

	if cfg.PaystackSecretKey == "" {
		logger.Warn("PAYSTACK_SECRET_KEY not set, payments and webhooks will fail")
	}
	gateway := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, cfg.PaystackTimeout)

	txns := &queries.TransactionQueries{DB: db}
	requests := &queries.RequestQueries{DB: db}
	users := &queries.UserQueries{DB: db}
	notes := &queries.NotificationQueries{DB: db}
	prices := &queries.PriceQueries{DB: db, Cache: priceCache, TTL: cfg.PriceCacheTTL}

	scheduler := scheduling.NewScheduler(loc, cfg.ChatSessionLength)
	resolver := pricing.NewResolver(prices)
	notifier := utils.NewNotifier()
	payments := services.NewPaymentService(gateway, txns)

	orders := services.NewOrderService(services.OrderDeps{
		DB:        db,
		Txns:      txns,
		Requests:  requests,
		Users:     users,
		Prices:    resolver,
		Payments:  payments,
		Scheduler: scheduler,
	})
	bookings := services.NewBookingService(services.BookingDeps{
		DB:        db,
		Txns:      txns,
		Requests:  requests,
		Users:     users,
		Prices:    resolver,
		Payments:  payments,
		Scheduler: scheduler,
		Mailer:    mail,
		Realtime:  notifier,
		Grace:     cfg.SweepGrace,
	})
	webhooks := services.NewWebhookService(services.WebhookDeps{
		Secret:    cfg.PaystackSecretKey,
		DB:        db,
		Txns:      txns,
		Requests:  requests,
		Users:     users,
		Scheduler: scheduler,
		Mailer:    mail,
		Realtime:  notifier,
		Admin:     services.NewAdminNotifier(notes, publisher, mail, cfg.AdminEmail),
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  cfg.HttpReadTimeout,
		WriteTimeout: cfg.HttpWriteTimeout,
		ErrorHandler: middleware.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HttpAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(middleware.ContextTimeout(cfg.HttpRequestTimeout))

	routes.RegisterSystemRoutes(app, controllers.NewHealthController(db, notifier))
	routes.RegisterTransactionRoutes(app, controllers.NewOrderController(orders), cfg.JWTSecret)
	routes.RegisterWebhookRoutes(app, controllers.NewWebhookController(webhooks))
	routes.RegisterBookingRoutes(app, controllers.NewBookingController(bookings), cfg.JWTSecret, cfg.CronKey)
	routes.RegisterRealtimeRoutes(app, notifier, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go bookings.RunSweeper(ctx, cfg.SweepInterval)

	go func() {
		if err := app.Listen(cfg.HttpListenAddr); err != nil {
			logger.Error("http server stopped", "error", err)
			stop()
		}
	}()
	logger.Info("server started", "addr", cfg.HttpListenAddr, "timezone", loc.String())

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Error("http shutdown", "error", err)
	}
}
