package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rakhulsr/storefront/app/configs"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/Rakhulsr/storefront/app/routes"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/Rakhulsr/storefront/app/utils/format"
	"github.com/Rakhulsr/storefront/app/utils/renderer"
	"github.com/Rakhulsr/storefront/app/utils/sessions"
)

const shutdownTimeout = 15 * time.Second

func notifiers(env configs.ENV, userRepo repositories.UserRepository) (services.Notifier, func()) {
	var list services.MultiNotifier
	closeFn := func() {}

	if len(env.KafkaBrokers) > 0 {
		kafkaNotifier := services.NewKafkaNotifier(env.KafkaBrokers, env.KafkaTopic)
		list = append(list, kafkaNotifier)
		closeFn = func() {
			if err := kafkaNotifier.Close(); err != nil {
				log.Printf("WARNING: failed to close kafka writer: %v", err)
			}
		}
		log.Printf("✅ Order events publish to kafka topic %s.", env.KafkaTopic)
	}

	if env.EmailHost != "" {
		mailer := services.NewMailer(services.Config{
			Host:     env.EmailHost,
			Port:     env.EmailPort,
			Username: env.EmailUsername,
			Password: env.EmailPassword,
			From:     env.EmailFrom,
		})
		list = append(list, services.NewMailNotifier(mailer, userRepo, env.AdminEmail))
		log.Println("✅ Order emails enabled.")
	}

	if len(list) == 0 {
		return services.NoopNotifier{}, closeFn
	}
	return list, closeFn
}

func serve(ctx context.Context, env configs.ENV) error {
	format.SetCurrencySymbol(env.CurrencySymbol)

	keys, err := configs.LoadSessionKeys(env)
	if err != nil {
		return err
	}

	db, err := configs.OpenConnection(env)
	if err != nil {
		return fmt.Errorf("DB connection failed: %w", err)
	}
	log.Println("✅ Database connected.")

	redisClient, err := configs.NewRedisClient(ctx, env)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Println("✅ Redis connected.")

	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	addressRepo := repositories.NewGormAddressRepository(db)
	cartRepo := repositories.NewRedisCartRepository(redisClient, env.CartTTL())

	notifier, closeNotifier := notifiers(env, userRepo)
	defer closeNotifier()

	clients := configs.NewMidtransClients(env)
	gateway := services.NewMidtransGateway(clients.Snap, clients.Core)

	settings := services.NewSettingsService(repositories.NewSettingsRepository(db), categoryRepo, productRepo)
	carts := services.NewCartService(cartRepo, productRepo, settings)
	orders := services.NewOrderService(db, repositories.NewOrderRepository(db), repositories.NewOrderItemRepository(db),
		productRepo, addressRepo, cartRepo, settings, notifier)
	orders.SetTransactionLookup(gateway)

	router := routes.NewRouter(routes.Dependencies{
		Render:       renderer.New(env.IsProduction()),
		Sessions:     sessions.NewCookieSessionStore(env.IsProduction(), keys.AuthKey, keys.EncKey),
		UserRepo:     userRepo,
		Settings:     settings,
		Catalog:      services.NewCatalogService(productRepo, settings),
		Carts:        carts,
		Orders:       orders,
		Checkout:     services.NewCheckoutService(gateway, orders, carts, userRepo, addressRepo, env.AppURL+"/orders"),
		Payments:     services.NewPaymentService(gateway, orders),
		Auth:         services.NewAuthService(userRepo, settings),
		Addresses:    services.NewAddressService(addressRepo),
		CSRFKey:      keys.AuthKey[:32],
		SecureCookie: env.IsProduction(),
	})

	server := &http.Server{
		Addr:              env.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Println("INFO: shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
