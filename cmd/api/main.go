package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tableside/internal/config"
	"tableside/internal/db"
	"tableside/internal/httpserver"
	"tableside/internal/notify"
	"tableside/internal/realtime"
	catalogrepo "tableside/internal/repository/catalog"
	couponrepo "tableside/internal/repository/coupon"
	loyaltyrepo "tableside/internal/repository/loyalty"
	orderrepo "tableside/internal/repository/order"
	storerepo "tableside/internal/repository/store"
	catalogsvc "tableside/internal/service/catalog"
	checkoutsvc "tableside/internal/service/checkout"
	couponsvc "tableside/internal/service/coupon"
	loyaltysvc "tableside/internal/service/loyalty"
	ordersvc "tableside/internal/service/order"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	storeRepo := storerepo.NewPostgres(dbpool)
	st, err := storeRepo.GetByKey(ctx, cfg.StoreKey)
	if err != nil {
		logger.Fatalf("resolve store %q (run migrate and seed first): %v", cfg.StoreKey, err)
	}

	hub := realtime.NewHub()
	listener := realtime.NewListener(dbpool, hub, logger)
	go listener.Run(ctx)

	catalogService := catalogsvc.New(catalogrepo.NewPostgres(dbpool))
	couponService := couponsvc.New(couponrepo.NewPostgres(dbpool))
	loyaltyRepo := loyaltyrepo.NewPostgres(dbpool)
	loyaltyService := loyaltysvc.New(loyaltyRepo)
	orderRepo := orderrepo.NewPostgres(dbpool)
	orderService := ordersvc.New(
		orderRepo,
		&notify.LogPrinter{Logger: logger},
		&notify.LogNotifier{Logger: logger},
		hub,
		logger,
		st.AutoPrint,
		st.PrintDestination,
	)
	checkoutService := checkoutsvc.New(orderService, couponService, loyaltyService, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		StoreRepo:   storeRepo,
		Catalog:     catalogService,
		Coupons:     couponService,
		Loyalty:     loyaltyService,
		Rewards:     loyaltyRepo,
		Orders:      orderService,
		History:     orderRepo,
		Checkout:    checkoutService,
		Hub:         hub,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
