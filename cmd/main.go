package main

import (
	"context"
	"os"

	"github.com/artsense/artsense-server/internal/auth"
	bidapp "github.com/artsense/artsense-server/internal/bidding/application"
	bidhttp "github.com/artsense/artsense-server/internal/bidding/infra/httpapi"
	bidpg "github.com/artsense/artsense-server/internal/bidding/infra/repository/postgres"
	bidws "github.com/artsense/artsense-server/internal/bidding/infra/websocket"
	cataloghttp "github.com/artsense/artsense-server/internal/catalog/infra/httpapi"
	catalogpg "github.com/artsense/artsense-server/internal/catalog/infra/repository/postgres"
	"github.com/artsense/artsense-server/internal/shared/db"
	"github.com/artsense/artsense-server/internal/shared/db/migrations"
	"github.com/artsense/artsense-server/internal/shared/httpserver"
	"github.com/artsense/artsense-server/internal/shared/logger"
	"github.com/artsense/artsense-server/internal/shared/notification"
	"github.com/artsense/artsense-server/internal/shared/websocket"
	userhttp "github.com/artsense/artsense-server/internal/user/infra/httpapi"
	userpg "github.com/artsense/artsense-server/internal/user/infra/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting artsense server...")

	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.GetPostgresDBPool(ctx)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	defer pool.Close()

	issuer, err := auth.NewTokenIssuerFromEnv()
	if err != nil {
		log.Fatal("Token issuer setup failed", zap.Error(err))
	}

	// Fan-out hub and the bidding module wired around it.
	hub := websocket.NewHub()
	go hub.Run(ctx)

	aggStore := bidpg.NewLotAggregateStore(pool)
	ledger := bidpg.NewBidLedger(pool)
	publisher := bidws.NewHubPublisher(hub)
	notifier := notification.NewLogNotifier()

	biddingService := bidapp.NewBiddingService(
		bidapp.NewPlaceBidUseCase(aggStore, ledger, pool, publisher, notifier),
		bidapp.NewGetLotAggregateUseCase(aggStore),
		bidapp.NewBidHistoryUseCase(ledger),
	)

	wsHandler := bidws.NewBiddingWSHandler(biddingService, hub)
	go wsHandler.ListenForMessages(ctx)

	userRepo := userpg.NewUserRepository(pool)

	server := httpserver.NewServer()
	app := server.App()

	bidhttp.NewHandler(biddingService).RegisterRoutes(app)
	bidws.RegisterRoutes(ctx, app, hub, wsHandler)
	userhttp.NewHandler(userRepo, issuer).RegisterRoutes(app)
	cataloghttp.NewHandler(
		catalogpg.NewPhotoRepository(pool),
		catalogpg.NewEventRepository(pool),
		catalogpg.NewInquiryRepository(pool),
		catalogpg.NewLotListingRepository(pool),
		userRepo,
		issuer,
	).RegisterRoutes(app)

	addr := ":" + port()
	if err := server.Start(addr, cancel); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "9000"
}
