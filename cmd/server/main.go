package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rds "github.com/redis/go-redis/v9"

	"github.com/dutchhouse/auction/pkg/cache"
	"github.com/dutchhouse/auction/pkg/clock"
	"github.com/dutchhouse/auction/pkg/config"
	"github.com/dutchhouse/auction/pkg/database"
	"github.com/dutchhouse/auction/pkg/ledger"
	"github.com/dutchhouse/auction/pkg/limiter"
	"github.com/dutchhouse/auction/pkg/model"
	"github.com/dutchhouse/auction/pkg/queue"
	"github.com/dutchhouse/auction/pkg/server"
	"github.com/dutchhouse/auction/pkg/service"
)

const gracefulTimeout = time.Second * 15

func main() {
	cfg := config.New()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	db, closeDB, err := database.New(cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		log.Fatalf("### Can't init database: %v", err)
	}
	defer closeDB()

	redis, closeRedis, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisUser, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("### Can't init redis: %v", err)
	}
	defer closeRedis()

	lotDB, err := database.NewLotDatabase(db)
	if err != nil {
		log.Fatalf("### Can't init lots repository: %v", err)
	}

	eventsDB := database.NewEventBatchingDatabase(db, cfg.EventsBatchSize, cfg.EventsFlushInterval)
	defer eventsDB.Close()

	var sink ledger.EventSink = eventsDB

	if cfg.PublishEvents {
		publisher, closePublisher, err := queue.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("### Can't init rabbitmq publisher: %v", err)
		}
		defer closePublisher()

		sink = ledger.Fanout{eventsDB, publisher}
	}

	accounts := &database.AccountDatabase{DB: db}
	state := &database.StateDatabase{DB: db}

	led := ledger.New(model.AccountID(cfg.Owner), clock.System{}, accounts, sink)
	if err := restoreLedger(led, lotDB, state); err != nil {
		log.Fatalf("### Can't restore ledger state: %v", err)
	}

	auctionSvc := composeAuction(led, lotDB, state, redis, cfg)
	eventsSvc := &service.EventsGeneric{EventRepository: &database.EventDatabase{DB: db}}
	accountSvc := &service.AccountGeneric{AccountRepository: accounts}

	srv, err := server.New(cfg.ListenAddr, auctionSvc, eventsSvc, accountSvc)
	if err != nil {
		log.Fatalf("### Can't create server: %v", err)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("### Can't listen and serve: %v", err)
		}
	}()
	slog.Info(fmt.Sprintf("HTTP server listening at %s", srv.Addr))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()

	srv.Shutdown(ctx)
}

func restoreLedger(led *ledger.Ledger, lots database.LotRepository, state database.StateRepository) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	allLots, err := lots.All(ctx)
	if err != nil {
		return fmt.Errorf("can't load lots: %w", err)
	}

	feeBalance, pending, err := state.Load(ctx)
	if err != nil {
		return fmt.Errorf("can't load ledger state: %w", err)
	}

	led.Restore(ledger.Snapshot{
		Lots:           allLots,
		FeeBalance:     feeBalance,
		PendingRefunds: pending,
	})

	slog.Info("ledger state restored",
		slog.Int("lots", len(allLots)),
		slog.Uint64("fee_balance", feeBalance),
		slog.Int("pending_refunds", len(pending)),
	)

	return nil
}

func composeAuction(led *ledger.Ledger, lots *database.LotDatabase, state *database.StateDatabase, redis *rds.Client, cfg *config.Config) service.Auction {
	var auction service.Auction = &service.AuctionGeneric{
		Ledger: led,
		Lots:   lots,
		State:  state,
	}

	if cfg.CacheLots {
		auction = &service.AuctionCaching{Auction: auction, Redis: redis, TTL: cfg.LotCacheTTL}
	}

	auction = &service.AuctionLimiting{Auction: auction, Limiter: &limiter.Limiter{Redis: redis, Limit: cfg.CreateLimit}, FailOpen: cfg.LimiterFailOpen}
	auction = &service.AuctionLogging{Auction: auction}

	return auction
}

func parseLogLevel(lvl string) slog.Level {
	switch lvl {
	case slog.LevelDebug.String():
		return slog.LevelDebug
	case slog.LevelInfo.String():
		return slog.LevelInfo
	case slog.LevelWarn.String():
		return slog.LevelWarn
	case slog.LevelError.String():
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
