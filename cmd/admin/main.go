package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/admin"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/config"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/console"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/events/kafka"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/events/logsink"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/events/rabbitmq"
	interfaces "github.com/sheikh-saqib/bank-admin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/ledger"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/logger"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/session"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/storage/memory"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/storage/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("cannot open record store: %v", err)
	}
	defer closeStore()

	publisher := openPublisher(cfg)
	defer publisher.Close()

	guard, err := session.NewGuard(session.Options{
		Secret:          []byte(cfg.SessionSecret),
		TTL:             cfg.SessionTTL,
		AllowConcurrent: cfg.AllowConcurrentSessions,
		BcryptCost:      cfg.BcryptCost,
	})
	if err != nil {
		log.Fatalf("cannot start session guard: %v", err)
	}
	if err := guard.Register(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("cannot register bootstrap admin: %v", err)
	}

	svc := admin.NewService(store, ledger.NewLedger(store), guard, publisher,
		admin.WithAuditTopic(cfg.KafkaAuditTopic),
		admin.WithTransactionLimit(cfg.TransactionListLimit),
	)

	logger.Info("admin portal started", logger.Fields{
		"store": cfg.StoreDriver,
		"audit": cfg.AuditSink,
	})
	if err := console.New(svc, os.Stdin, os.Stdout).Run(ctx); err != nil {
		log.Fatalf("admin portal: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (interfaces.RecordStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		db, err := postgres.Open(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewPostgresRecordStore(db)
		if err := store.EnsureSchema(connectCtx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Println("Database connection established")
		return store, func() { db.Close() }, nil
	default:
		store, err := memory.Open(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// openPublisher picks the audit sink. A broker that cannot be reached at
// startup falls back to the log sink.
func openPublisher(cfg config.Config) interfaces.EventPublisher {
	switch cfg.AuditSink {
	case config.AuditKafka:
		return kafka.NewPublisher(cfg.KafkaBrokers)
	case config.AuditRabbitMQ:
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			logger.Error("rabbitmq unavailable, auditing to log", err, nil)
			return logsink.NewPublisher()
		}
		return p
	default:
		return logsink.NewPublisher()
	}
}
