package consumers

import (
	"context"
	"log/slog"

	"beautybook/internal/config"
	"beautybook/internal/database"
	"beautybook/internal/messaging"
	"beautybook/internal/models"
	"beautybook/internal/repository"
)

const queueGroup = "notifications"

// Subjects every consumer instance subscribes to.
var Subjects = []string{
	models.EventBookingCreated,
	models.EventBookingUpdated,
	models.EventBookingCancelled,
	models.EventBookingDepositPaid,
	models.EventGuestRecordsLinked,
}

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	repos := repository.NewRepositories(db)
	handlers := NewHandlers(repos.Users, LogNotifier{Logger: slog.Default()})

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		handlers: handlers,
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	for _, subject := range Subjects {
		if _, err := cs.nats.SubscribeQueue(subject, queueGroup, cs.handlers.MsgHandler(subject)); err != nil {
			return err
		}
	}

	slog.Info("All consumers started successfully", "subjects", len(Subjects))
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
