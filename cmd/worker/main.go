package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	logrus "github.com/sirupsen/logrus"

	"soltracker/internal/control"
	"soltracker/internal/models"
	"soltracker/internal/store"
	"soltracker/pkg/config"
	"soltracker/pkg/enrich"
	"soltracker/pkg/helius"
	"soltracker/pkg/shyft"
	"soltracker/pkg/solscan"
	"soltracker/pkg/stream"
	"soltracker/pkg/swap"
	"soltracker/pkg/tracking"
)

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db := config.InitDB()
	st := store.NewStore(db)

	// Initialize RabbitMQ
	rabbit := config.InitRabbitMQ()
	defer rabbit.Close()

	wsEndpoint := os.Getenv("RPC_WS_ENDPOINT")
	if wsEndpoint == "" {
		logrus.Fatal("RPC_WS_ENDPOINT is required")
	}
	heliusKey := os.Getenv("HELIUS_API_KEY")
	if heliusKey == "" {
		logrus.Fatal("HELIUS_API_KEY is required")
	}

	// Enrichment pipeline
	tokenService := enrich.NewTokenService(
		st,
		shyft.NewClient(os.Getenv("SHYFT_API_KEY")),
		solscan.NewClient(os.Getenv("SOLSCAN_API_KEY")),
		helius.NewClient(heliusKey),
	)
	tokenQueue := enrich.NewTokenQueue(tokenService, st.TokenExists, 0)
	if err := tokenQueue.Start(); err != nil {
		logrus.Fatal("Failed to start token queue: ", err)
	}
	defer tokenQueue.Stop()

	// Wallet aggregation
	walletTracker := tracking.NewWalletTracker(st, tokenService.ShouldSkip)

	// Persistence sink fed from the stream loop
	sink := stream.NewSink(1024, 4,
		func(event *swap.Event) {
			if err := st.SaveTransaction(&models.Transaction{
				TransactionID: event.TransactionID,
				Platform:      string(event.Platform),
				Type:          string(event.Type),
				MintFrom:      event.MintFrom,
				MintTo:        event.MintTo,
				InAmount:      event.InAmount,
				OutAmount:     event.OutAmount,
				FeePayer:      event.FeePayer,
				Slot:          event.Slot,
			}); err != nil {
				logrus.Errorf("failed to persist swap %s: %v", event.TransactionID, err)
			}
		},
		func(event *swap.Event) {
			if err := walletTracker.TrackWalletToken(event); err != nil {
				logrus.Errorf("failed to aggregate swap %s: %v", event.TransactionID, err)
			}
		},
		func(event *swap.Event) {
			for _, mint := range []string{event.MintFrom, event.MintTo} {
				if !tokenService.ShouldSkip(mint) {
					tokenQueue.AddToken(mint)
				}
			}
		},
	)
	defer sink.Close()

	// Stream pipeline: subscribe, normalize, enqueue
	dispatcher := swap.NewDispatcher(nil)
	tracker := stream.NewTracker(
		stream.NewWSClient(wsEndpoint),
		func(tx *swap.RawTransaction) {
			if event := dispatcher.Dispatch(tx); event != nil {
				sink.Enqueue(event)
			}
		},
		stream.DefaultConfig(),
	)

	// Control queue from the API process
	msgConsumer, err := config.NewConsumer(rabbit, control.Queue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	// commands describe desired state; ones queued while the worker was
	// down are stale by the time it restarts
	if err := config.PurgeQueue(rabbit, control.Queue); err != nil {
		logrus.Warnf("Failed to purge stale control messages: %v", err)
	}

	go func() {
		logrus.Info("Wallet tracking worker started, waiting for commands...")
		err := msgConsumer.Consume(func(body []byte) error {
			msg, err := control.Parse(body)
			if err != nil {
				logrus.Errorf("Dropping malformed control message: %v", err)
				return nil // do not requeue garbage
			}

			switch msg.Command {
			case control.CmdSetAddresses:
				tracker.SetAddresses(msg.Addresses)
				logrus.Infof("Tracked address set replaced: %d addresses", len(msg.Addresses))
			case control.CmdStartTracking:
				if len(msg.Addresses) > 0 {
					tracker.SetAddresses(msg.Addresses)
				}
				if tracker.IsRunning() {
					if err := tracker.Stop(); err != nil {
						logrus.Errorf("Failed to restart tracking: %v", err)
					}
				}
				if err := tracker.Start(); err != nil {
					logrus.Errorf("Failed to start tracking: %v", err)
				}
			case control.CmdStopTracking:
				if err := tracker.Stop(); err != nil {
					logrus.Errorf("Failed to stop tracking: %v", err)
				}
			}
			return nil
		})
		if err != nil {
			log.Fatal("Failed to start consumer: ", err)
		}
	}()

	// Block until shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down worker...")
	if tracker.IsRunning() {
		if err := tracker.Stop(); err != nil {
			logrus.Errorf("Failed to stop tracker: %v", err)
		}
	}
}
