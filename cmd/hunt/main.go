package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"treasurehunt/internal/env"
	"treasurehunt/internal/hunt"
	"treasurehunt/internal/logging"
	"treasurehunt/internal/progress"
	"treasurehunt/internal/resources"
	"treasurehunt/internal/service"
	"treasurehunt/internal/storage"
	"treasurehunt/pkg/graceful"
	"treasurehunt/pkg/kafkaclient"
)

func main() {
	env.LoadEnv()
	cfg, err := env.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	ctx, cancel := graceful.Context(context.Background(), log)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	handler := hunt.NewHandler(loadStrings(ctx, cfg, log), store, log)

	var publisher *kafkaclient.Publisher
	if cfg.NotificationTopic != "" {
		publisher = kafkaclient.NewPublisher(cfg.NotificationTopic, cfg.KafkaBroker)
		defer publisher.Close()
	}

	log.WithFields(logrus.Fields{
		"broker":   cfg.KafkaBroker,
		"topic":    cfg.EventTopic,
		"group_id": cfg.GroupID,
	}).Info("Connecting to Kafka")

	consumer := kafkaclient.NewConsumer(cfg.EventTopic, cfg.GroupID, cfg.KafkaBroker, log)
	consumer.StartConsuming(ctx)
	defer consumer.Stop()

	events := service.NewIterator(consumer, hunt.DecodeEvent, log)
	for d := range events.Objects(ctx) {
		if err := handleEvent(ctx, handler, publisher, d.Value, log); err != nil {
			// left uncommitted so the event is read again after a restart
			log.WithError(err).WithField("hunter_id", d.Value.HunterID).Error("Failed to handle geofencing event")
			continue
		}
		if err := d.Commit(ctx); err != nil {
			log.WithError(err).Error("Failed to commit offset")
		}
	}

	log.Info("Hunt service exiting")
}

// handleEvent returns an error only for failures worth retrying. Events the
// hunt rejects are logged and count as handled.
func handleEvent(ctx context.Context, handler *hunt.Handler, publisher *kafkaclient.Publisher, ev hunt.GeofencingEvent, log logrus.FieldLogger) error {
	n, err := handler.Handle(ctx, ev)
	switch {
	case errors.Is(err, hunt.ErrIgnored):
		log.WithField("hunter_id", ev.HunterID).Debug(err)
		return nil
	case errors.Is(err, hunt.ErrUnknownGeofence), errors.Is(err, hunt.ErrOutsideFence):
		log.WithField("hunter_id", ev.HunterID).Warn(err)
		return nil
	case err != nil:
		return err
	}

	log.WithFields(logrus.Fields{
		"hunter_id": n.HunterID,
		"kind":      n.Kind,
		"landmark":  n.LandmarkID,
	}).Info(n.Text)

	if publisher != nil {
		if err := publisher.Publish(ctx, n.HunterID, n); err != nil {
			log.WithError(err).Error("Failed to publish notification")
		}
	}
	return nil
}

func openStore(ctx context.Context, cfg env.Config, log logrus.FieldLogger) (progress.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, keeping progress in memory")
		return progress.NewMemoryStore(), func() {}, nil
	}

	pool, err := progress.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store := progress.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

// loadStrings returns the table for cfg.StringsLocale layered over English,
// or English alone when no locale is configured or the table can't be read.
func loadStrings(ctx context.Context, cfg env.Config, log logrus.FieldLogger) resources.Strings {
	english := resources.English()
	if cfg.StringsLocale == "" {
		return english
	}

	s3Service, err := storage.NewS3Service(log)
	if err != nil {
		log.WithError(err).Warn("Falling back to English strings")
		return english
	}
	table, err := s3Service.GetStrings(ctx, cfg.StringsBucket, cfg.StringsLocale)
	if err != nil {
		log.WithError(err).WithField("locale", cfg.StringsLocale).Warn("Falling back to English strings")
		return english
	}
	return table.WithFallback(english)
}
