package cli

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/commuteplanner/planner/internal/core/ports"
	mongostore "github.com/commuteplanner/planner/internal/infrastructure/db/mongo"
	redisstore "github.com/commuteplanner/planner/internal/infrastructure/db/redis"
	"github.com/commuteplanner/planner/internal/infrastructure/email"
	"github.com/commuteplanner/planner/internal/infrastructure/identity"
	"github.com/commuteplanner/planner/internal/pkg/config"
	"github.com/commuteplanner/planner/pkg/logger"
)

// connectMongo opens the database and makes sure the indexes the
// repositories rely on exist.
func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := mongostore.NewDirectoryRepository(db).EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("directory indexes: %w", err)
	}
	if err := mongostore.NewCommuterRepository(db).EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("commuter indexes: %w", err)
	}
	return client, db, nil
}

func connectRedis(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	return redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// newMailer returns the stub in test mode and the SparkPost gateway
// otherwise.
func newMailer(cfg *config.Config, log zerolog.Logger) (ports.Mailer, error) {
	if cfg.IsTest() {
		log.Info().Msg("email test mode: messages are not sent")
		return email.NewStubMailer(), nil
	}
	if cfg.Email.SparkPostKey == "" {
		return nil, fmt.Errorf("SPARKPOST_API_KEY is required outside test mode")
	}

	transmitter, err := email.NewSparkPostTransmitter(email.SparkPostConfig{
		APIKey:  cfg.Email.SparkPostKey,
		BaseURL: cfg.Email.SparkPostBaseURL,
	})
	if err != nil {
		return nil, err
	}

	cache := email.NewTemplateCache(email.NewFileLoader(cfg.Email.TemplateDir))
	return email.NewGateway(cache, transmitter, email.Sender{
		Email: cfg.Email.FromEmail,
		Name:  cfg.Email.FromName,
	}, logger.Component("email")), nil
}

func newIdentityProvider(cfg *config.Config) *identity.KratosProvider {
	return identity.NewKratosProvider(identity.Config{
		PublicURL: cfg.Kratos.PublicURL,
		AdminURL:  cfg.Kratos.AdminURL,
		SchemaID:  cfg.Kratos.SchemaID,
		Timeout:   cfg.Kratos.Timeout,
	})
}
