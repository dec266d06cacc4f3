package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventapi/config"
	"eventapi/models"
)

const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	sqldb.SetMaxOpenConns(20)
	sqldb.SetMaxIdleConns(10)

	if err := CreateTables(ctx, sqldb); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return sqldb, nil
}

// CreateTables is idempotent and runs on every start.
func CreateTables(ctx context.Context, sqldb *sql.DB) error {
	createEventsTable := `
	CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		location TEXT NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		image TEXT NOT NULL DEFAULT '',
		registrations JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := sqldb.ExecContext(ctx, createEventsTable); err != nil {
		return fmt.Errorf("create events table: %w", err)
	}
	return nil
}

// OpenEventStore builds the Event Store selected by cfg.Store.Driver. The
// returned close func releases the underlying connection.
func OpenEventStore(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (models.EventRepository, func(), error) {
	switch cfg.Driver {
	case DriverMemory:
		log.Warn("using in-memory event store; data is lost on restart")
		return models.NewMemoryEventRepository(), func() {}, nil

	case DriverMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		col := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		log.Info("connected to mongo",
			slog.String("database", cfg.MongoDatabase),
			slog.String("collection", cfg.MongoCollection))
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return models.NewMongoEventRepository(col, cfg.Timeout), closeFn, nil

	case DriverPostgres:
		sqldb, err := OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to postgres")
		closeFn := func() { _ = sqldb.Close() }
		return models.NewSQLEventRepository(sqldb, cfg.Timeout), closeFn, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
