package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/supportdesk/support-system/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

const (
	collectionPrincipals          = "principals"
	collectionClients             = "clients"
	collectionTickets             = "tickets"
	collectionPortabilites        = "portabilites"
	collectionTicketEchanges      = "ticket_echanges"
	collectionPortabiliteEchanges = "portabilite_echanges"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// Store groups the repositories backed by one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, db: db}
}

func (s *Store) Principals() *PrincipalRepository {
	return &PrincipalRepository{col: s.db.Collection(collectionPrincipals)}
}

func (s *Store) Clients() *ClientRepository {
	return &ClientRepository{col: s.db.Collection(collectionClients)}
}

func (s *Store) Tickets() *TicketRepository {
	return &TicketRepository{col: s.db.Collection(collectionTickets)}
}

func (s *Store) Portabilites() *PortabiliteRepository {
	return &PortabiliteRepository{col: s.db.Collection(collectionPortabilites)}
}

func (s *Store) Echanges(thread domain.Thread) *EchangeRepository {
	name := collectionTicketEchanges
	if thread == domain.ThreadPortabilite {
		name = collectionPortabiliteEchanges
	}
	return &EchangeRepository{col: s.db.Collection(name), thread: thread}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
