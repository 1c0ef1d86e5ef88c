package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes every repository relies on. The unique
// indexes on principals.email and portabilites.numero_portabilite back the
// duplicate errors the repositories report.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	echangeIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "parent_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	plan := map[string][]mongo.IndexModel{
		collectionPrincipals: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		collectionClients: {
			{Keys: bson.D{{Key: "nom_societe", Value: 1}}},
		},
		collectionTickets: {
			{Keys: bson.D{{Key: "demandeur_id", Value: 1}, {Key: "date_creation", Value: -1}}},
			{Keys: bson.D{{Key: "client_id", Value: 1}}},
			{Keys: bson.D{{Key: "agent_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		collectionPortabilites: {
			{Keys: bson.D{{Key: "numero_portabilite", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "demandeur_id", Value: 1}, {Key: "date_creation", Value: -1}}},
			{Keys: bson.D{{Key: "client_id", Value: 1}}},
		},
		collectionTicketEchanges:      echangeIndexes,
		collectionPortabiliteEchanges: echangeIndexes,
	}

	for name, models := range plan {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
