package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// EchangeRepository stores one thread kind in its own collection.
type EchangeRepository struct {
	col    *mongo.Collection
	thread domain.Thread
}

type echangeDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ParentID   primitive.ObjectID `bson:"parent_id"`
	AuteurID   primitive.ObjectID `bson:"auteur_id"`
	AuteurType string             `bson:"auteur_type"`
	Message    string             `bson:"message"`
	CreatedAt  time.Time          `bson:"created_at"`
}

// echangeRow is an echange joined with its author.
type echangeRow struct {
	echangeDocument `bson:",inline"`
	Auteur          *principalDocument `bson:"auteur,omitempty"`
}

func (r *EchangeRepository) toDomain(row *echangeRow) *domain.Echange {
	e := &domain.Echange{
		ID:         row.ID.Hex(),
		Thread:     r.thread,
		ParentID:   row.ParentID.Hex(),
		AuteurID:   row.AuteurID.Hex(),
		AuteurType: domain.Role(row.AuteurType),
		Message:    row.Message,
		CreatedAt:  row.CreatedAt,
	}
	if row.Auteur != nil {
		e.AuteurNom = row.Auteur.toDomain().DisplayName()
	}
	return e
}

func (r *EchangeRepository) Create(ctx context.Context, e *domain.Echange) error {
	parentID, err := reference("parent_id", e.ParentID)
	if err != nil {
		return err
	}
	auteurID, err := reference("auteur_id", e.AuteurID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, echangeDocument{
		ParentID:   parentID,
		AuteurID:   auteurID,
		AuteurType: string(e.AuteurType),
		Message:    e.Message,
		CreatedAt:  e.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert echange: %w", err)
	}
	e.ID = res.InsertedID.(primitive.ObjectID).Hex()
	e.Thread = r.thread
	return nil
}

// joined runs match then resolves auteur_nom against the principals collection.
func (r *EchangeRepository) joined(ctx context.Context, match bson.M) ([]*domain.Echange, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionPrincipals,
			"localField":   "auteur_id",
			"foreignField": "_id",
			"as":           "auteur",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$auteur", "preserveNullAndEmptyArrays": true}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate echanges: %w", err)
	}
	var rows []echangeRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode echanges: %w", err)
	}

	out := make([]*domain.Echange, 0, len(rows))
	for i := range rows {
		out = append(out, r.toDomain(&rows[i]))
	}
	return out, nil
}

func (r *EchangeRepository) ListByParent(ctx context.Context, parentID string) ([]*domain.Echange, error) {
	oid, ok := objectID(parentID)
	if !ok {
		return []*domain.Echange{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.joined(ctx, bson.M{"parent_id": oid})
}

func (r *EchangeRepository) FindByID(ctx context.Context, id string) (*domain.Echange, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrEchangeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items, err := r.joined(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEchangeNotFound
	}
	return items[0], nil
}

func (r *EchangeRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrEchangeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete echange: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEchangeNotFound
	}
	return nil
}

func (r *EchangeRepository) DeleteByParent(ctx context.Context, parentID string) (int64, error) {
	oid, ok := objectID(parentID)
	if !ok {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"parent_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete echanges: %w", err)
	}
	return res.DeletedCount, nil
}
