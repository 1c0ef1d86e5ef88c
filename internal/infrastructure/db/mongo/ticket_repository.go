package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type TicketRepository struct {
	col *mongo.Collection
}

type fichierDocument struct {
	Nom      string `bson:"nom"`
	URL      string `bson:"url"`
	Taille   int64  `bson:"taille"`
	TypeMime string `bson:"type_mime,omitempty"`
}

type ticketDocument struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty"`
	Titre            string              `bson:"titre"`
	Status           string              `bson:"status"`
	Priorite         string              `bson:"priorite"`
	ClientID         primitive.ObjectID  `bson:"client_id"`
	DemandeurID      primitive.ObjectID  `bson:"demandeur_id"`
	AgentID          *primitive.ObjectID `bson:"agent_id"`
	RequeteInitiale  string              `bson:"requete_initiale"`
	Fichiers         []fichierDocument   `bson:"fichiers"`
	DateCreation     time.Time           `bson:"date_creation"`
	DateModification time.Time           `bson:"date_modification"`
	DateFinPrevue    *time.Time          `bson:"date_fin_prevue"`
	DateCloture      *time.Time          `bson:"date_cloture"`
}

func fichierDocuments(in []domain.Fichier) []fichierDocument {
	out := make([]fichierDocument, 0, len(in))
	for _, f := range in {
		out = append(out, fichierDocument{Nom: f.Nom, URL: f.URL, Taille: f.Taille, TypeMime: f.TypeMime})
	}
	return out
}

func (d *ticketDocument) toDomain() *domain.Ticket {
	fichiers := make([]domain.Fichier, 0, len(d.Fichiers))
	for _, f := range d.Fichiers {
		fichiers = append(fichiers, domain.Fichier{Nom: f.Nom, URL: f.URL, Taille: f.Taille, TypeMime: f.TypeMime})
	}
	return &domain.Ticket{
		ID:               d.ID.Hex(),
		Titre:            d.Titre,
		Status:           domain.TicketStatus(d.Status),
		Priorite:         domain.TicketPriorite(d.Priorite),
		ClientID:         d.ClientID.Hex(),
		DemandeurID:      d.DemandeurID.Hex(),
		AgentID:          optionalHex(d.AgentID),
		RequeteInitiale:  d.RequeteInitiale,
		Fichiers:         fichiers,
		DateCreation:     d.DateCreation,
		DateModification: d.DateModification,
		DateFinPrevue:    d.DateFinPrevue,
		DateCloture:      d.DateCloture,
	}
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	clientID, err := reference("client_id", t.ClientID)
	if err != nil {
		return err
	}
	demandeurID, err := reference("demandeur_id", t.DemandeurID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, ticketDocument{
		Titre:            t.Titre,
		Status:           string(t.Status),
		Priorite:         string(t.Priorite),
		ClientID:         clientID,
		DemandeurID:      demandeurID,
		AgentID:          optionalObjectID(t.AgentID),
		RequeteInitiale:  t.RequeteInitiale,
		Fichiers:         fichierDocuments(t.Fichiers),
		DateCreation:     t.DateCreation,
		DateModification: t.DateModification,
		DateFinPrevue:    t.DateFinPrevue,
		DateCloture:      t.DateCloture,
	})
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	t.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrTicketNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc ticketDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return doc.toDomain(), nil
}

// ticketFilter returns nil when a reference in f is malformed and so cannot
// match anything.
func ticketFilter(f ports.TicketFilter) bson.M {
	filter := bson.M{}
	for field, id := range map[string]string{
		"demandeur_id": f.DemandeurID,
		"client_id":    f.ClientID,
		"agent_id":     f.AgentID,
	} {
		if id == "" {
			continue
		}
		oid, ok := objectID(id)
		if !ok {
			return nil
		}
		filter[field] = oid
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		filter["$or"] = searchAny(f.Search, "titre", "requete_initiale")
	}
	return filter
}

func (r *TicketRepository) List(ctx context.Context, f ports.TicketFilter) ([]*domain.Ticket, int64, error) {
	filter := ticketFilter(f)
	if filter == nil {
		return []*domain.Ticket{}, 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}
	cur, err := r.col.Find(ctx, filter, pageOptions(f.Page))
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	var docs []ticketDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode tickets: %w", err)
	}

	out := make([]*domain.Ticket, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

// Update writes the mutable fields and, when closing, stamps date_cloture in
// the same statement. The first closure wins under concurrent writers.
func (r *TicketRepository) Update(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	oid, ok := objectID(t.ID)
	if !ok {
		return nil, domain.ErrTicketNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, updateDocument(bson.M{
		"titre":             t.Titre,
		"status":            string(t.Status),
		"priorite":          string(t.Priorite),
		"agent_id":          optionalObjectID(t.AgentID),
		"requete_initiale":  t.RequeteInitiale,
		"fichiers":          fichierDocuments(t.Fichiers),
		"date_modification": t.DateModification,
		"date_fin_prevue":   t.DateFinPrevue,
	}, t.DateCloture))
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrTicketNotFound
	}
	return r.FindByID(ctx, t.ID)
}

func (r *TicketRepository) CountByClient(ctx context.Context, clientID string) (int64, error) {
	return countRef(ctx, r.col, "client_id", clientID)
}
