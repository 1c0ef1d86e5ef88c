package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type PortabiliteRepository struct {
	col *mongo.Collection
}

type portabiliteDocument struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty"`
	NumeroPortabilite       string             `bson:"numero_portabilite"`
	ClientID                primitive.ObjectID `bson:"client_id"`
	DemandeurID             primitive.ObjectID `bson:"demandeur_id"`
	NumerosPortes           string             `bson:"numeros_portes"`
	NomClient               *string            `bson:"nom_client"`
	PrenomClient            *string            `bson:"prenom_client"`
	EmailClient             *string            `bson:"email_client"`
	SiretClient             *string            `bson:"siret_client"`
	Adresse                 *string            `bson:"adresse"`
	CodePostal              *string            `bson:"code_postal"`
	Ville                   *string            `bson:"ville"`
	OperateurCedant         *string            `bson:"operateur_cedant"`
	Status                  string             `bson:"status"`
	FiabilisationDemandee   bool               `bson:"fiabilisation_demandee"`
	DemandeSignee           bool               `bson:"demande_signee"`
	DatePortabiliteDemandee *time.Time         `bson:"date_portabilite_demandee"`
	DateCreation            time.Time          `bson:"date_creation"`
	DateModification        time.Time          `bson:"date_modification"`
	DateCloture             *time.Time         `bson:"date_cloture"`
}

func (d *portabiliteDocument) toDomain() *domain.Portabilite {
	return &domain.Portabilite{
		ID:                      d.ID.Hex(),
		NumeroPortabilite:       d.NumeroPortabilite,
		ClientID:                d.ClientID.Hex(),
		DemandeurID:             d.DemandeurID.Hex(),
		NumerosPortes:           d.NumerosPortes,
		NomClient:               d.NomClient,
		PrenomClient:            d.PrenomClient,
		EmailClient:             d.EmailClient,
		SiretClient:             d.SiretClient,
		Adresse:                 d.Adresse,
		CodePostal:              d.CodePostal,
		Ville:                   d.Ville,
		OperateurCedant:         d.OperateurCedant,
		Status:                  domain.PortabiliteStatus(d.Status),
		FiabilisationDemandee:   d.FiabilisationDemandee,
		DemandeSignee:           d.DemandeSignee,
		DatePortabiliteDemandee: d.DatePortabiliteDemandee,
		DateCreation:            d.DateCreation,
		DateModification:        d.DateModification,
		DateCloture:             d.DateCloture,
	}
}

func (r *PortabiliteRepository) ExistsNumero(ctx context.Context, numero string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"numero_portabilite": numero}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("probe numero: %w", err)
	}
	return n > 0, nil
}

// Create inserts the request. The unique index on numero_portabilite turns a
// concurrent claim of the same numero into domain.ErrDuplicateNumero.
func (r *PortabiliteRepository) Create(ctx context.Context, p *domain.Portabilite) error {
	clientID, err := reference("client_id", p.ClientID)
	if err != nil {
		return err
	}
	demandeurID, err := reference("demandeur_id", p.DemandeurID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, portabiliteDocument{
		NumeroPortabilite:       p.NumeroPortabilite,
		ClientID:                clientID,
		DemandeurID:             demandeurID,
		NumerosPortes:           p.NumerosPortes,
		NomClient:               p.NomClient,
		PrenomClient:            p.PrenomClient,
		EmailClient:             p.EmailClient,
		SiretClient:             p.SiretClient,
		Adresse:                 p.Adresse,
		CodePostal:              p.CodePostal,
		Ville:                   p.Ville,
		OperateurCedant:         p.OperateurCedant,
		Status:                  string(p.Status),
		FiabilisationDemandee:   p.FiabilisationDemandee,
		DemandeSignee:           p.DemandeSignee,
		DatePortabiliteDemandee: p.DatePortabiliteDemandee,
		DateCreation:            p.DateCreation,
		DateModification:        p.DateModification,
		DateCloture:             p.DateCloture,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateNumero
		}
		return fmt.Errorf("insert portabilite: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *PortabiliteRepository) FindByID(ctx context.Context, id string) (*domain.Portabilite, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrPortabiliteNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc portabiliteDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPortabiliteNotFound
		}
		return nil, fmt.Errorf("find portabilite: %w", err)
	}
	return doc.toDomain(), nil
}

func portabiliteFilter(f ports.PortabiliteFilter) bson.M {
	filter := bson.M{}
	if f.DemandeurID != "" {
		oid, ok := objectID(f.DemandeurID)
		if !ok {
			return nil
		}
		filter["demandeur_id"] = oid
	}
	if f.ClientID != "" {
		oid, ok := objectID(f.ClientID)
		if !ok {
			return nil
		}
		filter["client_id"] = oid
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		filter["$or"] = searchAny(f.Search,
			"numero_portabilite", "nom_client", "prenom_client", "email_client", "siret_client")
	}
	return filter
}

func (r *PortabiliteRepository) List(ctx context.Context, f ports.PortabiliteFilter) ([]*domain.Portabilite, int64, error) {
	filter := portabiliteFilter(f)
	if filter == nil {
		return []*domain.Portabilite{}, 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count portabilites: %w", err)
	}
	cur, err := r.col.Find(ctx, filter, pageOptions(f.Page))
	if err != nil {
		return nil, 0, fmt.Errorf("list portabilites: %w", err)
	}
	var docs []portabiliteDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode portabilites: %w", err)
	}

	out := make([]*domain.Portabilite, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

// Update never writes numero_portabilite or demandeur_id.
func (r *PortabiliteRepository) Update(ctx context.Context, p *domain.Portabilite) (*domain.Portabilite, error) {
	oid, ok := objectID(p.ID)
	if !ok {
		return nil, domain.ErrPortabiliteNotFound
	}
	clientID, err := reference("client_id", p.ClientID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, updateDocument(bson.M{
		"client_id":                 clientID,
		"numeros_portes":            p.NumerosPortes,
		"nom_client":                p.NomClient,
		"prenom_client":             p.PrenomClient,
		"email_client":              p.EmailClient,
		"siret_client":              p.SiretClient,
		"adresse":                   p.Adresse,
		"code_postal":               p.CodePostal,
		"ville":                     p.Ville,
		"operateur_cedant":          p.OperateurCedant,
		"status":                    string(p.Status),
		"fiabilisation_demandee":    p.FiabilisationDemandee,
		"demande_signee":            p.DemandeSignee,
		"date_portabilite_demandee": p.DatePortabiliteDemandee,
		"date_modification":         p.DateModification,
	}, p.DateCloture))
	if err != nil {
		return nil, fmt.Errorf("update portabilite: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrPortabiliteNotFound
	}
	return r.FindByID(ctx, p.ID)
}

func (r *PortabiliteRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrPortabiliteNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete portabilite: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPortabiliteNotFound
	}
	return nil
}

func (r *PortabiliteRepository) CountByClient(ctx context.Context, clientID string) (int64, error) {
	return countRef(ctx, r.col, "client_id", clientID)
}
