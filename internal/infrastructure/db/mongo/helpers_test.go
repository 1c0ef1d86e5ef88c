package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	if got, ok := objectID(oid.Hex()); !ok || got != oid {
		t.Fatalf("expected %s to parse", oid.Hex())
	}
	for _, bad := range []string{"", "42", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		if _, ok := objectID(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestReferenceRejectsMalformedIDs(t *testing.T) {
	if _, err := reference("client_id", "nope"); err == nil {
		t.Fatal("expected error")
	} else if _, ok := err.(*domain.ValidationError); !ok {
		t.Fatalf("expected validation error, got %T", err)
	}
}

func TestSearchAnyEscapesInput(t *testing.T) {
	or := searchAny("a.b*", "titre", "requete_initiale")
	if len(or) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(or))
	}
	clause := or[0].(bson.M)
	re := clause["titre"].(primitive.Regex)
	if re.Pattern != `a\.b\*` || re.Options != "i" {
		t.Fatalf("unexpected regex %+v", re)
	}
}

func TestTicketFilter(t *testing.T) {
	dem := primitive.NewObjectID()
	f := ticketFilter(ports.TicketFilter{DemandeurID: dem.Hex(), Status: "nouveau", Search: "vpn"})
	if f["demandeur_id"] != dem || f["status"] != "nouveau" {
		t.Fatalf("unexpected filter %+v", f)
	}
	if _, ok := f["$or"]; !ok {
		t.Fatal("expected search clause")
	}
	if ticketFilter(ports.TicketFilter{ClientID: "not-hex"}) != nil {
		t.Fatal("malformed reference should match nothing")
	}
}

func TestPortabiliteFilterSearchFields(t *testing.T) {
	f := portabiliteFilter(ports.PortabiliteFilter{Search: "12345678"})
	if len(f["$or"].(bson.A)) != 5 {
		t.Fatalf("expected 5 searchable fields, got %+v", f["$or"])
	}
}

func TestTicketDocumentRoundTrip(t *testing.T) {
	agent := primitive.NewObjectID()
	doc := ticketDocument{
		ID:          primitive.NewObjectID(),
		Status:      "ferme",
		ClientID:    primitive.NewObjectID(),
		DemandeurID: primitive.NewObjectID(),
		AgentID:     &agent,
		Fichiers:    []fichierDocument{{Nom: "log.txt", URL: "https://files/log.txt", Taille: 12}},
	}
	got := doc.toDomain()
	if got.AgentID == nil || *got.AgentID != agent.Hex() {
		t.Fatalf("agent id lost: %+v", got.AgentID)
	}
	if got.Status != domain.TicketFerme || len(got.Fichiers) != 1 {
		t.Fatalf("unexpected ticket %+v", got)
	}
	if optionalObjectID(got.AgentID) == nil || *optionalObjectID(got.AgentID) != agent {
		t.Fatal("agent id does not convert back")
	}
}

func TestUpdateDocument_PlainSetWhileOpen(t *testing.T) {
	upd, ok := updateDocument(bson.M{"status": "en_cours"}, nil).(bson.M)
	if !ok {
		t.Fatalf("expected a $set document, got %T", upd)
	}
	set := upd["$set"].(bson.M)
	if set["status"] != "en_cours" {
		t.Fatalf("unexpected $set %+v", set)
	}
	if _, ok := set["date_cloture"]; ok {
		t.Fatal("open update must not touch date_cloture")
	}
}

func TestUpdateDocument_ClosingStampsInSameStatement(t *testing.T) {
	closed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	upd, ok := updateDocument(bson.M{"status": "ferme", "titre": "$where"}, &closed).(mongo.Pipeline)
	if !ok {
		t.Fatalf("expected a pipeline update, got %T", upd)
	}
	if len(upd) != 1 || upd[0][0].Key != "$set" {
		t.Fatalf("expected a single $set stage, got %+v", upd)
	}
	set := upd[0][0].Value.(bson.M)

	if set["status"].(bson.M)["$literal"] != "ferme" {
		t.Fatalf("status not set with the closure: %+v", set["status"])
	}
	if set["titre"].(bson.M)["$literal"] != "$where" {
		t.Fatalf("values must be literal, got %+v", set["titre"])
	}
	ifNull := set["date_cloture"].(bson.M)["$ifNull"].(bson.A)
	if ifNull[0] != "$date_cloture" || ifNull[1] != closed {
		t.Fatalf("date_cloture must keep the first stamp, got %+v", ifNull)
	}
}
