package mongo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// objectID parses a hex identifier. Malformed IDs cannot match any document,
// so callers treat !ok as not found.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func optionalObjectID(id *string) *primitive.ObjectID {
	if id == nil {
		return nil
	}
	oid, ok := objectID(*id)
	if !ok {
		return nil
	}
	return &oid
}

func optionalHex(oid *primitive.ObjectID) *string {
	if oid == nil {
		return nil
	}
	s := oid.Hex()
	return &s
}

// searchAny builds a case-insensitive substring match over fields.
func searchAny(term string, fields ...string) bson.A {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return or
}

func pageOptions(req domain.PageRequest) *options.FindOptions {
	req = req.Normalize()
	return options.Find().
		SetSort(bson.D{{Key: "date_creation", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(req.Skip()).
		SetLimit(int64(req.Limit))
}

// reference parses a foreign key that must be well formed.
func reference(field, id string) (primitive.ObjectID, error) {
	oid, ok := objectID(id)
	if !ok {
		return primitive.NilObjectID, domain.Invalid(field, "is not a valid identifier")
	}
	return oid, nil
}

// countRef counts documents whose field references id. A malformed id
// references nothing.
func countRef(ctx context.Context, col *mongo.Collection, field, id string) (int64, error) {
	oid, ok := objectID(id)
	if !ok {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return col.CountDocuments(ctx, bson.M{field: oid})
}

// updateDocument builds a single-statement update for fields. With closedAt
// set it becomes a pipeline update that stamps date_cloture only when it is
// still null, so status and closure date land together and the first stamp
// survives. Values are wrapped in $literal since pipeline stages would read
// strings starting with "$" as field paths.
func updateDocument(fields bson.M, closedAt *time.Time) interface{} {
	if closedAt == nil {
		return bson.M{"$set": fields}
	}
	set := make(bson.M, len(fields)+1)
	for k, v := range fields {
		set[k] = bson.M{"$literal": v}
	}
	set["date_cloture"] = bson.M{"$ifNull": bson.A{"$date_cloture", *closedAt}}
	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}
