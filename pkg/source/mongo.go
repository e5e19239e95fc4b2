package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
	"github.com/matzehuels/kinfolk/pkg/family"
)

// Mongo reads records from a MongoDB collection sorted by created_at, then
// by _id. Documents without an "id" field use their _id.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	name   string
}

// OpenMongo connects to the deployment at uri. The database comes from
// opts.Database, else the URI path, else [DefaultDatabase].
func OpenMongo(ctx context.Context, uri string, opts Options) (*Mongo, error) {
	db := opts.Database
	if db == "" {
		if u, err := url.Parse(uri); err == nil {
			db = strings.Trim(u.Path, "/")
		}
	}
	if db == "" {
		db = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeSourceUnavailable, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, kerrors.Wrap(kerrors.ErrCodeSourceUnavailable, err, "connect to mongodb")
	}

	table := opts.table()
	return &Mongo{
		client: client,
		coll:   client.Database(db).Collection(table),
		name:   fmt.Sprintf("mongodb:%s.%s", db, table),
	}, nil
}

func (m *Mongo) Name() string { return m.name }

func (m *Mongo) Close() error { return m.client.Disconnect(context.Background()) }

type mongoPerson struct {
	OID           any `bson:"_id"`
	family.Person `bson:",inline"`
}

func (m *Mongo) List(ctx context.Context) ([]family.Person, error) {
	sort := bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	cur, err := m.coll.Find(ctx, bson.D{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeSourceUnavailable, err, "query %s", m.name)
	}
	defer cur.Close(ctx)

	var people []family.Person
	for cur.Next(ctx) {
		var doc mongoPerson
		if err := cur.Decode(&doc); err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode document %d of %s", len(people)+1, m.name)
		}
		if doc.ID == "" {
			doc.ID = objectID(doc.OID)
		}
		people = append(people, doc.Person)
	}
	if err := cur.Err(); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeSourceUnavailable, err, "query %s", m.name)
	}
	return people, nil
}

func objectID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
