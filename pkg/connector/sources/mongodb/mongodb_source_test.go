package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/testutil"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

func mongoConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Input.Format = "mongodb"
	cfg.Input.Mongo.URI = "mongodb://localhost:27017"
	cfg.Input.Mongo.Database = "shop"
	cfg.Input.Mongo.Collection = "orders"
	return cfg
}

func TestFromBSONKeepsFieldOrder(t *testing.T) {
	id, err := primitive.ObjectIDFromHex("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)
	created := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	doc := primitive.D{
		{Key: "_id", Value: id},
		{Key: "total", Value: 19.5},
		{Key: "qty", Value: int32(2)},
		{Key: "created", Value: primitive.NewDateTimeFromTime(created)},
		{Key: "items", Value: primitive.A{
			primitive.D{{Key: "sku", Value: "a-1"}},
			primitive.D{{Key: "sku", Value: "b-2"}},
		}},
		{Key: "note", Value: nil},
		{Key: "meta", Value: primitive.M{"z": true, "a": int64(1)}},
	}

	v, err := fromBSON(doc)
	require.NoError(t, err)
	assert.Equal(t,
		`{"_id": "64b7f0c2a1b2c3d4e5f60718", "total": 19.5, "qty": 2, "created": "2024-05-01T12:30:00Z", `+
			`"items": [{"sku": "a-1"}, {"sku": "b-2"}], "note": null, "meta": {"a": 1, "z": true}}`,
		v.String())
}

func TestFromBSONSpecialTypes(t *testing.T) {
	dec, err := primitive.ParseDecimal128("12.50")
	require.NoError(t, err)
	nan, err := primitive.ParseDecimal128("NaN")
	require.NoError(t, err)

	v, err := fromBSON(primitive.D{
		{Key: "price", Value: dec},
		{Key: "bad", Value: nan},
		{Key: "ts", Value: primitive.Timestamp{T: 10, I: 2}},
		{Key: "bin", Value: primitive.Binary{Data: []byte("hi")}},
		{Key: "re", Value: primitive.Regex{Pattern: "^a", Options: "i"}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"price": 12.50, "bad": "NaN", "ts": {"t": 10, "i": 2}, "bin": "aGk=", "re": "/^a/i"}`,
		v.String())
}

func TestParseFilter(t *testing.T) {
	doc, err := parseFilter(`{"status": "paid", "total": {"$gt": 10}}`)
	require.NoError(t, err)
	require.Len(t, doc, 2)
	assert.Equal(t, "status", doc[0].Key)

	doc, err = parseFilter("")
	require.NoError(t, err)
	assert.Empty(t, doc)

	_, err = parseFilter(`{"status": `)
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeConfig))
}

func TestNewMongoSourceValidates(t *testing.T) {
	cfg := mongoConfig()
	src, err := NewMongoSource(cfg, core.Deps{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	assert.Equal(t, "mongodb", src.Name())
	assert.NoError(t, src.Close(context.Background()), "closing an unconnected source is a no-op")

	cfg.Input.Mongo.Collection = ""
	_, err = NewMongoSource(cfg, core.Deps{})
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeConfig))

	cfg = mongoConfig()
	cfg.Input.Mongo.Filter = "not json"
	_, err = NewMongoSource(cfg, core.Deps{})
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeConfig))
}

// TestMongoSourceLive runs against a live server when TIDIFY_TEST_MONGODB_URI
// is set.
func TestMongoSourceLive(t *testing.T) {
	uri := testutil.IntegrationTest(t, "TIDIFY_TEST_MONGODB_URI")
	ctx := testutil.TestContext(t)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	coll := client.Database("tidify_test").Collection("orders")
	require.NoError(t, coll.Drop(ctx))
	_, err = coll.InsertMany(ctx, []interface{}{
		bson.D{{Key: "_id", Value: 1}, {Key: "name", Value: "Ann"}, {Key: "tags", Value: bson.A{"a", "b"}}},
		bson.D{{Key: "_id", Value: 2}, {Key: "name", Value: "Bob"}},
	})
	require.NoError(t, err)

	cfg := mongoConfig()
	cfg.Input.Mongo.URI = uri
	cfg.Input.Mongo.Database = "tidify_test"
	cfg.Input.Mongo.Filter = `{"name": "Ann"}`

	src, err := NewMongoSource(cfg, core.Deps{Logger: testutil.TestLogger(t)})
	require.NoError(t, err)
	defer src.Close(ctx)

	value, err := src.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[{"_id": 1, "name": "Ann", "tags": ["a", "b"]}]`, value.String())
}
