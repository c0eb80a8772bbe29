// Package mongodb provides a source connector that reads a MongoDB
// collection as a sequence of documents.
package mongodb

import (
	"context"
	"encoding/base64"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/base"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// MongoSource reads the documents of one collection matching a filter.
type MongoSource struct {
	*base.BaseConnector

	cfg    config.MongoConfig
	retry  *base.RetryPolicy
	client *mongo.Client
}

// NewMongoSource creates a mongodb source. The connection is opened by
// Read.
func NewMongoSource(cfg *config.Config, deps core.Deps) (core.Source, error) {
	if err := cfg.Input.Mongo.Validate(); err != nil {
		return nil, err
	}
	if _, err := parseFilter(cfg.Input.Mongo.Filter); err != nil {
		return nil, err
	}
	b := base.NewBaseConnector("mongodb", core.ConnectorTypeSource, deps.Logger)
	return &MongoSource{
		BaseConnector: b,
		cfg:           cfg.Input.Mongo,
		retry:         base.ConnectRetryPolicy(cfg.Timeouts.Connection, b.GetLogger()),
	}, nil
}

// Read connects, runs the query and decodes every document. Field order is
// preserved; ObjectIDs become hex strings and dates RFC 3339 strings.
func (s *MongoSource) Read(ctx context.Context) (nested.Value, error) {
	if err := s.connect(ctx); err != nil {
		return nested.Value{}, err
	}

	filter, err := parseFilter(s.cfg.Filter)
	if err != nil {
		return nested.Value{}, err
	}

	findOpts := options.Find()
	if s.cfg.Limit > 0 {
		findOpts.SetLimit(s.cfg.Limit)
	}

	coll := s.client.Database(s.cfg.Database).Collection(s.cfg.Collection)
	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nested.Value{}, tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "failed to query collection").
			WithDetail("collection", s.cfg.Collection)
	}
	defer cursor.Close(ctx)

	var docs []nested.Value
	for cursor.Next(ctx) {
		var doc primitive.D
		if err := cursor.Decode(&doc); err != nil {
			return nested.Value{}, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to decode document").
				WithDetail("document", len(docs))
		}
		v, err := fromBSON(doc)
		if err != nil {
			return nested.Value{}, err
		}
		docs = append(docs, v)
	}
	if err := cursor.Err(); err != nil {
		return nested.Value{}, tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "cursor failed").
			WithDetail("collection", s.cfg.Collection)
	}

	s.GetLogger().Info("read collection",
		zap.String("database", s.cfg.Database),
		zap.String("collection", s.cfg.Collection),
		zap.Int("documents", len(docs)))
	return nested.Seq(docs...), nil
}

// Close disconnects the client if Read connected it.
func (s *MongoSource) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	if err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "failed to disconnect from MongoDB")
	}
	return nil
}

func (s *MongoSource) connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}

	return s.retry.Execute(ctx, "mongodb connect", func(ctx context.Context) error {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.cfg.URI))
		if err != nil {
			// a malformed URI is not worth retrying
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeConfig, "invalid MongoDB connection settings")
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "failed to reach MongoDB")
		}

		s.client = client
		s.GetLogger().Debug("connected to MongoDB", zap.String("database", s.cfg.Database))
		return nil
	})
}

// parseFilter parses an extended JSON query document. An empty filter
// matches every document.
func parseFilter(filter string) (primitive.D, error) {
	if filter == "" {
		return primitive.D{}, nil
	}
	var doc primitive.D
	if err := bson.UnmarshalExtJSON([]byte(filter), false, &doc); err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeConfig, "input.mongo.filter is not a valid extended JSON document").
			WithDetail("filter", filter)
	}
	return doc, nil
}

// fromBSON converts a decoded BSON value to a nested value.
func fromBSON(in interface{}) (nested.Value, error) {
	switch v := in.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return nested.NullValue(), nil
	case primitive.D:
		entries := make([]nested.Entry, 0, len(v))
		for _, e := range v {
			child, err := fromBSON(e.Value)
			if err != nil {
				return nested.Value{}, err
			}
			entries = append(entries, nested.E(e.Key, child))
		}
		return nested.Map(entries...), nil
	case primitive.M:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]nested.Entry, 0, len(v))
		for _, k := range keys {
			child, err := fromBSON(v[k])
			if err != nil {
				return nested.Value{}, err
			}
			entries = append(entries, nested.E(k, child))
		}
		return nested.Map(entries...), nil
	case primitive.A:
		items := make([]nested.Value, 0, len(v))
		for _, item := range v {
			child, err := fromBSON(item)
			if err != nil {
				return nested.Value{}, err
			}
			items = append(items, child)
		}
		return nested.Seq(items...), nil
	case primitive.ObjectID:
		return nested.Str(v.Hex()), nil
	case primitive.DateTime:
		return nested.Str(formatTime(v.Time())), nil
	case time.Time:
		return nested.Str(formatTime(v)), nil
	case primitive.Decimal128:
		// NaN and infinities have no number text
		if _, _, err := v.BigInt(); err != nil {
			return nested.Str(v.String()), nil
		}
		return nested.Num(v.String()), nil
	case primitive.Timestamp:
		return nested.Map(
			nested.E("t", nested.Leaf(nested.Uint(uint64(v.T)))),
			nested.E("i", nested.Leaf(nested.Uint(uint64(v.I)))),
		), nil
	case primitive.Binary:
		return nested.Str(base64.StdEncoding.EncodeToString(v.Data)), nil
	case primitive.Regex:
		return nested.Str("/" + v.Pattern + "/" + v.Options), nil
	case primitive.Symbol:
		return nested.Str(string(v)), nil
	case primitive.JavaScript:
		return nested.Str(string(v)), nil
	case primitive.MinKey:
		return nested.Str("MinKey"), nil
	case primitive.MaxKey:
		return nested.Str("MaxKey"), nil
	default:
		return nested.FromAny(v)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
