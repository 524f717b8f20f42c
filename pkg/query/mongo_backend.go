package query

import (
	"context"
	"fmt"
	"time"

	mongotx "servimarket/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const mongoIDField = "_id"

// MongoBackend keeps one collection per table. Documents are read whole and
// matched by the client, and writes target documents by their _id.
type MongoBackend struct {
	db        *mongo.Database
	txManager mongotx.TransactionManager
	timeout   time.Duration
}

func NewMongoBackend(db *mongo.Database, txManager mongotx.TransactionManager, timeout time.Duration) *MongoBackend {
	if txManager == nil {
		txManager = mongotx.NoTransaction{}
	}
	return &MongoBackend{
		db:        db,
		txManager: txManager,
		timeout:   timeout,
	}
}

func (b *MongoBackend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < b.timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b *MongoBackend) Load(ctx context.Context, table string) ([]Row, error) {
	docs, err := b.find(ctx, table)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(docs))
	for i, doc := range docs {
		rows[i] = docToRow(doc)
	}
	return rows, nil
}

func (b *MongoBackend) Append(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	docs := make([]any, len(rows))
	for i, r := range rows {
		docs[i] = bson.M(r.Clone())
	}
	if _, err := b.db.Collection(table).InsertMany(ctx, docs); err != nil {
		return writeError("insert into", table, err)
	}
	return nil
}

func (b *MongoBackend) Patch(ctx context.Context, table string, filters []Filter, partial Row) ([]Row, error) {
	var updated []Row
	err := b.txManager.ExecuteTransaction(ctx, func(ctx context.Context) error {
		ids, matched, err := b.matching(ctx, table, filters)
		if err != nil || len(ids) == 0 {
			return err
		}

		ctx, cancel := b.withTimeout(ctx)
		defer cancel()

		update := bson.M{"$set": bson.M(partial.Clone())}
		if _, err := b.db.Collection(table).UpdateMany(ctx, bson.M{mongoIDField: bson.M{"$in": ids}}, update); err != nil {
			return writeError("update", table, err)
		}

		for _, r := range matched {
			for k, v := range partial {
				r[k] = v
			}
		}
		updated = matched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (b *MongoBackend) Remove(ctx context.Context, table string, filters []Filter) (int, error) {
	var removed int
	err := b.txManager.ExecuteTransaction(ctx, func(ctx context.Context) error {
		ids, _, err := b.matching(ctx, table, filters)
		if err != nil || len(ids) == 0 {
			return err
		}

		ctx, cancel := b.withTimeout(ctx)
		defer cancel()

		result, err := b.db.Collection(table).DeleteMany(ctx, bson.M{mongoIDField: bson.M{"$in": ids}})
		if err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
		removed = int(result.DeletedCount)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Seed inserts the dataset into every collection that is still empty.
func (b *MongoBackend) Seed(ctx context.Context, seed Dataset) error {
	for table, rows := range seed {
		count, err := b.count(ctx, table)
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := b.Append(ctx, table, rows); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks the connection. Used by the readiness check.
func (b *MongoBackend) Ping(ctx context.Context) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	return b.db.Client().Ping(ctx, nil)
}

func (b *MongoBackend) count(ctx context.Context, table string) (int64, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	count, err := b.db.Collection(table).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

func (b *MongoBackend) find(ctx context.Context, table string) ([]bson.M, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	cursor, err := b.db.Collection(table).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", table, err)
	}
	return docs, nil
}

func (b *MongoBackend) matching(ctx context.Context, table string, filters []Filter) ([]any, []Row, error) {
	docs, err := b.find(ctx, table)
	if err != nil {
		return nil, nil, err
	}

	var ids []any
	var rows []Row
	for _, doc := range docs {
		row := docToRow(doc)
		if !matchAll(row, filters) {
			continue
		}
		ids = append(ids, doc[mongoIDField])
		rows = append(rows, row)
	}
	return ids, rows, nil
}

func docToRow(doc bson.M) Row {
	row := make(Row, len(doc))
	for k, v := range doc {
		if k == mongoIDField {
			continue
		}
		row[k] = normalizeBSON(v)
	}
	return row
}

// normalizeBSON converts driver types into the JSON-native types rows use,
// so equality behaves the same as with the in-memory backend.
func normalizeBSON(v any) any {
	switch val := v.(type) {
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case primitive.ObjectID:
		return val.Hex()
	case primitive.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeBSON(item)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeBSON(item)
		}
		return out
	default:
		return v
	}
}

func writeError(action, table string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to %s %s: %w: %v", action, table, ErrDuplicate, err)
	}
	return fmt.Errorf("failed to %s %s: %w", action, table, err)
}
