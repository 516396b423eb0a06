package repository

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/domain/filter"
	"github.com/hilthontt/encore/internal/infrastructure/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAuditLogRepository struct {
	db *mongo.Database
}

func NewMongoAuditLogRepository(db *mongo.Database) domain.AuditLogRepository {
	return &mongoAuditLogRepository{
		db: db,
	}
}

func (r *mongoAuditLogRepository) Append(ctx context.Context, log *domain.AuditLog) error {
	collection := r.db.Collection(database.AuditLogsCollection)

	_, err := collection.InsertOne(ctx, log)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *mongoAuditLogRepository) List(ctx context.Context, req filter.PaginationInputWithFilter) (int64, []domain.AuditLog, error) {
	collection := r.db.Collection(database.AuditLogsCollection)

	query, err := mongoAuditFilter(req.DynamicFilter)
	if err != nil {
		return 0, nil, err
	}

	total, err := collection.CountDocuments(ctx, query)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	opts := options.Find().
		SetSort(mongoAuditSort(req.DynamicFilter)).
		SetSkip(int64(req.GetOffset())).
		SetLimit(int64(req.GetPageSize()))

	cursor, err := collection.Find(ctx, query, opts)
	if err != nil {
		return 0, nil, err
	}
	defer cursor.Close(ctx)

	logs := []domain.AuditLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return 0, nil, err
	}

	return total, logs, nil
}

func (r *mongoAuditLogRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(database.AuditLogsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "actor_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "action", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// bsonField maps a Go field name of AuditLog to its document key.
func bsonField(goName string) (string, bool) {
	fld, ok := reflect.TypeOf(domain.AuditLog{}).FieldByName(goName)
	if !ok {
		return "", false
	}
	name, _, _ := strings.Cut(fld.Tag.Get("bson"), ",")
	if name == "" || name == "-" {
		return "", false
	}
	return name, true
}

func mongoAuditFilter(f filter.DynamicFilter) (bson.M, error) {
	query := bson.M{}

	for goName, cond := range f.Filter {
		key, ok := bsonField(goName)
		if !ok {
			continue
		}

		switch cond.Type {
		case filter.FilterEquals:
			query[key] = cond.From
		case filter.FilterNotEqual:
			query[key] = bson.M{"$ne": cond.From}
		case filter.FilterInRange:
			if key != "timestamp" {
				continue
			}
			from, err := time.Parse(time.RFC3339, cond.From)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid from timestamp", domain.ErrInvalidInput)
			}
			to, err := time.Parse(time.RFC3339, cond.To)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid to timestamp", domain.ErrInvalidInput)
			}
			query[key] = bson.M{"$gte": from, "$lte": to}
		}
	}

	return query, nil
}

func mongoAuditSort(f filter.DynamicFilter) bson.D {
	sort := bson.D{}
	for _, s := range f.Sort {
		key, ok := bsonField(s.ColID)
		if !ok {
			continue
		}
		dir := 1
		if s.Sort == filter.SortDesc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: key, Value: dir})
	}
	if len(sort) == 0 {
		sort = bson.D{{Key: "timestamp", Value: -1}}
	}
	return sort
}
