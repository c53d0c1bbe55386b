package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"time"

	"research-news/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const newsCollection = "news"

// MongoNewsRepository stores news items in the dashboard's MongoDB
// collection. Item IDs are ObjectID hex strings.
type MongoNewsRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger domain.Logger
}

type mongoNews struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	domain.News `bson:",inline"`
}

// NewMongoNewsRepository connects to uri and uses the news collection of
// database.
func NewMongoNewsRepository(ctx context.Context, uri, database string, logger domain.Logger) (*MongoNewsRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping mongo: %v", domain.ErrStorageUnavailable, err)
	}

	logger.Info("MongoDB news store connected", "database", database)
	return &MongoNewsRepository{
		client: client,
		coll:   client.Database(database).Collection(newsCollection),
		logger: logger,
	}, nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidNewsID
	}
	return oid, nil
}

func mongoFilter(filter domain.NewsFilter) bson.M {
	q := bson.M{"isImportant": filter.ShowImportant}
	if filter.Researcher != "" {
		q["researcher"] = filter.Researcher
	}
	if filter.Query != "" {
		q["query"] = filter.Query
	}
	if filter.ShowRead != nil {
		q["isRead"] = *filter.ShowRead
	}
	if start, end, ok := filter.DayRange(); ok {
		q["date"] = bson.M{"$gte": start, "$lte": end}
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"summary": pattern},
		}
	}
	return q
}

// List returns one page of news matching the filter, newest first.
func (r *MongoNewsRepository) List(ctx context.Context, filter domain.NewsFilter) ([]*domain.News, int64, error) {
	filter = filter.Normalize()
	q := mongoFilter(filter)

	total, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count news: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Offset())).
		SetLimit(int64(filter.PageSize))
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list news: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.News, 0, filter.PageSize)
	for cur.Next(ctx) {
		var doc mongoNews
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode news: %w", err)
		}
		items = append(items, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate news: %w", err)
	}
	return items, total, nil
}

func (d *mongoNews) toDomain() *domain.News {
	n := d.News
	n.ID = d.ID.Hex()
	if n.Highlights == nil {
		n.Highlights = []domain.Highlight{}
	}
	return &n
}

// GetByID returns a single item.
func (r *MongoNewsRepository) GetByID(ctx context.Context, id string) (*domain.News, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc mongoNews
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to get news: %w", err)
	}
	return doc.toDomain(), nil
}

// SetRead marks an item read (stamping readDate) or unread (nulling it).
func (r *MongoNewsRepository) SetRead(ctx context.Context, id string, isRead bool, at time.Time) error {
	var readDate interface{}
	if isRead {
		readDate = at
	}
	return r.set(ctx, id, bson.M{"isRead": isRead, "readDate": readDate, "updatedAt": at})
}

// SetImportant flags or unflags an item.
func (r *MongoNewsRepository) SetImportant(ctx context.Context, id string, isImportant bool, at time.Time) error {
	return r.set(ctx, id, bson.M{"isImportant": isImportant, "updatedAt": at})
}

// ReplaceHighlights overwrites the highlight set of an item.
func (r *MongoNewsRepository) ReplaceHighlights(ctx context.Context, id string, highlights []domain.Highlight, at time.Time) error {
	if highlights == nil {
		highlights = []domain.Highlight{}
	}
	return r.set(ctx, id, bson.M{"highlights": highlights, "updatedAt": at})
}

func (r *MongoNewsRepository) set(ctx context.Context, id string, fields bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update news: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNewsNotFound
	}
	return nil
}

// DistinctResearchers lists every researcher with at least one item.
func (r *MongoNewsRepository) DistinctResearchers(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "researcher")
}

// DistinctQueries lists every query that produced at least one item.
func (r *MongoNewsRepository) DistinctQueries(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "query")
}

func (r *MongoNewsRepository) distinct(ctx context.Context, field string) ([]string, error) {
	raw, err := r.coll.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s values: %w", field, err)
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	slices.Sort(values)
	return values, nil
}

// InsertMany stores new items. IDs are assigned by the database.
func (r *MongoNewsRepository) InsertMany(ctx context.Context, items []*domain.News) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(items))
	for i, n := range items {
		prepareForInsert(n, now)
		docs[i] = mongoNews{News: *n}
	}

	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert news: %w", err)
	}
	for i, id := range res.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok {
			items[i].ID = oid.Hex()
		}
	}
	return len(res.InsertedIDs), nil
}

// Close disconnects the client.
func (r *MongoNewsRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
