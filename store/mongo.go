package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/use-agent/harvest/models"
)

// Mongo stores one document per session. Page appends and removals are
// single UpdateOne calls combining $push/$pull with $inc on total_pages.
// Scrape records live in a second collection.
type Mongo struct {
	client  *mongo.Client
	coll    *mongo.Collection
	scrapes *mongo.Collection
}

// MongoConfig selects the deployment and collection.
type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ScrapesColl    string
	ConnectTimeout time.Duration
}

// NewMongo connects, pings and ensures the session_id and scrape_id
// unique indexes.
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("store: connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: ping MongoDB: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: create indexes: %w", err)
	}

	scrapesName := cfg.ScrapesColl
	if scrapesName == "" {
		scrapesName = "scrapes"
	}
	scrapes := client.Database(cfg.Database).Collection(scrapesName)
	_, err = scrapes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "scrape_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: create scrape indexes: %w", err)
	}

	slog.Info("connected to MongoDB", "database", cfg.Database, "collection", cfg.Collection, "scrapes", scrapesName)
	return &Mongo{client: client, coll: coll, scrapes: scrapes}, nil
}

func (m *Mongo) Name() string { return "mongo" }

func (m *Mongo) Insert(ctx context.Context, s *models.Session) error {
	doc := *s
	if doc.Pages == nil {
		doc.Pages = []models.Page{}
	}
	if _, err := m.coll.InsertOne(ctx, &doc); err != nil {
		return fmt.Errorf("store: insert session: %w", err)
	}
	return nil
}

func (m *Mongo) Get(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := m.coll.FindOne(ctx, bson.M{"session_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: find session: %w", err)
	}
	if s.Pages == nil {
		s.Pages = []models.Page{}
	}
	return &s, nil
}

func (m *Mongo) AppendPage(ctx context.Context, id string, p models.Page, now time.Time) error {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"session_id": id, "status": models.SessionActive},
		bson.M{
			"$push": bson.M{"pages": p},
			"$inc":  bson.M{"total_pages": 1},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return fmt.Errorf("store: append page: %w", err)
	}
	if res.MatchedCount == 0 {
		return m.missOr(ctx, id, ErrNotActive)
	}
	return nil
}

func (m *Mongo) RemovePage(ctx context.Context, id, pageID string, now time.Time) error {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"session_id": id, "pages.page_id": pageID},
		bson.M{
			"$pull": bson.M{"pages": bson.M{"page_id": pageID}},
			"$inc":  bson.M{"total_pages": -1},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return fmt.Errorf("store: remove page: %w", err)
	}
	if res.MatchedCount == 0 {
		return m.missOr(ctx, id, ErrPageNotFound)
	}
	return nil
}

func (m *Mongo) Advance(ctx context.Context, id string, status models.SessionStatus, now time.Time) (*models.Session, error) {
	set := bson.M{"status": status, "updated_at": now}
	if status == models.SessionCompleted {
		set["completed_at"] = now
	}
	preds := status.Predecessors()
	if len(preds) == 0 {
		return m.Get(ctx, id)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var s models.Session
	err := m.coll.FindOneAndUpdate(ctx,
		bson.M{"session_id": id, "status": bson.M{"$in": preds}},
		bson.M{"$set": set},
		opts,
	).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Already at or past status, or absent.
		return m.Get(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: advance session: %w", err)
	}
	if s.Pages == nil {
		s.Pages = []models.Page{}
	}
	return &s, nil
}

func (m *Mongo) List(ctx context.Context, f ListFilter) ([]models.SessionLite, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"pages": 0})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]models.SessionLite, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("store: decode sessions: %w", err)
	}
	return out, nil
}

func (m *Mongo) InsertScrape(ctx context.Context, rec *models.ScrapeRecord) error {
	if _, err := m.scrapes.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("store: insert scrape: %w", err)
	}
	return nil
}

func (m *Mongo) GetScrape(ctx context.Context, id string) (*models.ScrapeRecord, error) {
	var rec models.ScrapeRecord
	err := m.scrapes.FindOne(ctx, bson.M{"scrape_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrScrapeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: find scrape: %w", err)
	}
	return &rec, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("store: disconnect MongoDB: %w", err)
	}
	slog.Info("MongoDB connection closed")
	return nil
}

// missOr returns ErrNotFound when the session is absent, else err.
func (m *Mongo) missOr(ctx context.Context, id string, err error) error {
	n, cerr := m.coll.CountDocuments(ctx, bson.M{"session_id": id}, options.Count().SetLimit(1))
	if cerr != nil {
		return fmt.Errorf("store: count session: %w", cerr)
	}
	if n == 0 {
		return ErrNotFound
	}
	return err
}
