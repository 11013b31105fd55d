package database

import (
	"fmt"
	"time"

	"pick-ledger-go/logging"
	"pick-ledger-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ScoreDay is one cached provider response: all games for one (league, date).
// A refetch for the same key replaces the whole document.
type ScoreDay struct {
	League    models.League  `bson:"league"`
	Date      string         `bson:"date"` // YYYY-MM-DD
	FetchedAt time.Time      `bson:"fetched_at"`
	Games     []*models.Game `bson:"games"`
}

type MongoGameCacheRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoGameCacheRepository(db *MongoDB) *MongoGameCacheRepository {
	collection := db.GetCollection("score_days")
	logger := logging.WithPrefix("mongo_game_cache")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "league", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on score_days collection: %v", err)
	}

	return &MongoGameCacheRepository{
		collection: collection,
		logger:     logger,
	}
}

// PutDay stores one day's games for a league, replacing any previous fetch
func (r *MongoGameCacheRepository) PutDay(league models.League, date string, games []*models.Game) error {
	ctx, cancel := WithShortTimeout()
	defer cancel()

	day := ScoreDay{
		League:    league,
		Date:      date,
		FetchedAt: time.Now(),
		Games:     games,
	}

	filter := bson.M{"league": league, "date": date}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection.ReplaceOne(ctx, filter, day, opts); err != nil {
		return fmt.Errorf("failed to upsert score day %s/%s: %w", league, date, err)
	}

	return nil
}

// GetDay returns the cached games for one (league, date), or (nil, false)
// when the day was never fetched
func (r *MongoGameCacheRepository) GetDay(league models.League, date string) ([]*models.Game, bool, error) {
	ctx, cancel := WithShortTimeout()
	defer cancel()

	filter := bson.M{"league": league, "date": date}

	var day ScoreDay
	err := r.collection.FindOne(ctx, filter).Decode(&day)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find score day %s/%s: %w", league, date, err)
	}

	return day.Games, true, nil
}
