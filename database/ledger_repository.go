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

// MongoLedgerRepository persists graded picks keyed by their stable pick ID
type MongoLedgerRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoLedgerRepository(db *MongoDB) *MongoLedgerRepository {
	collection := db.GetCollection("graded_picks")
	logger := logging.WithPrefix("mongo_ledger_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "pick_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on graded_picks collection: %v", err)
	}

	return &MongoLedgerRepository{
		collection: collection,
		logger:     logger,
	}
}

// UpsertGradedPick writes one graded pick, replacing any earlier grade for
// the same pick ID
func (r *MongoLedgerRepository) UpsertGradedPick(pick *models.GradedPick) error {
	ctx, cancel := WithShortTimeout()
	defer cancel()

	filter := bson.M{"pick_id": pick.PickID}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection.ReplaceOne(ctx, filter, pick, opts); err != nil {
		return fmt.Errorf("failed to upsert graded pick %s: %w", pick.PickID, err)
	}

	return nil
}

// UpsertAll writes a batch of graded picks one at a time, returning the
// first error encountered after attempting every pick
func (r *MongoLedgerRepository) UpsertAll(picks []models.GradedPick) error {
	var firstErr error
	for i := range picks {
		if err := r.UpsertGradedPick(&picks[i]); err != nil {
			r.logger.Errorf("Failed to persist pick %s: %v", picks[i].PickID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// GetAll returns the full persisted ledger
func (r *MongoLedgerRepository) GetAll() ([]models.GradedPick, error) {
	ctx, cancel := WithLongTimeout()
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find graded picks: %w", err)
	}
	defer cursor.Close(ctx)

	var picks []models.GradedPick
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, fmt.Errorf("failed to decode graded picks: %w", err)
	}

	return picks, nil
}

// GetByDateRange returns graded picks whose pick date falls within the range
func (r *MongoLedgerRepository) GetByDateRange(from, to time.Time) ([]models.GradedPick, error) {
	ctx, cancel := WithMediumTimeout()
	defer cancel()

	filter := bson.M{"date": bson.M{"$gte": from, "$lte": to}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find graded picks %s..%s: %w",
			from.Format("2006-01-02"), to.Format("2006-01-02"), err)
	}
	defer cursor.Close(ctx)

	var picks []models.GradedPick
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, fmt.Errorf("failed to decode graded picks: %w", err)
	}

	return picks, nil
}
