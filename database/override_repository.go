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

// Override is one manual grading correction, keyed by stable pick ID.
// Overrides are applied after automated grading and always win over the
// computed result for the same pick.
type Override struct {
	PickID     string            `bson:"pick_id" yaml:"pick_id"`
	Result     models.PickResult `bson:"result" yaml:"result"`
	ProfitLoss *float64          `bson:"profit_loss,omitempty" yaml:"profit_loss,omitempty"`
	Note       string            `bson:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt  time.Time         `bson:"created_at" yaml:"-"`
}

type MongoOverrideRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoOverrideRepository(db *MongoDB) *MongoOverrideRepository {
	collection := db.GetCollection("overrides")
	logger := logging.WithPrefix("mongo_override_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "pick_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on overrides collection: %v", err)
	}

	return &MongoOverrideRepository{
		collection: collection,
		logger:     logger,
	}
}

// UpsertOverride stores one correction, replacing an earlier one for the
// same pick
func (r *MongoOverrideRepository) UpsertOverride(ov *Override) error {
	ctx, cancel := WithShortTimeout()
	defer cancel()

	if ov.CreatedAt.IsZero() {
		ov.CreatedAt = time.Now()
	}

	filter := bson.M{"pick_id": ov.PickID}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection.ReplaceOne(ctx, filter, ov, opts); err != nil {
		return fmt.Errorf("failed to upsert override %s: %w", ov.PickID, err)
	}

	return nil
}

// GetAll returns every stored correction
func (r *MongoOverrideRepository) GetAll() ([]Override, error) {
	ctx, cancel := WithMediumTimeout()
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find overrides: %w", err)
	}
	defer cursor.Close(ctx)

	var overrides []Override
	if err := cursor.All(ctx, &overrides); err != nil {
		return nil, fmt.Errorf("failed to decode overrides: %w", err)
	}

	return overrides, nil
}
