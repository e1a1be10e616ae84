package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/game"
)

const (
	gamesCollection = "games"
	mongoTimeout    = 5 * time.Second
)

type mongoGame struct {
	Name      string    `bson:"_id"`
	State     string    `bson:"state"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(database *mongo.Database) GameRepository {
	return &mongoStore{
		collection: database.Collection(gamesCollection),
	}
}

func (that *mongoStore) Save(ctx context.Context, name string, g *game.Game) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	line, err := encode(g)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	doc := mongoGame{Name: name, State: line, UpdatedAt: time.Now().UTC()}

	_, err = that.collection.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: failed to save game: %w", apperror.ErrIOFailure, err)
	}

	return nil
}

func (that *mongoStore) Load(ctx context.Context, name string) (*game.Game, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var doc mongoGame

	err := that.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, name)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: failed to find game: %w", apperror.ErrIOFailure, err)
	}

	return decode(doc.State)
}

func (that *mongoStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	result, err := that.collection.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return fmt.Errorf("%w: failed to delete game: %w", apperror.ErrIOFailure, err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", apperror.ErrGameNotFound, name)
	}

	return nil
}

func (that *mongoStore) List(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := that.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list games: %w", apperror.ErrIOFailure, err)
	}

	var docs []mongoGame
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: failed to list games: %w", apperror.ErrIOFailure, err)
	}

	return lo.Map(docs, func(doc mongoGame, _ int) string {
		return doc.Name
	}), nil
}
