package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/game"
)

const gameKeyPrefix = "game:"

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) GameRepository {
	return &redisStore{
		client: client,
	}
}

func (that *redisStore) Save(ctx context.Context, name string, g *game.Game) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	line, err := encode(g)
	if err != nil {
		return err
	}

	if err = that.client.Set(ctx, gameKeyPrefix+name, line, 0).Err(); err != nil {
		return fmt.Errorf("%w: failed to set game: %w", apperror.ErrIOFailure, err)
	}

	return nil
}

func (that *redisStore) Load(ctx context.Context, name string) (*game.Game, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	response, err := that.client.Get(ctx, gameKeyPrefix+name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, name)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: failed to get game: %w", apperror.ErrIOFailure, err)
	}

	return decode(response)
}

func (that *redisStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	deleted, err := that.client.Del(ctx, gameKeyPrefix+name).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to delete game: %w", apperror.ErrIOFailure, err)
	}

	if deleted == 0 {
		return fmt.Errorf("%w: %s", apperror.ErrGameNotFound, name)
	}

	return nil
}

func (that *redisStore) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0)

	iter := that.client.Scan(ctx, 0, gameKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), gameKeyPrefix))
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to scan games: %w", apperror.ErrIOFailure, err)
	}

	slices.Sort(names)

	return slices.Compact(names), nil
}
