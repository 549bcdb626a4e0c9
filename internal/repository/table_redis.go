package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/agent"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
)

const tableKeyPrefix = "qtable:"

type TableRepository interface {
	Save(ctx context.Context, id string, table map[entity.StateKey]agent.ActionValues) error
	Load(ctx context.Context, id string) (map[entity.StateKey]agent.ActionValues, error)
}

type dbTable struct {
	client *redis.Client
}

// NewTableRepository stores each table as one JSON blob under "qtable:<id>".
func NewTableRepository(client *redis.Client) TableRepository {
	return &dbTable{
		client: client,
	}
}

func (that *dbTable) Save(ctx context.Context, id string, table map[entity.StateKey]agent.ActionValues) error {
	tableJSON, err := json.Marshal(toStoredTable(table))
	if err != nil {
		return fmt.Errorf("could not marshal table: %w", err)
	}

	if err = that.client.Set(ctx, tableKeyPrefix+id, tableJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set table: %w", err)
	}

	return nil
}

func (that *dbTable) Load(ctx context.Context, id string) (map[entity.StateKey]agent.ActionValues, error) {
	response, err := that.client.Get(ctx, tableKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrTableNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get table by id: %w", err)
	}

	var stored storedTable
	if err = json.Unmarshal(response, &stored); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrCorruptTable, err)
	}

	return fromStoredTable(stored)
}
