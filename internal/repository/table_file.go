package repository

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/agent"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
)

const tableFileExt = ".gob"

type fileTable struct {
	dir string
}

// NewFileTableRepository stores each table as a gob file "<dir>/<id>.gob".
func NewFileTableRepository(dir string) TableRepository {
	return &fileTable{
		dir: dir,
	}
}

func (that *fileTable) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidTableID, id)
	}

	return filepath.Join(that.dir, id+tableFileExt), nil
}

func (that *fileTable) Save(_ context.Context, id string, table map[entity.StateKey]agent.ActionValues) error {
	path, err := that.path(id)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(that.dir, 0o755); err != nil {
		return fmt.Errorf("unable to create table directory: %w", err)
	}

	// write to a sibling file first so a failed save never truncates the previous table
	tmp, err := os.CreateTemp(that.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if err = gob.NewEncoder(tmp).Encode(toStoredTable(table)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode table: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write table file: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace table file: %w", err)
	}

	return nil
}

func (that *fileTable) Load(_ context.Context, id string) (map[entity.StateKey]agent.ActionValues, error) {
	path, err := that.path(id)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperror.ErrTableNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open table file: %w", err)
	}

	defer file.Close()

	var stored storedTable
	if err = gob.NewDecoder(file).Decode(&stored); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrCorruptTable, err)
	}

	return fromStoredTable(stored)
}
