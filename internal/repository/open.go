package repository

import (
	"context"
	"fmt"

	"github.com/cirocosta/todolist/internal/config"
)

// Open returns the TodoRepository selected by cfg.Driver
func Open(ctx context.Context, cfg config.StoreConfig) (TodoRepository, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewInMemoryTodoRepository(), nil
	case config.DriverMongo:
		repo, err := NewMongoTodoRepository(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverSQLite:
		repo, err := NewSQLiteTodoRepository(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
