package repository

import (
	"context"
	"fmt"

	"tourii_backend/pkg/logger"

	lru "github.com/hashicorp/golang-lru"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("not found")

	ErrQuestNotFound         = errors.New("quest not found")
	ErrQuestAlreadyCompleted = errors.New("quest already completed")

	ErrPerkNotFound      = errors.New("perk not found")
	ErrNotEnoughPoints   = errors.New("not enough points")
	ErrDuplicateExchange = errors.New("exchange already recorded for idempotency key")

	ErrAlreadyExists = errors.New("already exists")
)

const defaultCatalogCacheSize = 256

type Repository struct {
	db *sqlx.DB

	// quest id -> *model.QuestDetails
	catalog *lru.Cache
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Transaction(ctx context.Context, t func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	err = t(tx)
	if err != nil {
		txErr := tx.Rollback()
		if txErr != nil {
			return errors.Wrapf(err, "rollback error: %v", txErr)
		}
		return err
	}
	return tx.Commit()
}

type Config struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	SSLMode  string `json:"sslMode"`

	CatalogCacheSize int `json:"catalogCacheSize"`
}

func New(cfg Config) (*Repository, error) {
	url := cfg.GetDatabaseURL()
	db, err := sqlx.Connect("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Logger().Info("Connected to database successfully")

	return NewWithDB(db, cfg.CatalogCacheSize)
}

// NewWithDB wraps an already opened connection pool.
func NewWithDB(db *sqlx.DB, cacheSize int) (*Repository, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCatalogCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}

	return &Repository{
		db:      db,
		catalog: cache,
	}, nil
}

func (c *Config) GetDatabaseURL() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		sslMode,
	)
}
