// Package catalog reads the global list of draftable items.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
)

const itemColumns = `id, name, title, category, image_url, attributes, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", gameerr.Unavailable(err))
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerr.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", gameerr.Unavailable(err))
	}
	return item, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.Item, error) {
	var (
		item  models.Item
		attrs pqtype.NullRawMessage
	)
	if err := s.Scan(&item.ID, &item.Name, &item.Title, &item.Category, &item.ImageURL, &attrs, &item.CreatedAt); err != nil {
		return nil, err
	}
	if attrs.Valid {
		item.Attributes = attrs.RawMessage
	}
	return &item, nil
}
