package comment

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore keeps comments in the comments table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a PostgresStore backed by db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Add inserts a comment.
func (s *PostgresStore) Add(ctx context.Context, c Comment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, body, created_at)
		 VALUES ($1, $2, $3)`,
		c.ID, c.Body, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// List returns all comments in insertion order.
func (s *PostgresStore) List(ctx context.Context) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, body, created_at
		 FROM comments
		 ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return out, nil
}

// Clear deletes every comment.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments`); err != nil {
		return fmt.Errorf("failed to clear comments: %w", err)
	}
	return nil
}

// compile-time interface check
var _ Store = (*PostgresStore)(nil)
