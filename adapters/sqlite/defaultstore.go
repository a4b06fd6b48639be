package sqlite

import (
	"context"

	"github.com/artpar/apiref/ports"
)

// DefaultStore implements ports.DefaultStore using SQLite. An empty
// collection row is a wildcard default for the whole API.
type DefaultStore struct {
	db    *DB
	clock ports.Clock
}

// NewDefaultStore creates a new parameter default store.
func NewDefaultStore(db *DB, clock ports.Clock) *DefaultStore {
	return &DefaultStore{db: db, clock: clock}
}

// List returns all stored defaults, most specific rows last so callers
// can apply them in order.
func (s *DefaultStore) List(ctx context.Context) ([]ports.ParamDefault, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT api, collection, param, value
		FROM param_defaults
		ORDER BY api, collection, param`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.ParamDefault
	for rows.Next() {
		var d ports.ParamDefault
		if err := rows.Scan(&d.API, &d.Collection, &d.Param, &d.Value); err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}

// Set stores or overwrites a default.
func (s *DefaultStore) Set(ctx context.Context, d ports.ParamDefault) error {
	_, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO param_defaults (api, collection, param, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(api, collection, param) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		d.API, d.Collection, d.Param, d.Value, s.clock.Now().UTC(),
	)
	return err
}

// Delete removes a default. Deleting an absent row is not an error.
func (s *DefaultStore) Delete(ctx context.Context, api, collection, param string) error {
	_, err := s.db.DB.ExecContext(ctx,
		`DELETE FROM param_defaults WHERE api = ? AND collection = ? AND param = ?`,
		api, collection, param,
	)
	return err
}
