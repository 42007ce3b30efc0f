package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/angeloszaimis/healthwatch/internal/apperror"
	"github.com/angeloszaimis/healthwatch/internal/instance"
)

var _ Store = (*SQLite)(nil)

const instancesSchema = `
CREATE TABLE IF NOT EXISTS instances (
	id TEXT PRIMARY KEY,
	uri TEXT NOT NULL,
	endpoints TEXT NOT NULL,
	health_status TEXT NOT NULL,
	updated TIMESTAMP
)
`

const upsertInstanceSql = `
INSERT INTO instances (id, uri, endpoints, health_status, updated)
VALUES ($1, $2, $3, $4, datetime())
ON CONFLICT (id)
DO UPDATE SET uri = $2, endpoints = $3, health_status = $4, updated = datetime();
`

type instanceRow struct {
	ID           string `db:"id"`
	URI          string `db:"uri"`
	Endpoints    string `db:"endpoints"`
	HealthStatus string `db:"health_status"`
}

// SQLite keeps instances in a single table; endpoints are stored as JSON text.
type SQLite struct {
	db *sqlx.DB
}

// OpenSQLite connects to dsn and creates the schema if needed.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite %q: %w", dsn, err)
	}

	if _, err := db.Exec(instancesSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create instances table: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) GetByID(ctx context.Context, id string) (*instance.Instance, error) {
	var row instanceRow
	err := s.db.GetContext(ctx, &row, "SELECT id, uri, endpoints, health_status FROM instances WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewEntityNotFoundError("instance not found", nil)
	}
	if err != nil {
		return nil, apperror.NewInternalServerError("SQLite select error", fmt.Errorf("can't read instance %s: %w", id, err))
	}

	return row.instance()
}

func (s *SQLite) GetAll(ctx context.Context) ([]*instance.Instance, error) {
	var rows []instanceRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT id, uri, endpoints, health_status FROM instances"); err != nil {
		return nil, apperror.NewInternalServerError("SQLite select error", fmt.Errorf("can't list instances: %w", err))
	}

	all := make([]*instance.Instance, 0, len(rows))
	for _, row := range rows {
		inst, err := row.instance()
		if err != nil {
			return nil, err
		}
		all = append(all, inst)
	}

	return all, nil
}

func (s *SQLite) Save(ctx context.Context, inst *instance.Instance) (*instance.Instance, error) {
	if inst == nil || inst.ID() == "" {
		return nil, apperror.NewBadParameterError("instance id is required", nil)
	}

	endpoints, err := json.Marshal(inst.Endpoints())
	if err != nil {
		return nil, apperror.NewInternalServerError("SQLite marshal endpoints error", err)
	}

	_, err = s.db.ExecContext(ctx, upsertInstanceSql, inst.ID(), inst.URI(), string(endpoints), inst.HealthStatus().String())
	if err != nil {
		return nil, apperror.NewInternalServerError("SQLite upsert error", fmt.Errorf("can't save instance %s: %w", inst.ID(), err))
	}

	return inst.Clone(), nil
}

func (r instanceRow) instance() (*instance.Instance, error) {
	var endpoints map[string]string
	if err := json.Unmarshal([]byte(r.Endpoints), &endpoints); err != nil {
		return nil, apperror.NewInternalServerError("SQLite unmarshal endpoints error", fmt.Errorf("instance %s: %w", r.ID, err))
	}
	return instance.Restore(r.ID, r.URI, endpoints, instance.Status(r.HealthStatus)), nil
}
