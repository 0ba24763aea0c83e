// internal/repository/postgres/settings_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"settings-service/internal/domain/settings"
	xerrors "settings-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

const settingsColumns = `
	id, account_id, building_id, kind, value, created_at, updated_at
`

func scanSettings(row pgx.Row) (*settings.Record, error) {
	var rec settings.Record
	var kind string
	var valueJSON []byte

	err := row.Scan(
		&rec.ID, &rec.AccountID, &rec.BuildingID, &kind, &valueJSON,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Kind = settings.Kind(kind)
	if len(valueJSON) > 0 {
		if err := json.Unmarshal(valueJSON, &rec.Value); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings value: %w", err)
		}
	}
	return &rec, nil
}

// FindScoped retrieves the settings record for an exact scope: a specific
// building, or the global record when buildingID is nil.
func (r *SettingsRepository) FindScoped(ctx context.Context, accountID int64, kind settings.Kind, buildingID *int64) (*settings.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM settings
		WHERE account_id = $1 AND kind = $2 AND
		      (building_id = $3 OR (building_id IS NULL AND $3::bigint IS NULL))
	`, settingsColumns)

	var buildingParam interface{}
	if buildingID != nil {
		buildingParam = *buildingID
	}

	rec, err := scanSettings(r.db.QueryRow(ctx, query, accountID, string(kind), buildingParam))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find settings: %w", err)
	}
	return rec, nil
}

// Create inserts a settings record.
func (r *SettingsRepository) Create(ctx context.Context, rec *settings.Record) error {
	query := `
		INSERT INTO settings (account_id, building_id, kind, value)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	valueJSON, err := json.Marshal(rec.Value)
	if err != nil {
		return fmt.Errorf("failed to marshal settings value: %w", err)
	}

	var buildingParam interface{}
	if rec.BuildingID.Valid {
		buildingParam = rec.BuildingID.Int64
	}

	err = r.db.QueryRow(ctx, query, rec.AccountID, buildingParam, string(rec.Kind), valueJSON).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create settings: %w", err)
	}
	return nil
}

// Update replaces the value blob of a settings record.
func (r *SettingsRepository) Update(ctx context.Context, id int64, value map[string]any) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal settings value: %w", err)
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE settings SET value = $1, updated_at = $2 WHERE id = $3`,
		valueJSON, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
