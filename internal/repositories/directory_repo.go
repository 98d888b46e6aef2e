package repositories

import (
	"context"
	"fmt"

	"freightdesk/internal/models"

	"github.com/google/uuid"
)

// DirectoryRepository resolves carrier and customer business codes.
type DirectoryRepository interface {
	FindIDByCode(ctx context.Context, kind, code string) (uuid.UUID, error)
	// IsActive reports whether id is still the active row carrying code.
	IsActive(ctx context.Context, kind, code string, id uuid.UUID) (bool, error)
	FirstActiveID(ctx context.Context, kind string) (uuid.UUID, error)
	ListEntries(ctx context.Context, kind string) ([]models.DirectoryEntry, error)
}

type directoryRepo struct {
	db DBTX
}

func NewDirectoryRepo(db DBTX) DirectoryRepository {
	return &directoryRepo{db: db}
}

var directoryTables = map[string]string{
	models.DirectoryCarrier:  "carriers",
	models.DirectoryCustomer: "customers",
}

func directoryTable(kind string) (string, error) {
	table, ok := directoryTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown directory kind %q", kind)
	}
	return table, nil
}

func (r *directoryRepo) FindIDByCode(ctx context.Context, kind, code string) (uuid.UUID, error) {
	table, err := directoryTable(kind)
	if err != nil {
		return uuid.Nil, err
	}

	query := `SELECT id FROM ` + table + ` WHERE code = $1 AND deleted = false`
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, code).Scan(&id); err != nil {
		return uuid.Nil, notFound(err)
	}
	return id, nil
}

func (r *directoryRepo) IsActive(ctx context.Context, kind, code string, id uuid.UUID) (bool, error) {
	table, err := directoryTable(kind)
	if err != nil {
		return false, err
	}

	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE id = $1 AND code = $2 AND deleted = false)`
	var active bool
	if err := r.db.QueryRow(ctx, query, id, code).Scan(&active); err != nil {
		return false, err
	}
	return active, nil
}

// FirstActiveID returns the active row with the lowest code. It backs the
// opt-in fallback reference policy.
func (r *directoryRepo) FirstActiveID(ctx context.Context, kind string) (uuid.UUID, error) {
	table, err := directoryTable(kind)
	if err != nil {
		return uuid.Nil, err
	}

	query := `SELECT id FROM ` + table + ` WHERE deleted = false ORDER BY code LIMIT 1`
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query).Scan(&id); err != nil {
		return uuid.Nil, notFound(err)
	}
	return id, nil
}

func (r *directoryRepo) ListEntries(ctx context.Context, kind string) ([]models.DirectoryEntry, error) {
	table, err := directoryTable(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, code, name FROM ` + table + ` WHERE deleted = false ORDER BY code`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DirectoryEntry
	for rows.Next() {
		var e models.DirectoryEntry
		if err := rows.Scan(&e.ID, &e.Code, &e.Name); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
