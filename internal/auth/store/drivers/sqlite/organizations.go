package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/meridianapps/meridian/internal/auth/domain"
)

type organizationsRepo struct {
	db dbtx
}

func scanOrganization(row *sql.Row) (domain.Organization, error) {
	var o domain.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Plan, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	return o, nil
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug, plan, created_at, updated_at FROM organizations WHERE id = ?`, id)
	return scanOrganization(row)
}

func (r *organizationsRepo) GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug, plan, created_at, updated_at FROM organizations WHERE slug = ?`, slug)
	return scanOrganization(row)
}

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, slug, plan, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.Slug, o.Plan, o.CreatedAt, o.UpdatedAt)
	return mapConstraint(err)
}

func (r *organizationsRepo) UpdateOrganizationPlan(ctx context.Context, orgID string, plan string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE organizations SET plan = ?, updated_at = ? WHERE id = ?`,
		plan, time.Now().UTC(), orgID)
	return err
}
