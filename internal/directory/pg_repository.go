package directory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]DoctorListing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, u.first_name || ' ' || u.last_name, d.title, dep.name, d.experience_years, d.is_active
		FROM doctors d
		JOIN users u ON d.user_id = u.id
		JOIN departments dep ON d.department_id = dep.id
		ORDER BY u.last_name, u.first_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DoctorListing
	for rows.Next() {
		var doc DoctorListing
		var title *string
		if err := rows.Scan(&doc.ID, &doc.FullName, &title, &doc.Department, &doc.ExperienceYears, &doc.IsActive); err != nil {
			return nil, err
		}
		if title != nil {
			doc.Title = *title
		}
		result = append(result, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, is_active
		FROM departments
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Department
	for rows.Next() {
		var dep Department
		var desc *string
		if err := rows.Scan(&dep.ID, &dep.Name, &desc, &dep.IsActive); err != nil {
			return nil, err
		}
		if desc != nil {
			dep.Description = *desc
		}
		result = append(result, dep)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
