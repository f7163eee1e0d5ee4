package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"recruit-eval/internal/domain"
)

// ProcessRepository lee el perfil de rasgos y los candidatos de un proceso.
type ProcessRepository interface {
	GetProfile(ctx context.Context, processID string) (domain.ProcessProfile, error)
	ListCandidateIDs(ctx context.Context, processID string) ([]string, error)
}

type PgProcessRepository struct {
	pool *pgxpool.Pool
}

func NewPgProcessRepository(pool *pgxpool.Pool) *PgProcessRepository {
	return &PgProcessRepository{pool: pool}
}

// GetProfile devuelve pgx.ErrNoRows si el proceso no existe. Un proceso sin
// rasgos configurados devuelve un perfil vacio.
func (r *PgProcessRepository) GetProfile(ctx context.Context, processID string) (domain.ProcessProfile, error) {
	const profileQuery = `
		SELECT id, expected_profile
		FROM processes
		WHERE id = $1
	`
	profile := domain.ProcessProfile{}
	var expected []byte
	err := r.pool.QueryRow(ctx, profileQuery, processID).Scan(&profile.ProcessID, &expected)
	if err != nil {
		return domain.ProcessProfile{}, err
	}
	if len(expected) > 0 {
		if err := json.Unmarshal(expected, &profile.ExpectedProfile); err != nil {
			return domain.ProcessProfile{}, fmt.Errorf("decode expected profile: %w", err)
		}
	}

	const targetsQuery = `
		SELECT t.name, t.category_uuid::text, t.weight::float8
		FROM process_traits t
		WHERE t.process_id = $1
		ORDER BY t.position, t.name
	`
	rows, err := r.pool.Query(ctx, targetsQuery, processID)
	if err != nil {
		return domain.ProcessProfile{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var target domain.TargetTraitConfig
		var identity sql.NullString
		var weight sql.NullFloat64
		if err := rows.Scan(&target.Name, &identity, &weight); err != nil {
			return domain.ProcessProfile{}, err
		}
		if identity.Valid {
			target.Identity = identity.String
		}
		target.Weight = domain.DefaultTraitWeight
		if weight.Valid {
			target.Weight = weight.Float64
		}
		profile.Targets = append(profile.Targets, target)
	}

	if err := rows.Err(); err != nil {
		return domain.ProcessProfile{}, err
	}

	return profile, nil
}

func (r *PgProcessRepository) ListCandidateIDs(ctx context.Context, processID string) ([]string, error) {
	const query = `
		SELECT candidate_id
		FROM process_candidates
		WHERE process_id = $1
		ORDER BY candidate_id
	`

	rows, err := r.pool.Query(ctx, query, processID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
