package repository

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"recruit-eval/internal/domain"
)

// ResponseRepository lee las respuestas de opinion guardadas por la aplicacion de administracion.
type ResponseRepository interface {
	FindOpinionResponses(ctx context.Context, candidateID string) ([]domain.OpinionResponse, error)
	FindOptionWeights(ctx context.Context, candidateID string) (map[string]float64, error)
}

type PgResponseRepository struct {
	pool *pgxpool.Pool
}

func NewPgResponseRepository(pool *pgxpool.Pool) *PgResponseRepository {
	return &PgResponseRepository{pool: pool}
}

func (r *PgResponseRepository) FindOpinionResponses(ctx context.Context, candidateID string) ([]domain.OpinionResponse, error) {
	const query = `
		SELECT
			q.id,
			o.id,
			o.text,
			COALESCE(c.name, ''),
			COALESCE(c.uuid::text, ''),
			COALESCE(q.category_id::text, ''),
			a.percentage::float8,
			o.weight::float8,
			ARRAY(
				SELECT qo.id FROM question_options qo
				WHERE qo.question_id = q.id
				ORDER BY qo.position, qo.id
			)
		FROM candidate_answers a
		JOIN question_options o ON o.id = a.option_id
		JOIN questions q ON q.id = o.question_id
		LEFT JOIN trait_categories c ON c.id = o.category_id
		WHERE a.candidate_id = $1 AND q.type = 'opinion'
		ORDER BY a.answered_at, q.id
	`

	rows, err := r.pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []domain.OpinionResponse
	for rows.Next() {
		var resp domain.OpinionResponse
		var percentage, weight sql.NullFloat64

		if err := rows.Scan(
			&resp.QuestionID,
			&resp.OptionID,
			&resp.OptionText,
			&resp.CategoryName,
			&resp.CategoryNameUUID,
			&resp.GroupID,
			&percentage,
			&weight,
			&resp.Options,
		); err != nil {
			return nil, err
		}
		if percentage.Valid {
			val := percentage.Float64
			resp.Percentage = &val
		}
		if weight.Valid {
			val := weight.Float64
			resp.Weight = &val
		}
		responses = append(responses, resp)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return responses, nil
}

// FindOptionWeights devuelve los pesos externos de las opciones que respondio el candidato.
func (r *PgResponseRepository) FindOptionWeights(ctx context.Context, candidateID string) (map[string]float64, error) {
	const query = `
		SELECT w.option_id, w.weight::float8
		FROM option_weights w
		JOIN candidate_answers a ON a.option_id = w.option_id
		WHERE a.candidate_id = $1
	`

	rows, err := r.pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weights := make(map[string]float64)
	for rows.Next() {
		var optionID string
		var weight float64
		if err := rows.Scan(&optionID, &weight); err != nil {
			return nil, err
		}
		weights[optionID] = weight
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return weights, nil
}
