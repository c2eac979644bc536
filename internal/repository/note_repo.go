package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studybuddy-backend/internal/models"
)

type NoteRepo struct {
	pool *pgxpool.Pool
}

func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

const noteColumns = `id, user_id, title, content, user_notes, is_ai_generated, created_at, updated_at`

func (r *NoteRepo) Create(ctx context.Context, n *models.Note) error {
	n.ID = uuid.New()
	query := `INSERT INTO notes (id, user_id, title, content, is_ai_generated)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		n.ID, n.UserID, n.Title, n.Content, n.IsAIGenerated,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
}

func (r *NoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	n := &models.Note{}
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Content, &n.UserNotes, &n.IsAIGenerated, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NoteRepo) ListByUser(ctx context.Context, userID uuid.UUID, search string, limit, offset int) ([]*models.Note, int, error) {
	args := []interface{}{userID}
	where := "WHERE user_id = $1"
	if search != "" {
		where += " AND (title ILIKE $2 OR content ILIKE $2)"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM notes "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM notes %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		noteColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes := []*models.Note{}
	for rows.Next() {
		n := &models.Note{}
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Title, &n.Content, &n.UserNotes, &n.IsAIGenerated, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}

	return notes, total, rows.Err()
}

func (r *NoteRepo) UpdateUserNotes(ctx context.Context, id uuid.UUID, userNotes string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE notes SET user_notes = $2, updated_at = NOW() WHERE id = $1",
		id, userNotes)
	return err
}

func (r *NoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1", id)
	return err
}
