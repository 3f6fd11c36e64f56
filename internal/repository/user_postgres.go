package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUser(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, subject, email, name, avatar_url,
	todos_created_count, categories_created_count, teams_created_count,
	created_at, updated_at`

func (r *PostgresUserRepository) GetOrCreate(ctx context.Context, subject, email string) (model.User, error) {
	query := `
		INSERT INTO users (subject, email)
		VALUES ($1, $2)
		ON CONFLICT (subject) DO UPDATE SET email = EXCLUDED.email
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query, subject, email)
	return scanUser(row)
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	return scanUser(row)
}

func (r *PostgresUserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	query := `
		UPDATE users
		SET name = $1, avatar_url = $2, updated_at = now()
		WHERE id = $3
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query, user.Name, user.AvatarURL, user.ID)
	return scanUser(row)
}

// SyncCounters recomputes the user's denormalized counters from the live
// collections. This is the explicit reconciliation path; normal mutations
// maintain the counters transactionally.
func (r *PostgresUserRepository) SyncCounters(ctx context.Context, userID string) (model.User, error) {
	query := `
		UPDATE users
		SET todos_created_count = (
			SELECT count(*) FROM todos WHERE owner_type = 'user' AND owner_id = users.id
		),
		categories_created_count = (
			SELECT count(*) FROM categories WHERE owner_type = 'user' AND owner_id = users.id
		),
		teams_created_count = (
			SELECT count(*) FROM teams WHERE owner_id = users.id
		),
		updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query, userID)
	return scanUser(row)
}

func scanUser(row scannable) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Subject, &u.Email, &u.Name, &u.AvatarURL,
		&u.TodosCreatedCount, &u.CategoriesCreatedCount, &u.TeamsCreatedCount,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
