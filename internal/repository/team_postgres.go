package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

type PostgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeam(db *sql.DB) *PostgresTeamRepository {
	return &PostgresTeamRepository{db: db}
}

const teamColumns = `id, name, color, owner_id, todos_count, categories_count, created_at, updated_at`

func (r *PostgresTeamRepository) Create(ctx context.Context, name, color, ownerID string) (model.Team, error) {
	var team model.Team
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO teams (name, color, owner_id)
			VALUES ($1, $2, $3)
			RETURNING ` + teamColumns

		row := tx.QueryRowContext(ctx, query, name, color, ownerID)
		var err error
		team, err = scanTeam(row)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`,
			team.ID, ownerID,
		); err != nil {
			return fmt.Errorf("failed to enroll owner: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET teams_created_count = teams_created_count + 1 WHERE id = $1`,
			ownerID,
		); err != nil {
			return fmt.Errorf("failed to adjust team count: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Team{}, err
	}
	return team, nil
}

func (r *PostgresTeamRepository) GetByID(ctx context.Context, id string) (model.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	return scanTeam(row)
}

func (r *PostgresTeamRepository) UpdateProfile(ctx context.Context, id, name, color string) (model.Team, error) {
	query := `
		UPDATE teams
		SET name = $1, color = $2, updated_at = now()
		WHERE id = $3
		RETURNING ` + teamColumns

	row := r.db.QueryRowContext(ctx, query, name, color, id)
	return scanTeam(row)
}

func (r *PostgresTeamRepository) MembershipCount(ctx context.Context, teamID, userID string) (int, error) {
	query := `SELECT count(*) FROM team_members WHERE team_id = $1 AND user_id = $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, teamID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count membership: %w", err)
	}
	return count, nil
}

func (r *PostgresTeamRepository) MemberEmailExists(ctx context.Context, teamID, email string) (bool, error) {
	query := `
		SELECT count(*)
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1 AND u.email = $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, teamID, email).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check member email: %w", err)
	}
	return count > 0, nil
}

func (r *PostgresTeamRepository) ListMembers(ctx context.Context, teamID string) ([]model.Member, error) {
	query := `
		SELECT u.id, u.email, u.name, u.avatar_url, tm.joined_at
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY tm.joined_at`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.UserID, &m.Email, &m.Name, &m.AvatarURL, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

func (r *PostgresTeamRepository) ListForUser(ctx context.Context, userID string) ([]model.Team, error) {
	query := `
		SELECT t.id, t.name, t.color, t.owner_id, t.todos_count, t.categories_count, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members tm ON tm.team_id = t.id
		WHERE tm.user_id = $1
		ORDER BY t.created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []model.Team{}
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.OwnerID, &t.TodosCount, &t.CategoriesCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}
	return teams, nil
}

func scanTeam(row scannable) (model.Team, error) {
	var t model.Team
	err := row.Scan(
		&t.ID, &t.Name, &t.Color, &t.OwnerID,
		&t.TodosCount, &t.CategoriesCount, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Team{}, fmt.Errorf("failed to scan team: %w", err)
	}
	return t, nil
}

var _ TeamRepository = (*PostgresTeamRepository)(nil)
