package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

type PostgresInvitationRepository struct {
	db *sql.DB
}

func NewPostgresInvitation(db *sql.DB) *PostgresInvitationRepository {
	return &PostgresInvitationRepository{db: db}
}

const invitationColumns = `id, team_id, invited_by, email, expires_at, created_at`

func (r *PostgresInvitationRepository) Create(ctx context.Context, invitation model.Invitation) (model.Invitation, error) {
	query := `
		INSERT INTO team_invitations (id, team_id, invited_by, email, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + invitationColumns

	row := r.db.QueryRowContext(ctx, query,
		invitation.ID, invitation.TeamID, invitation.InvitedBy, invitation.Email, invitation.ExpiresAt,
	)
	return scanInvitation(row)
}

func (r *PostgresInvitationRepository) GetByID(ctx context.Context, id string) (model.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM team_invitations WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	return scanInvitation(row)
}

func (r *PostgresInvitationRepository) FindOpenByTeam(ctx context.Context, teamID string) (model.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM team_invitations
		WHERE team_id = $1 AND email IS NULL
		ORDER BY created_at
		LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, teamID)
	return scanInvitation(row)
}

func (r *PostgresInvitationRepository) ListByTeam(ctx context.Context, teamID string) ([]model.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM team_invitations
		WHERE team_id = $1
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invitations := []model.Invitation{}
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", err)
	}
	return invitations, nil
}

func (r *PostgresInvitationRepository) Accept(ctx context.Context, id, userID string) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		var teamID string
		err := tx.QueryRowContext(ctx,
			`DELETE FROM team_invitations WHERE id = $1 RETURNING team_id`, id,
		).Scan(&teamID)
		if err != nil {
			if err == sql.ErrNoRows {
				return err
			}
			return fmt.Errorf("failed to consume invitation: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`,
			teamID, userID,
		); err != nil {
			return fmt.Errorf("failed to insert membership: %w", err)
		}
		return nil
	})
}

func (r *PostgresInvitationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM team_invitations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PostgresInvitationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM team_invitations WHERE expires_at < $1`, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invitations: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func scanInvitation(row scannable) (model.Invitation, error) {
	var i model.Invitation
	var email sql.NullString
	err := row.Scan(&i.ID, &i.TeamID, &i.InvitedBy, &email, &i.ExpiresAt, &i.CreatedAt)
	if err != nil {
		return model.Invitation{}, fmt.Errorf("failed to scan invitation: %w", err)
	}
	if email.Valid {
		i.Email = &email.String
	}
	return i, nil
}

var _ InvitationRepository = (*PostgresInvitationRepository)(nil)
