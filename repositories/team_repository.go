package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameConflict   = errors.New("team name conflict")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrTeamMemberConflict = errors.New("user already has a slot in this team")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error
	ListByHackathon(ctx context.Context, hackathonID int) ([]models.Team, error)

	AddMember(ctx context.Context, member *models.TeamMember) error
	UpdateMember(ctx context.Context, member *models.TeamMember) error
	RemoveMember(ctx context.Context, memberID int) error
	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)
	CountTeamsByUser(ctx context.Context, userID int) (int, error)
	CountPendingInvites(ctx context.Context, userID int) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (hackathon_id, name, description, max_members, skills_wanted, is_looking_for_members)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.HackathonID,
		team.Name,
		team.Description,
		team.MaxMembers,
		pq.Array(team.SkillsWanted),
		team.IsLookingForMembers,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrTeamNameConflict
			case "23503":
				return ErrHackathonNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, hackathon_id, name, description, max_members, skills_wanted, is_looking_for_members, created_at
		FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.HackathonID,
		&team.Name,
		&team.Description,
		&team.MaxMembers,
		pq.Array(&team.SkillsWanted),
		&team.IsLookingForMembers,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	members, err := r.ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load team members: %w", err)
	}
	team.Members = members
	team.RecomputeDerived()

	return team, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET
			name = $1, description = $2, max_members = $3, skills_wanted = $4, is_looking_for_members = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		team.Name,
		team.Description,
		team.MaxMembers,
		pq.Array(team.SkillsWanted),
		team.IsLookingForMembers,
		team.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrTeamNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) ListByHackathon(ctx context.Context, hackathonID int) ([]models.Team, error) {
	query := `
		SELECT id, hackathon_id, name, description, max_members, skills_wanted, is_looking_for_members, created_at
		FROM teams
		WHERE hackathon_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.HackathonID,
			&team.Name,
			&team.Description,
			&team.MaxMembers,
			pq.Array(&team.SkillsWanted),
			&team.IsLookingForMembers,
			&team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range teams {
		members, memberErr := r.ListMembers(ctx, teams[i].ID)
		if memberErr != nil {
			return nil, fmt.Errorf("failed to load members for team %d: %w", teams[i].ID, memberErr)
		}
		teams[i].Members = members
		teams[i].RecomputeDerived()
	}

	return teams, nil
}

func (r *postgresTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	query := `
		INSERT INTO team_members (team_id, user_id, status, is_leader, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, invited_at`

	err := r.db.QueryRowContext(ctx, query,
		member.TeamID,
		member.UserID,
		member.Status,
		member.IsLeader,
		member.JoinedAt,
	).Scan(&member.ID, &member.InvitedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrTeamMemberConflict
			case "23503":
				if pqErr.Constraint == "team_members_team_id_fkey" {
					return ErrTeamNotFound
				}
				return ErrUserNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) UpdateMember(ctx context.Context, member *models.TeamMember) error {
	query := `
		UPDATE team_members SET status = $1, is_leader = $2, joined_at = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query,
		member.Status,
		member.IsLeader,
		member.JoinedAt,
		member.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamMemberNotFound)
}

func (r *postgresTeamRepository) RemoveMember(ctx context.Context, memberID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM team_members WHERE id = $1`, memberID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamMemberNotFound)
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	query := `
		SELECT
			m.id, m.team_id, m.user_id, m.status, m.is_leader, m.invited_at, m.joined_at,
			u.id, u.first_name, u.last_name, u.email, u.role, u.skills, u.is_active
		FROM team_members m
		JOIN users u ON m.user_id = u.id
		WHERE m.team_id = $1
		ORDER BY m.invited_at ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		var u models.User
		if scanErr := rows.Scan(
			&m.ID, &m.TeamID, &m.UserID, &m.Status, &m.IsLeader, &m.InvitedAt, &m.JoinedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, pq.Array(&u.Skills), &u.IsActive,
		); scanErr != nil {
			return nil, scanErr
		}
		m.User = &u
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *postgresTeamRepository) CountTeamsByUser(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team_members WHERE user_id = $1 AND status = 'accepted'`, userID).Scan(&count)
	return count, err
}

func (r *postgresTeamRepository) CountPendingInvites(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team_members WHERE user_id = $1 AND status = 'pending'`, userID).Scan(&count)
	return count, err
}
