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
	ErrProjectNotFound       = errors.New("project not found")
	ErrProjectMemberNotFound = errors.New("project member not found")
	ErrProjectMemberConflict = errors.New("user is already a project member")
)

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id int) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id int) error
	ListByHackathon(ctx context.Context, hackathonID int) ([]models.Project, error)
	ListByUser(ctx context.Context, userID int) ([]models.Project, error)

	AddMember(ctx context.Context, member *models.ProjectMember) error
	RemoveMember(ctx context.Context, projectID, userID int) error
	ListMembers(ctx context.Context, projectID int) ([]models.ProjectMember, error)
}

type postgresProjectRepository struct {
	db *sql.DB
}

func NewPostgresProjectRepository(db *sql.DB) ProjectRepository {
	return &postgresProjectRepository{db: db}
}

const projectColumns = `id, hackathon_id, name, description, repo_url, demo_url, status, submitted_at, media_key, created_at`

func (r *postgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (hackathon_id, name, description, repo_url, demo_url, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		project.HackathonID,
		project.Name,
		project.Description,
		project.RepoURL,
		project.DemoURL,
		project.Status,
	).Scan(&project.ID, &project.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrHackathonNotFound
		}
		return err
	}
	return nil
}

func (r *postgresProjectRepository) GetByID(ctx context.Context, id int) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &project.HackathonID, &project.Name, &project.Description,
		&project.RepoURL, &project.DemoURL, &project.Status, &project.SubmittedAt,
		&project.MediaKey, &project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	members, err := r.ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load project members: %w", err)
	}
	project.Members = members

	return project, nil
}

func (r *postgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects SET
			name = $1, description = $2, repo_url = $3, demo_url = $4,
			status = $5, submitted_at = $6, media_key = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		project.Name, project.Description, project.RepoURL, project.DemoURL,
		project.Status, project.SubmittedAt, project.MediaKey, project.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProjectNotFound)
}

func (r *postgresProjectRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProjectNotFound)
}

func (r *postgresProjectRepository) ListByHackathon(ctx context.Context, hackathonID int) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE hackathon_id = $1 ORDER BY created_at DESC`
	return r.listProjects(ctx, query, hackathonID)
}

func (r *postgresProjectRepository) ListByUser(ctx context.Context, userID int) ([]models.Project, error) {
	query := `
		SELECT p.id, p.hackathon_id, p.name, p.description, p.repo_url, p.demo_url,
			p.status, p.submitted_at, p.media_key, p.created_at
		FROM projects p
		JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = $1
		ORDER BY p.created_at DESC`
	return r.listProjects(ctx, query, userID)
}

func (r *postgresProjectRepository) listProjects(ctx context.Context, query string, args ...interface{}) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		var p models.Project
		if scanErr := rows.Scan(
			&p.ID, &p.HackathonID, &p.Name, &p.Description,
			&p.RepoURL, &p.DemoURL, &p.Status, &p.SubmittedAt,
			&p.MediaKey, &p.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		projects = append(projects, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		members, memberErr := r.ListMembers(ctx, projects[i].ID)
		if memberErr != nil {
			return nil, fmt.Errorf("failed to load members for project %d: %w", projects[i].ID, memberErr)
		}
		projects[i].Members = members
	}

	return projects, nil
}

func (r *postgresProjectRepository) AddMember(ctx context.Context, member *models.ProjectMember) error {
	query := `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING added_at`

	err := r.db.QueryRowContext(ctx, query,
		member.ProjectID,
		member.UserID,
		member.Role,
	).Scan(&member.AddedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrProjectMemberConflict
			case "23503":
				if pqErr.Constraint == "project_members_project_id_fkey" {
					return ErrProjectNotFound
				}
				return ErrUserNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresProjectRepository) RemoveMember(ctx context.Context, projectID, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProjectMemberNotFound)
}

func (r *postgresProjectRepository) ListMembers(ctx context.Context, projectID int) ([]models.ProjectMember, error) {
	query := `
		SELECT
			m.project_id, m.user_id, m.role, m.added_at,
			u.id, u.first_name, u.last_name, u.email, u.role, u.skills, u.is_active
		FROM project_members m
		JOIN users u ON m.user_id = u.id
		WHERE m.project_id = $1
		ORDER BY m.added_at ASC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.ProjectMember, 0)
	for rows.Next() {
		var m models.ProjectMember
		var u models.User
		if scanErr := rows.Scan(
			&m.ProjectID, &m.UserID, &m.Role, &m.AddedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, pq.Array(&u.Skills), &u.IsActive,
		); scanErr != nil {
			return nil, scanErr
		}
		m.User = &u
		members = append(members, m)
	}
	return members, rows.Err()
}
