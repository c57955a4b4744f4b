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
	ErrHackathonNotFound     = errors.New("hackathon not found")
	ErrHackathonNameConflict = errors.New("hackathon name conflict")
	ErrRegistrationConflict  = errors.New("user already registered for this hackathon")
)

type HackathonRepository interface {
	Create(ctx context.Context, h *models.Hackathon) error
	GetByID(ctx context.Context, id int) (*models.Hackathon, error)
	Update(ctx context.Context, h *models.Hackathon) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter HackathonFilter) ([]models.Hackathon, error)
	UpdateStatus(ctx context.Context, id int, status models.HackathonStatus) error

	RegisterParticipant(ctx context.Context, hackathonID, userID int) error
	CountParticipants(ctx context.Context, hackathonID int) (int, error)
	IsParticipant(ctx context.Context, hackathonID, userID int) (bool, error)
	ListParticipantIDs(ctx context.Context, hackathonID int) ([]int, error)
	CountByParticipant(ctx context.Context, userID int) (int, error)
}

type HackathonFilter struct {
	Status     models.HackathonStatus
	OnlyPublic bool
	Limit      int
	Offset     int
}

type postgresHackathonRepository struct {
	db *sql.DB
}

func NewPostgresHackathonRepository(db *sql.DB) HackathonRepository {
	return &postgresHackathonRepository{db: db}
}

const hackathonColumns = `id, name, description, organizer_id, registration_start, registration_end,
	start_date, end_date, judging_end, public, max_participants, status, banner_key, created_at`

func (r *postgresHackathonRepository) Create(ctx context.Context, h *models.Hackathon) error {
	query := `
		INSERT INTO hackathons (name, description, organizer_id, registration_start, registration_end,
			start_date, end_date, judging_end, public, max_participants, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		h.Name,
		h.Description,
		h.OrganizerID,
		h.RegistrationStart,
		h.RegistrationEnd,
		h.StartDate,
		h.EndDate,
		h.JudgingEnd,
		h.Public,
		h.MaxParticipants,
		h.Status,
	).Scan(&h.ID, &h.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "hackathons_name_key" {
			return ErrHackathonNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresHackathonRepository) GetByID(ctx context.Context, id int) (*models.Hackathon, error) {
	query := `SELECT ` + hackathonColumns + ` FROM hackathons WHERE id = $1`

	h := &models.Hackathon{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&h.ID, &h.Name, &h.Description, &h.OrganizerID,
		&h.RegistrationStart, &h.RegistrationEnd, &h.StartDate, &h.EndDate, &h.JudgingEnd,
		&h.Public, &h.MaxParticipants, &h.Status, &h.BannerKey, &h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHackathonNotFound
		}
		return nil, err
	}
	return h, nil
}

func (r *postgresHackathonRepository) Update(ctx context.Context, h *models.Hackathon) error {
	query := `
		UPDATE hackathons SET
			name = $1, description = $2, registration_start = $3, registration_end = $4,
			start_date = $5, end_date = $6, judging_end = $7, public = $8,
			max_participants = $9, status = $10, banner_key = $11
		WHERE id = $12`

	result, err := r.db.ExecContext(ctx, query,
		h.Name, h.Description, h.RegistrationStart, h.RegistrationEnd,
		h.StartDate, h.EndDate, h.JudgingEnd, h.Public,
		h.MaxParticipants, h.Status, h.BannerKey, h.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "hackathons_name_key" {
			return ErrHackathonNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrHackathonNotFound)
}

func (r *postgresHackathonRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM hackathons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrHackathonNotFound)
}

func (r *postgresHackathonRepository) List(ctx context.Context, filter HackathonFilter) ([]models.Hackathon, error) {
	query := `SELECT ` + hackathonColumns + ` FROM hackathons WHERE 1=1`
	args := make([]interface{}, 0, 3)

	if filter.OnlyPublic {
		query += ` AND public = TRUE`
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY start_date DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hackathons := make([]models.Hackathon, 0)
	for rows.Next() {
		var h models.Hackathon
		if scanErr := rows.Scan(
			&h.ID, &h.Name, &h.Description, &h.OrganizerID,
			&h.RegistrationStart, &h.RegistrationEnd, &h.StartDate, &h.EndDate, &h.JudgingEnd,
			&h.Public, &h.MaxParticipants, &h.Status, &h.BannerKey, &h.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		hackathons = append(hackathons, h)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return hackathons, nil
}

func (r *postgresHackathonRepository) UpdateStatus(ctx context.Context, id int, status models.HackathonStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE hackathons SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrHackathonNotFound)
}

func (r *postgresHackathonRepository) RegisterParticipant(ctx context.Context, hackathonID, userID int) error {
	query := `INSERT INTO hackathon_participants (hackathon_id, user_id) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, hackathonID, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrRegistrationConflict
			case "23503":
				if pqErr.Constraint == "hackathon_participants_hackathon_id_fkey" {
					return ErrHackathonNotFound
				}
				return ErrUserNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresHackathonRepository) CountParticipants(ctx context.Context, hackathonID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hackathon_participants WHERE hackathon_id = $1`, hackathonID).Scan(&count)
	return count, err
}

func (r *postgresHackathonRepository) IsParticipant(ctx context.Context, hackathonID, userID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM hackathon_participants WHERE hackathon_id = $1 AND user_id = $2)`,
		hackathonID, userID).Scan(&exists)
	return exists, err
}

func (r *postgresHackathonRepository) ListParticipantIDs(ctx context.Context, hackathonID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM hackathon_participants WHERE hackathon_id = $1`, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresHackathonRepository) CountByParticipant(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hackathon_participants WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
