package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/lib/pq"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	// One submission per project, enforced by the unique project_id constraint.
	ErrSubmissionConflict = errors.New("project already has a submission")
)

type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, id int) (*models.Submission, error)
	GetByProjectID(ctx context.Context, projectID int) (*models.Submission, error)
	Update(ctx context.Context, sub *models.Submission) error
	UpdateAverageScore(ctx context.Context, id int, avg float64) error

	UpsertScore(ctx context.Context, score *models.JudgeScore) error
	ListScores(ctx context.Context, submissionID int) ([]models.JudgeScore, error)

	AppendVersion(ctx context.Context, version *models.SubmissionVersion) error
	ListVersions(ctx context.Context, submissionID int) ([]models.SubmissionVersion, error)
}

type postgresSubmissionRepository struct {
	db *sql.DB
}

func NewPostgresSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &postgresSubmissionRepository{db: db}
}

func (r *postgresSubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	query := `
		INSERT INTO submissions (project_id, summary, video_url)
		VALUES ($1, $2, $3)
		RETURNING id, average_score, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		sub.ProjectID,
		sub.Summary,
		sub.VideoURL,
	).Scan(&sub.ID, &sub.AverageScore, &sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrSubmissionConflict
			case "23503":
				return ErrProjectNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresSubmissionRepository) GetByID(ctx context.Context, id int) (*models.Submission, error) {
	query := `
		SELECT id, project_id, summary, video_url, average_score, created_at, updated_at
		FROM submissions WHERE id = $1`
	return r.scanSubmission(ctx, query, id)
}

func (r *postgresSubmissionRepository) GetByProjectID(ctx context.Context, projectID int) (*models.Submission, error) {
	query := `
		SELECT id, project_id, summary, video_url, average_score, created_at, updated_at
		FROM submissions WHERE project_id = $1`
	return r.scanSubmission(ctx, query, projectID)
}

func (r *postgresSubmissionRepository) scanSubmission(ctx context.Context, query string, args ...interface{}) (*models.Submission, error) {
	sub := &models.Submission{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&sub.ID, &sub.ProjectID, &sub.Summary, &sub.VideoURL,
		&sub.AverageScore, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	scores, err := r.ListScores(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	sub.Scores = scores

	return sub, nil
}

func (r *postgresSubmissionRepository) Update(ctx context.Context, sub *models.Submission) error {
	query := `
		UPDATE submissions SET summary = $1, video_url = $2, updated_at = NOW()
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, sub.Summary, sub.VideoURL, sub.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSubmissionNotFound)
}

func (r *postgresSubmissionRepository) UpdateAverageScore(ctx context.Context, id int, avg float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET average_score = $1, updated_at = NOW() WHERE id = $2`, avg, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSubmissionNotFound)
}

// UpsertScore inserts a judge's score vector, overwriting a previous
// vector from the same judge.
func (r *postgresSubmissionRepository) UpsertScore(ctx context.Context, score *models.JudgeScore) error {
	query := `
		INSERT INTO judge_scores (submission_id, judge_id, innovation, technical, design, presentation, impact, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (submission_id, judge_id) DO UPDATE SET
			innovation = EXCLUDED.innovation,
			technical = EXCLUDED.technical,
			design = EXCLUDED.design,
			presentation = EXCLUDED.presentation,
			impact = EXCLUDED.impact,
			comment = EXCLUDED.comment
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		score.SubmissionID,
		score.JudgeID,
		score.Innovation,
		score.Technical,
		score.Design,
		score.Presentation,
		score.Impact,
		score.Comment,
	).Scan(&score.ID, &score.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			if pqErr.Constraint == "judge_scores_submission_id_fkey" {
				return ErrSubmissionNotFound
			}
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (r *postgresSubmissionRepository) ListScores(ctx context.Context, submissionID int) ([]models.JudgeScore, error) {
	query := `
		SELECT id, submission_id, judge_id, innovation, technical, design, presentation, impact, comment, created_at
		FROM judge_scores
		WHERE submission_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]models.JudgeScore, 0)
	for rows.Next() {
		var s models.JudgeScore
		if scanErr := rows.Scan(
			&s.ID, &s.SubmissionID, &s.JudgeID,
			&s.Innovation, &s.Technical, &s.Design, &s.Presentation, &s.Impact,
			&s.Comment, &s.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *postgresSubmissionRepository) AppendVersion(ctx context.Context, version *models.SubmissionVersion) error {
	query := `
		INSERT INTO submission_versions (submission_id, summary, video_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		version.SubmissionID,
		version.Summary,
		version.VideoURL,
	).Scan(&version.ID, &version.CreatedAt)
}

func (r *postgresSubmissionRepository) ListVersions(ctx context.Context, submissionID int) ([]models.SubmissionVersion, error) {
	query := `
		SELECT id, submission_id, summary, video_url, created_at
		FROM submission_versions
		WHERE submission_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := make([]models.SubmissionVersion, 0)
	for rows.Next() {
		var v models.SubmissionVersion
		if scanErr := rows.Scan(&v.ID, &v.SubmissionID, &v.Summary, &v.VideoURL, &v.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
