package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/darasabot/darasa/core/profile"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) profile.Repository {
	return &profileRepository{db: db}
}

type profileRow struct {
	ID               int64     `db:"id"`
	Name             string    `db:"name"`
	BirthDate        string    `db:"birth_date"`
	Phone            string    `db:"phone"`
	Email            string    `db:"email"`
	AdditionalInfo   string    `db:"additional_info"`
	OrgStatus        string    `db:"org_status"`
	ClassID          string    `db:"class_id"`
	TeamRole         string    `db:"team_role"`
	PersonalHomework jsonMap   `db:"personal_homework"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func newProfileRow(prof profile.Profile) profileRow {
	return profileRow{
		ID:               prof.ID,
		Name:             prof.Name,
		BirthDate:        prof.Contact.BirthDate,
		Phone:            prof.Contact.Phone,
		Email:            prof.Contact.Email,
		AdditionalInfo:   prof.Contact.AdditionalInfo,
		OrgStatus:        prof.OrgStatus,
		ClassID:          prof.ClassID,
		TeamRole:         prof.TeamRole,
		PersonalHomework: jsonMap(prof.PersonalHomework),
		CreatedAt:        prof.CreatedAt,
		UpdatedAt:        prof.UpdatedAt,
	}
}

func (row profileRow) profile() profile.Profile {
	return profile.Profile{
		ID:   row.ID,
		Name: row.Name,
		Contact: profile.Contact{
			BirthDate:      row.BirthDate,
			Phone:          row.Phone,
			Email:          row.Email,
			AdditionalInfo: row.AdditionalInfo,
		},
		OrgStatus:        row.OrgStatus,
		ClassID:          row.ClassID,
		TeamRole:         row.TeamRole,
		PersonalHomework: row.PersonalHomework,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

func (repo *profileRepository) CreateProfile(ctx context.Context, prof profile.Profile) (profile.Profile, error) {
	q := `
INSERT INTO profile (id, name, birth_date, phone, email, additional_info, org_status,
                     class_id, team_role, personal_homework, created_at, updated_at)
VALUES (:id, :name, :birth_date, :phone, :email, :additional_info, :org_status,
        :class_id, :team_role, :personal_homework, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newProfileRow(prof)); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return profile.Profile{}, profile.ErrAlreadyExists
		}
		return profile.Profile{}, errors.Wrap(err, "inserting profile")
	}
	return prof, nil
}

func (repo *profileRepository) GetProfile(ctx context.Context, id int64) (profile.Profile, error) {
	var row profileRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM profile WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, errors.Wrap(err, "getting profile")
	}
	return row.profile(), nil
}

// UpdateProfile replaces the full row; a single UPDATE keeps the per-id
// replace atomic.
func (repo *profileRepository) UpdateProfile(ctx context.Context, prof profile.Profile) (profile.Profile, error) {
	q := `
UPDATE profile
SET name              = :name,
    birth_date        = :birth_date,
    phone             = :phone,
    email             = :email,
    additional_info   = :additional_info,
    org_status        = :org_status,
    class_id          = :class_id,
    team_role         = :team_role,
    personal_homework = :personal_homework,
    updated_at        = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newProfileRow(prof))
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "updating profile")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return profile.Profile{}, profile.ErrNotFound
	}
	return prof, nil
}
