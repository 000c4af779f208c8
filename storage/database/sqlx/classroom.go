package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/darasabot/darasa/core/classroom"
)

type classRepository struct {
	db *sqlx.DB
}

func NewClassRepository(db *sqlx.DB) classroom.Repository {
	return &classRepository{db: db}
}

type classRow struct {
	ID           string        `db:"id"`
	Name         string        `db:"name"`
	Information  string        `db:"information"`
	Homework     jsonMap       `db:"homework"`
	Members      pq.Int64Array `db:"members"`
	JoinRequests pq.Int64Array `db:"join_requests"`
	CreatedAt    time.Time     `db:"created_at"`
	CreatedBy    int64         `db:"created_by"`
}

func newClassRow(cls classroom.Class) classRow {
	return classRow{
		ID:           cls.ID,
		Name:         cls.Name,
		Information:  cls.Information,
		Homework:     jsonMap(cls.Homework),
		Members:      pq.Int64Array(cls.Members),
		JoinRequests: pq.Int64Array(cls.JoinRequests),
		CreatedAt:    cls.CreatedAt,
		CreatedBy:    cls.CreatedBy,
	}
}

func (row classRow) class() classroom.Class {
	return classroom.Class{
		ID:           row.ID,
		Name:         row.Name,
		Information:  row.Information,
		Homework:     row.Homework,
		Members:      row.Members,
		JoinRequests: row.JoinRequests,
		CreatedAt:    row.CreatedAt.UTC(),
		CreatedBy:    row.CreatedBy,
	}
}

func (repo *classRepository) CreateClass(ctx context.Context, cls classroom.Class) (classroom.Class, error) {
	q := `
INSERT INTO class (id, name, information, homework, members, join_requests, created_at, created_by)
VALUES (:id, :name, :information, :homework, :members, :join_requests, :created_at, :created_by)`
	if _, err := repo.db.NamedExecContext(ctx, q, newClassRow(cls)); err != nil {
		return classroom.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo *classRepository) GetClass(ctx context.Context, id string) (classroom.Class, error) {
	var row classRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM class WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return classroom.Class{}, classroom.ErrNotFound
		}
		return classroom.Class{}, errors.Wrap(err, "getting class")
	}
	return row.class(), nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls classroom.Class) (classroom.Class, error) {
	q := `
UPDATE class
SET name          = :name,
    information   = :information,
    homework      = :homework,
    members       = :members,
    join_requests = :join_requests
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newClassRow(cls))
	if err != nil {
		return classroom.Class{}, errors.Wrap(err, "updating class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return classroom.Class{}, classroom.ErrNotFound
	}
	return cls, nil
}
