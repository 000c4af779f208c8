package dummydb

import (
	"context"

	"github.com/darasabot/darasa/core/classroom"
)

type classRepository struct {
	db *classTable
}

func NewClassRepository(db *DB) classroom.Repository {
	return &classRepository{db: db.class}
}

func (repo *classRepository) CreateClass(ctx context.Context, cls classroom.Class) (classroom.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) GetClass(ctx context.Context, id string) (classroom.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.table[id]; ok {
		return cloneClass(cls), nil
	}
	return classroom.Class{}, classroom.ErrNotFound
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls classroom.Class) (classroom.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[cls.ID]; !ok {
		return classroom.Class{}, classroom.ErrNotFound
	}
	repo.db.table[cls.ID] = &cls
	return cls, nil
}

func cloneClass(cls *classroom.Class) classroom.Class {
	out := *cls
	if cls.Homework != nil {
		out.Homework = make(map[string]string, len(cls.Homework))
		for subj, hw := range cls.Homework {
			out.Homework[subj] = hw
		}
	}
	out.Members = append([]int64(nil), cls.Members...)
	out.JoinRequests = append([]int64(nil), cls.JoinRequests...)
	return out
}
