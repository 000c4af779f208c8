package dummydb

import (
	"context"

	"github.com/darasabot/darasa/core/profile"
)

type profileRepository struct {
	db *profileTable
}

func NewProfileRepository(db *DB) profile.Repository {
	return &profileRepository{db: db.profile}
}

func (repo *profileRepository) CreateProfile(ctx context.Context, prof profile.Profile) (profile.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[prof.ID]; ok {
		return profile.Profile{}, profile.ErrAlreadyExists
	}
	repo.db.table[prof.ID] = &prof
	return prof, nil
}

func (repo *profileRepository) GetProfile(ctx context.Context, id int64) (profile.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prof, ok := repo.db.table[id]; ok {
		return clone(prof), nil
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, prof profile.Profile) (profile.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[prof.ID]; !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	repo.db.table[prof.ID] = &prof
	return prof, nil
}

// clone copies the stored profile so callers never alias table state.
func clone(prof *profile.Profile) profile.Profile {
	out := *prof
	if prof.PersonalHomework != nil {
		out.PersonalHomework = make(map[string]string, len(prof.PersonalHomework))
		for subj, hw := range prof.PersonalHomework {
			out.PersonalHomework[subj] = hw
		}
	}
	return out
}
