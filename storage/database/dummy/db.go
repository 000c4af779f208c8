package dummydb

import (
	"sync"

	"github.com/darasabot/darasa/core/classroom"
	"github.com/darasabot/darasa/core/profile"
)

type (
	DB struct {
		profile *profileTable
		class   *classTable
	}

	profileTable struct {
		sync.RWMutex
		table map[int64]*profile.Profile
	}

	classTable struct {
		sync.RWMutex
		table map[string]*classroom.Class
	}
)

func Open() (*DB, error) {
	db := &DB{
		profile: &profileTable{table: make(map[int64]*profile.Profile)},
		class:   &classTable{table: make(map[string]*classroom.Class)},
	}
	return db, nil
}
