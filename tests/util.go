package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/darasabot/darasa/core/classroom"
	"github.com/darasabot/darasa/core/profile"
)

func CreateProfile(
	t *testing.T,
	repo profile.Repository,
	id int64,
	name, status string,
	createdAt ...time.Time,
) profile.Profile {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	prof := profile.Profile{
		ID:               id,
		Name:             name,
		OrgStatus:        status,
		PersonalHomework: make(map[string]string),
		CreatedAt:        tstamp,
		UpdatedAt:        tstamp,
	}
	prof, err := repo.CreateProfile(context.Background(), prof)
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	return prof
}

func CreateClass(
	t *testing.T,
	repo classroom.Repository,
	id, name string,
	createdBy int64,
	members ...int64,
) classroom.Class {
	t.Helper()

	cls := classroom.Class{
		ID:           id,
		Name:         name,
		Homework:     make(map[string]string),
		Members:      append([]int64{}, members...),
		JoinRequests: []int64{},
		CreatedAt:    time.Now().UTC(),
		CreatedBy:    createdBy,
	}
	cls, err := repo.CreateClass(context.Background(), cls)
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

// LinkToClass points an existing profile at a class with the given team role.
func LinkToClass(
	t *testing.T,
	repo profile.Repository,
	id int64,
	classID, role string,
) profile.Profile {
	t.Helper()

	ctx := context.Background()
	prof, err := repo.GetProfile(ctx, id)
	if err != nil {
		t.Fatalf("LinkToClass() failed: %v", err)
	}
	prof.ClassID = classID
	prof.TeamRole = role
	prof, err = repo.UpdateProfile(ctx, prof)
	if err != nil {
		t.Fatalf("LinkToClass() failed: %v", err)
	}
	return prof
}
