package main

import (
	"context"
	"fmt"

	"github.com/darasabot/darasa/core/classroom"
)

// addClass creates a classroom.Class on behalf of an existing profile.
func (cli *commandLine) addClass(id, name string, creatorID int64) error {
	ctx := context.Background()

	creator, err := cli.profSvc.Get(ctx, creatorID)
	if err != nil {
		return err
	}
	cls, err := cli.classSvc.Create(ctx, classroom.NewClass{ID: id, Name: name}, creator)
	if err != nil {
		return err
	}
	fmt.Printf("class %q created: %s\n", cls.Name, cls.ID)
	return nil
}
