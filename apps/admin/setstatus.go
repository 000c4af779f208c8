package main

import (
	"context"
	"fmt"
)

// setStatus promotes or demotes a profile's organization status.
func (cli *commandLine) setStatus(userID int64, status string) error {
	prof, err := cli.profSvc.SetStatus(context.Background(), userID, status)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d) is now %s\n", prof.Name, prof.ID, prof.OrgStatus)
	return nil
}
