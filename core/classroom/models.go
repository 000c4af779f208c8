package classroom

import (
	"time"

	"github.com/darasabot/darasa/core"
)

type Class struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Information string            `json:"information"`
	Homework    map[string]string `json:"homework"` // subject -> text

	// Members and JoinRequests are disjoint; each member's Profile.ClassID
	// must point back at this class.
	Members      []int64 `json:"members"`
	JoinRequests []int64 `json:"join_requests"`

	CreatedAt time.Time `json:"created_at"` // UTC
	CreatedBy int64     `json:"created_by"`
}

func (c *Class) IsMember(userID int64) bool {
	return containsID(c.Members, userID)
}

func (c *Class) HasJoinRequest(userID int64) bool {
	return containsID(c.JoinRequests, userID)
}

// Subjects returns the homework subjects in insertion-independent order.
func (c *Class) Subjects() []string {
	subjects := make([]string, 0, len(c.Homework))
	for subj := range c.Homework {
		subjects = append(subjects, subj)
	}
	return subjects
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

func (nc *NewClass) Validate() error {
	nc.ID = core.CleanString(nc.ID)
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
