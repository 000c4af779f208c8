package perm_test

import (
	"testing"

	"github.com/darasabot/darasa/core/perm"
	"github.com/darasabot/darasa/core/profile"
)

func prof(status, classID, role string) profile.Profile {
	return profile.Profile{ID: 1, Name: "Test", OrgStatus: status, ClassID: classID, TeamRole: role}
}

func TestHasOrgStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		min    string
		want   bool
	}{
		{name: "owner >= owner", status: profile.StatusOwner, min: profile.StatusOwner, want: true},
		{name: "owner >= member", status: profile.StatusOwner, min: profile.StatusMember, want: true},
		{name: "admin >= staff", status: profile.StatusAdmin, min: profile.StatusStaff, want: true},
		{name: "staff < admin", status: profile.StatusStaff, min: profile.StatusAdmin, want: false},
		{name: "member < staff", status: profile.StatusMember, min: profile.StatusStaff, want: false},
		{name: "unknown status never satisfies", status: "lol", min: profile.StatusMember, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := perm.HasOrgStatus(prof(tt.status, "", ""), tt.min); got != tt.want {
				t.Errorf("HasOrgStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanEditClass(t *testing.T) {
	tests := []struct {
		name    string
		prof    profile.Profile
		classID string
		want    bool
	}{
		{name: "staff anywhere", prof: prof(profile.StatusStaff, "", ""), classID: "c1", want: true},
		{name: "admin anywhere", prof: prof(profile.StatusAdmin, "other", profile.RoleMember), classID: "c1", want: true},
		{name: "lead of own class", prof: prof(profile.StatusMember, "c1", profile.RoleLead), classID: "c1", want: true},
		{name: "assistant of own class", prof: prof(profile.StatusMember, "c1", profile.RoleAssistant), classID: "c1", want: true},
		{name: "lead of another class", prof: prof(profile.StatusMember, "c2", profile.RoleLead), classID: "c1", want: false},
		{name: "plain member", prof: prof(profile.StatusMember, "c1", profile.RoleMember), classID: "c1", want: false},
		{name: "classless member", prof: prof(profile.StatusMember, "", ""), classID: "c1", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := perm.CanEditClass(tt.prof, tt.classID); got != tt.want {
				t.Errorf("CanEditClass() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanManageRoles(t *testing.T) {
	tests := []struct {
		name    string
		prof    profile.Profile
		classID string
		want    bool
	}{
		{name: "staff anywhere", prof: prof(profile.StatusStaff, "", ""), classID: "c1", want: true},
		{name: "lead of own class", prof: prof(profile.StatusMember, "c1", profile.RoleLead), classID: "c1", want: true},
		{name: "assistant cannot", prof: prof(profile.StatusMember, "c1", profile.RoleAssistant), classID: "c1", want: false},
		{name: "lead of another class", prof: prof(profile.StatusMember, "c2", profile.RoleLead), classID: "c1", want: false},
		{name: "plain member", prof: prof(profile.StatusMember, "c1", profile.RoleMember), classID: "c1", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := perm.CanManageRoles(tt.prof, tt.classID); got != tt.want {
				t.Errorf("CanManageRoles() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoinLeaveCreatePredicates(t *testing.T) {
	staff := prof(profile.StatusStaff, "", "")
	member := prof(profile.StatusMember, "", "")

	if !perm.CanJoinWithoutApproval(staff) {
		t.Error("CanJoinWithoutApproval(staff) = false, want true")
	}
	if perm.CanJoinWithoutApproval(member) {
		t.Error("CanJoinWithoutApproval(member) = true, want false")
	}
	if perm.CanLeaveClass(staff) {
		t.Error("CanLeaveClass(staff) = true, want false")
	}
	if !perm.CanLeaveClass(member) {
		t.Error("CanLeaveClass(member) = false, want true")
	}
	if !perm.CanCreateClass(staff) {
		t.Error("CanCreateClass(staff) = false, want true")
	}
	if perm.CanCreateClass(member) {
		t.Error("CanCreateClass(member) = true, want false")
	}
}
