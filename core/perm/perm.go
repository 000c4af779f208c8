// Package perm holds the pure permission predicates shared by the command
// router and the conversation engine. Predicates never touch storage; callers
// pass the current profile state.
package perm

import "github.com/darasabot/darasa/core/profile"

// HasOrgStatus reports whether prof's organization status satisfies min under
// the total order Owner > Admin > Staff > Member.
func HasOrgStatus(prof profile.Profile, min string) bool {
	return prof.HasStatus(min)
}

// CanEditClass allows staff and above everywhere, and class officers
// (lead or assistant) within their own class.
func CanEditClass(prof profile.Profile, classID string) bool {
	if HasOrgStatus(prof, profile.StatusStaff) {
		return true
	}
	if prof.ClassID != classID {
		return false
	}
	return prof.IsClassOfficer()
}

// CanManageRoles allows staff and above everywhere, and only the lead within
// their own class.
func CanManageRoles(prof profile.Profile, classID string) bool {
	if HasOrgStatus(prof, profile.StatusStaff) {
		return true
	}
	if prof.ClassID != classID {
		return false
	}
	return prof.TeamRole == profile.RoleLead
}

// CanJoinWithoutApproval reports whether joining skips the join-request queue.
func CanJoinWithoutApproval(prof profile.Profile) bool {
	return HasOrgStatus(prof, profile.StatusStaff)
}

// CanLeaveClass is false for privileged statuses; they can only be removed by
// an explicit admin action.
func CanLeaveClass(prof profile.Profile) bool {
	return !HasOrgStatus(prof, profile.StatusStaff)
}

// CanCreateClass requires the Staff status or above.
func CanCreateClass(prof profile.Profile) bool {
	return HasOrgStatus(prof, profile.StatusStaff)
}
