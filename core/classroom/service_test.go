package classroom_test

import (
	"context"
	"os"
	"testing"

	"github.com/darasabot/darasa/core"
	"github.com/darasabot/darasa/core/classroom"
	"github.com/darasabot/darasa/core/profile"
	dummydb "github.com/darasabot/darasa/storage/database/dummy"
	testutil "github.com/darasabot/darasa/tests"
)

var conf = &core.Config{AppName: "Darasa", Env: "TEST", TestMode: true}

func TestMain(m *testing.M) {
	core.InitValidators()
	os.Exit(m.Run())
}

type fixture struct {
	profRepo  profile.Repository
	classRepo classroom.Repository
	profSvc   *profile.Service
	classSvc  *classroom.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	f := &fixture{
		profRepo:  dummydb.NewProfileRepository(db),
		classRepo: dummydb.NewClassRepository(db),
	}
	f.profSvc = profile.NewService(f.profRepo, conf)
	f.classSvc = classroom.NewService(f.classRepo, f.profSvc, nil)
	return f
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	staff := testutil.CreateProfile(t, f.profRepo, 1, "Staff", profile.StatusStaff)
	member := testutil.CreateProfile(t, f.profRepo, 2, "Ana", profile.StatusMember)

	cls, err := f.classSvc.Create(ctx, classroom.NewClass{Name: "7B"}, staff)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if cls.ID == "" {
		t.Error("class id not generated")
	}
	if !cls.IsMember(staff.ID) {
		t.Error("creator is not a member")
	}

	// classless creator becomes the class lead
	prof, err := f.profSvc.Get(ctx, staff.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if prof.ClassID != cls.ID || prof.TeamRole != profile.RoleLead {
		t.Errorf("creator links = (%q, %q), want (%q, lead)", prof.ClassID, prof.TeamRole, cls.ID)
	}

	// a creator already in a class keeps their links
	cls2, err := f.classSvc.Create(ctx, classroom.NewClass{Name: "8A"}, prof)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if refreshed, _ := f.profSvc.Get(ctx, staff.ID); refreshed.ClassID != cls.ID {
		t.Errorf("creator moved to %q, want %q", refreshed.ClassID, cls.ID)
	}
	if !cls2.IsMember(staff.ID) {
		t.Error("creator is not a member of the second class")
	}

	if _, err = f.classSvc.Create(ctx, classroom.NewClass{Name: "9C"}, member); err != classroom.ErrPermissionDenied {
		t.Errorf("Create() error = %v, want %v", err, classroom.ErrPermissionDenied)
	}
}

func TestService_Join(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	staff := testutil.CreateProfile(t, f.profRepo, 1, "Staff", profile.StatusStaff)
	member := testutil.CreateProfile(t, f.profRepo, 2, "Ana", profile.StatusMember)
	cls := testutil.CreateClass(t, f.classRepo, "c1", "7B", 99)

	// privileged statuses join directly
	joined, got, err := f.classSvc.Join(ctx, staff, cls.ID)
	if err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
	if !joined || !got.IsMember(staff.ID) {
		t.Errorf("Join() = (%v, members=%v), want a direct join", joined, got.Members)
	}
	if prof, _ := f.profSvc.Get(ctx, staff.ID); prof.ClassID != cls.ID || prof.TeamRole != profile.RoleMember {
		t.Errorf("profile links = (%q, %q), want (%q, member)", prof.ClassID, prof.TeamRole, cls.ID)
	}

	// regular members queue a join request
	joined, got, err = f.classSvc.Join(ctx, member, cls.ID)
	if err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
	if joined || !got.HasJoinRequest(member.ID) || got.IsMember(member.ID) {
		t.Errorf("Join() = (%v, requests=%v), want a queued request", joined, got.JoinRequests)
	}

	// repeated request is not duplicated
	if _, got, err = f.classSvc.Join(ctx, member, cls.ID); err != nil {
		t.Fatalf("Join() failed: %v", err)
	} else if len(got.JoinRequests) != 1 {
		t.Errorf("JoinRequests = %v, want a single entry", got.JoinRequests)
	}

	// already linked profiles cannot join again
	linked, _ := f.profSvc.Get(ctx, staff.ID)
	if _, _, err = f.classSvc.Join(ctx, linked, cls.ID); err != classroom.ErrAlreadyInClass {
		t.Errorf("Join() error = %v, want %v", err, classroom.ErrAlreadyInClass)
	}

	if _, _, err = f.classSvc.Join(ctx, member, "nope"); err != classroom.ErrNotFound {
		t.Errorf("Join() error = %v, want %v", err, classroom.ErrNotFound)
	}
}

func TestService_ApproveReject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	lead := testutil.CreateProfile(t, f.profRepo, 1, "Lead", profile.StatusMember)
	requester := testutil.CreateProfile(t, f.profRepo, 2, "Ana", profile.StatusMember)
	rejected := testutil.CreateProfile(t, f.profRepo, 3, "Ben", profile.StatusMember)
	plain := testutil.CreateProfile(t, f.profRepo, 4, "Cleo", profile.StatusMember)

	cls := testutil.CreateClass(t, f.classRepo, "c1", "7B", lead.ID, lead.ID, plain.ID)
	lead = testutil.LinkToClass(t, f.profRepo, lead.ID, cls.ID, profile.RoleLead)
	plain = testutil.LinkToClass(t, f.profRepo, plain.ID, cls.ID, profile.RoleMember)

	if _, _, err := f.classSvc.Join(ctx, requester, cls.ID); err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
	if _, _, err := f.classSvc.Join(ctx, rejected, cls.ID); err != nil {
		t.Fatalf("Join() failed: %v", err)
	}

	// plain members cannot review the queue
	if _, err := f.classSvc.Approve(ctx, plain, requester.ID); err != classroom.ErrPermissionDenied {
		t.Errorf("Approve() error = %v, want %v", err, classroom.ErrPermissionDenied)
	}

	got, err := f.classSvc.Approve(ctx, lead, requester.ID)
	if err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if !got.IsMember(requester.ID) || got.HasJoinRequest(requester.ID) {
		t.Errorf("Approve(): members=%v requests=%v", got.Members, got.JoinRequests)
	}
	if prof, _ := f.profSvc.Get(ctx, requester.ID); prof.ClassID != cls.ID || prof.TeamRole != profile.RoleMember {
		t.Errorf("profile links = (%q, %q), want (%q, member)", prof.ClassID, prof.TeamRole, cls.ID)
	}

	got, err = f.classSvc.Reject(ctx, lead, rejected.ID)
	if err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}
	if got.IsMember(rejected.ID) || got.HasJoinRequest(rejected.ID) {
		t.Errorf("Reject(): members=%v requests=%v", got.Members, got.JoinRequests)
	}
	if prof, _ := f.profSvc.Get(ctx, rejected.ID); prof.InClass() {
		t.Error("rejected profile should stay classless")
	}

	if _, err = f.classSvc.Approve(ctx, lead, 999); err != classroom.ErrNoJoinRequest {
		t.Errorf("Approve() error = %v, want %v", err, classroom.ErrNoJoinRequest)
	}
}

func TestService_Leave(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	member := testutil.CreateProfile(t, f.profRepo, 1, "Ana", profile.StatusMember)
	staff := testutil.CreateProfile(t, f.profRepo, 2, "Staff", profile.StatusStaff)
	cls := testutil.CreateClass(t, f.classRepo, "c1", "7B", 99, member.ID, staff.ID)
	member = testutil.LinkToClass(t, f.profRepo, member.ID, cls.ID, profile.RoleMember)
	staff = testutil.LinkToClass(t, f.profRepo, staff.ID, cls.ID, profile.RoleMember)

	if err := f.classSvc.Leave(ctx, member); err != nil {
		t.Fatalf("Leave() failed: %v", err)
	}
	if got, _ := f.classSvc.Get(ctx, cls.ID); got.IsMember(member.ID) {
		t.Error("member still in class after Leave()")
	}
	if prof, _ := f.profSvc.Get(ctx, member.ID); prof.InClass() {
		t.Error("profile still linked after Leave()")
	}

	// privileged statuses cannot leave on their own
	if err := f.classSvc.Leave(ctx, staff); err != classroom.ErrProtectedStatus {
		t.Errorf("Leave() error = %v, want %v", err, classroom.ErrProtectedStatus)
	}

	classless, _ := f.profSvc.Get(ctx, member.ID)
	if err := f.classSvc.Leave(ctx, classless); err != classroom.ErrNotInClass {
		t.Errorf("Leave() error = %v, want %v", err, classroom.ErrNotInClass)
	}
}

func TestService_Edits(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	lead := testutil.CreateProfile(t, f.profRepo, 1, "Lead", profile.StatusMember)
	plain := testutil.CreateProfile(t, f.profRepo, 2, "Ana", profile.StatusMember)
	cls := testutil.CreateClass(t, f.classRepo, "c1", "7B", lead.ID, lead.ID, plain.ID)
	lead = testutil.LinkToClass(t, f.profRepo, lead.ID, cls.ID, profile.RoleLead)
	plain = testutil.LinkToClass(t, f.profRepo, plain.ID, cls.ID, profile.RoleMember)

	got, err := f.classSvc.SetHomework(ctx, lead, "Math", "p. 12-14")
	if err != nil {
		t.Fatalf("SetHomework() failed: %v", err)
	}
	if got.Homework["Math"] != "p. 12-14" {
		t.Errorf("homework = %q, want %q", got.Homework["Math"], "p. 12-14")
	}

	if _, err = f.classSvc.SetHomework(ctx, plain, "Math", "hack"); err != classroom.ErrPermissionDenied {
		t.Errorf("SetHomework() error = %v, want %v", err, classroom.ErrPermissionDenied)
	}

	if got, err = f.classSvc.SetInformation(ctx, lead, "Room 12, Mon-Fri"); err != nil {
		t.Fatalf("SetInformation() failed: %v", err)
	}
	if got.Information != "Room 12, Mon-Fri" {
		t.Errorf("information = %q", got.Information)
	}
	if _, err = f.classSvc.SetInformation(ctx, plain, "hack"); err != classroom.ErrPermissionDenied {
		t.Errorf("SetInformation() error = %v, want %v", err, classroom.ErrPermissionDenied)
	}
}

func TestService_AssignAssistant(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	lead := testutil.CreateProfile(t, f.profRepo, 1, "Lead", profile.StatusMember)
	assistant := testutil.CreateProfile(t, f.profRepo, 2, "Ana", profile.StatusMember)
	outsider := testutil.CreateProfile(t, f.profRepo, 3, "Ben", profile.StatusMember)
	cls := testutil.CreateClass(t, f.classRepo, "c1", "7B", lead.ID, lead.ID, assistant.ID)
	lead = testutil.LinkToClass(t, f.profRepo, lead.ID, cls.ID, profile.RoleLead)
	assistant = testutil.LinkToClass(t, f.profRepo, assistant.ID, cls.ID, profile.RoleMember)

	if err := f.classSvc.AssignAssistant(ctx, lead, assistant.ID); err != nil {
		t.Fatalf("AssignAssistant() failed: %v", err)
	}
	if prof, _ := f.profSvc.Get(ctx, assistant.ID); prof.TeamRole != profile.RoleAssistant {
		t.Errorf("TeamRole = %q, want %q", prof.TeamRole, profile.RoleAssistant)
	}

	// assistants cannot manage roles
	promoted, _ := f.profSvc.Get(ctx, assistant.ID)
	if err := f.classSvc.AssignAssistant(ctx, promoted, lead.ID); err != classroom.ErrPermissionDenied {
		t.Errorf("AssignAssistant() error = %v, want %v", err, classroom.ErrPermissionDenied)
	}

	if err := f.classSvc.AssignAssistant(ctx, lead, outsider.ID); err != classroom.ErrNotMember {
		t.Errorf("AssignAssistant() error = %v, want %v", err, classroom.ErrNotMember)
	}

	if err := f.classSvc.AssignAssistant(ctx, outsider, assistant.ID); err != classroom.ErrNotInClass {
		t.Errorf("AssignAssistant() error = %v, want %v", err, classroom.ErrNotInClass)
	}
}

func TestService_MemberResolution(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	lead := testutil.CreateProfile(t, f.profRepo, 1, "Lead", profile.StatusMember)
	other := testutil.CreateProfile(t, f.profRepo, 2, "Ana", profile.StatusMember)
	// member 77 has no profile on record
	cls := testutil.CreateClass(t, f.classRepo, "c1", "7B", lead.ID, lead.ID, other.ID, 77)
	lead = testutil.LinkToClass(t, f.profRepo, lead.ID, cls.ID, profile.RoleLead)

	profs, err := f.classSvc.Members(ctx, lead)
	if err != nil {
		t.Fatalf("Members() failed: %v", err)
	}
	if len(profs) != 2 {
		t.Errorf("Members() resolved %d profiles, want 2 (missing ones skipped)", len(profs))
	}
}
