package chat_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/darasabot/darasa/core"
	"github.com/darasabot/darasa/core/chat"
	"github.com/darasabot/darasa/core/classroom"
	"github.com/darasabot/darasa/core/profile"
	dummydb "github.com/darasabot/darasa/storage/database/dummy"
	testutil "github.com/darasabot/darasa/tests"
)

const ownerID = 100

var conf = &core.Config{AppName: "Darasa", Env: "TEST", TestMode: true, OwnerID: ownerID}

func TestMain(m *testing.M) {
	core.InitValidators()
	os.Exit(m.Run())
}

type fixture struct {
	engine    *chat.Engine
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
	f.engine = chat.NewEngine(f.profSvc, f.classSvc, conf, core.NopLogger{})
	return f
}

// convoStep is one exchange: the incoming text and the expected reply.
// wantPrefix is matched when wantText is empty.
type convoStep struct {
	name       string
	text       string
	wantText   string
	wantPrefix string
	wantMarkup chat.Markup
}

func runConvo(t *testing.T, f *fixture, userID int64, steps []convoStep) {
	t.Helper()
	ctx := context.Background()

	for _, st := range steps {
		rep, err := f.engine.Receive(ctx, userID, st.text)
		if err != nil {
			t.Fatalf("%s: Receive(%q) failed: %v", st.name, st.text, err)
		}
		if st.wantText != "" && rep.Text != st.wantText {
			t.Errorf("%s: text = %q, want %q", st.name, rep.Text, st.wantText)
		}
		if st.wantPrefix != "" && !strings.HasPrefix(rep.Text, st.wantPrefix) {
			t.Errorf("%s: text = %q, want prefix %q", st.name, rep.Text, st.wantPrefix)
		}
		if rep.Markup != st.wantMarkup {
			t.Errorf("%s: markup = %q, want %q", st.name, rep.Markup, st.wantMarkup)
		}
	}
}

func TestEngine_Onboarding(t *testing.T) {
	f := setup(t)

	runConvo(t, f, 42, []convoStep{
		{
			name: "first contact", text: "/start",
			wantText:   "Welcome! Let's create your profile first.\nEnter your name:",
			wantMarkup: chat.MarkupNone,
		},
		{
			name: "blank name re-prompts", text: "   ",
			wantText: "Enter your name:", wantMarkup: chat.MarkupNone,
		},
		{
			name: "name creates the profile", text: "Ana",
			wantText:   "Profile created! Welcome, Ana!\nYou can fill in the rest under 'My Profile'.",
			wantMarkup: chat.MarkupMainMenu,
		},
		{
			name: "start is idempotent", text: "/start",
			wantText: "Welcome back, Ana!", wantMarkup: chat.MarkupMainMenu,
		},
	})

	prof, err := f.profSvc.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if prof.OrgStatus != profile.StatusMember {
		t.Errorf("OrgStatus = %q, want %q", prof.OrgStatus, profile.StatusMember)
	}
}

func TestEngine_OwnerBootstrap(t *testing.T) {
	f := setup(t)

	runConvo(t, f, ownerID, []convoStep{
		{name: "start", text: "/start", wantPrefix: "Welcome!", wantMarkup: chat.MarkupNone},
		{name: "name", text: "Root", wantPrefix: "Profile created!", wantMarkup: chat.MarkupMainMenu},
	})

	prof, err := f.profSvc.Get(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if prof.OrgStatus != profile.StatusOwner {
		t.Errorf("OrgStatus = %q, want %q", prof.OrgStatus, profile.StatusOwner)
	}
}

func TestEngine_BackEscapesAnyFlow(t *testing.T) {
	f := setup(t)
	testutil.CreateProfile(t, f.profRepo, 42, "Ana", profile.StatusMember)

	runConvo(t, f, 42, []convoStep{
		{name: "enter flow", text: "Edit Profile", wantText: "Choose a field to edit:", wantMarkup: chat.MarkupEditProfileFields},
		{name: "back", text: "Back", wantText: "Main menu:", wantMarkup: chat.MarkupMainMenu},
	})
	if f.engine.HasActiveFlow(42) {
		t.Error("flow still active after Back")
	}

	// Back works outside a flow too
	runConvo(t, f, 42, []convoStep{
		{name: "back again", text: "Back", wantText: "Main menu:", wantMarkup: chat.MarkupMainMenu},
	})
}

func TestEngine_EditProfileFlow(t *testing.T) {
	f := setup(t)
	testutil.CreateProfile(t, f.profRepo, 42, "Ana", profile.StatusMember)

	runConvo(t, f, 42, []convoStep{
		{name: "enter flow", text: "Edit Profile", wantText: "Choose a field to edit:", wantMarkup: chat.MarkupEditProfileFields},
		{name: "unknown field re-prompts", text: "lol", wantText: "Please choose a field from the menu:", wantMarkup: chat.MarkupNone},
		{name: "pick email", text: "Email", wantText: `Enter a new value for "Email":`, wantMarkup: chat.MarkupNone},
		{name: "invalid value keeps the flow", text: "not-an-email", wantText: "That value is not valid. Enter a new value:", wantMarkup: chat.MarkupNone},
		{name: "valid value", text: "ana@test.cd", wantPrefix: "Profile updated!", wantMarkup: chat.MarkupProfileMenu},
	})

	prof, _ := f.profSvc.Get(context.Background(), 42)
	if prof.Contact.Email != "ana@test.cd" {
		t.Errorf("Email = %q, want %q", prof.Contact.Email, "ana@test.cd")
	}
}

func TestEngine_JoinClassFlow(t *testing.T) {
	f := setup(t)
	testutil.CreateProfile(t, f.profRepo, 42, "Ana", profile.StatusMember)
	testutil.CreateProfile(t, f.profRepo, 43, "Staff", profile.StatusStaff)
	testutil.CreateClass(t, f.classRepo, "c1", "7B", 99)

	// regular member: a join request is queued
	runConvo(t, f, 42, []convoStep{
		{name: "enter flow", text: "Join Class", wantText: "Enter the id of the class to join:", wantMarkup: chat.MarkupNone},
		{name: "unknown class", text: "nope", wantText: "Class not found", wantMarkup: chat.MarkupNone},
		{name: "re-enter flow", text: "Join Class", wantText: "Enter the id of the class to join:", wantMarkup: chat.MarkupNone},
		{name: "request queued", text: "c1", wantText: `Join request for class "7B" sent`, wantMarkup: chat.MarkupClassMenu},
	})

	// staff join directly
	runConvo(t, f, 43, []convoStep{
		{name: "enter flow", text: "Join Class", wantText: "Enter the id of the class to join:", wantMarkup: chat.MarkupNone},
		{name: "direct join", text: "c1", wantPrefix: `You joined class "7B"`, wantMarkup: chat.MarkupClassMenu},
	})

	cls, _ := f.classSvc.Get(context.Background(), "c1")
	if !cls.IsMember(43) || !cls.HasJoinRequest(42) {
		t.Errorf("members=%v requests=%v", cls.Members, cls.JoinRequests)
	}
}

func TestEngine_HomeworkEditFlow(t *testing.T) {
	f := setup(t)
	lead := testutil.CreateProfile(t, f.profRepo, 1, "Lead", profile.StatusMember)
	plain := testutil.CreateProfile(t, f.profRepo, 2, "Ana", profile.StatusMember)
	cls := testutil.CreateClass(t, f.classRepo, "c1", "7B", lead.ID, lead.ID, plain.ID)
	testutil.LinkToClass(t, f.profRepo, lead.ID, cls.ID, profile.RoleLead)
	testutil.LinkToClass(t, f.profRepo, plain.ID, cls.ID, profile.RoleMember)

	// plain members cannot edit and no flow is started
	runConvo(t, f, plain.ID, []convoStep{
		{name: "denied", text: "Edit Homework", wantText: "You do not have permission to do that", wantMarkup: chat.MarkupNone},
	})
	if f.engine.HasActiveFlow(plain.ID) {
		t.Error("flow started despite the permission denial")
	}

	// write-new path
	runConvo(t, f, lead.ID, []convoStep{
		{name: "enter flow", text: "Edit Homework", wantText: "How do you want to set the homework?", wantMarkup: chat.MarkupHomeworkEditMenu},
		{name: "unknown mode re-prompts", text: "lol", wantText: "How do you want to set the homework?", wantMarkup: chat.MarkupHomeworkEditMenu},
		{name: "write new", text: "Write New", wantText: "Enter the subject name:", wantMarkup: chat.MarkupNone},
		{name: "subject", text: "Math", wantText: `Enter the homework for "Math":`, wantMarkup: chat.MarkupNone},
		{name: "body", text: "p. 12-14", wantText: `Homework for "Math" updated!`, wantMarkup: chat.MarkupNone},
	})

	// choose-from-list path: the first message names the subject, the second
	// carries the body
	runConvo(t, f, lead.ID, []convoStep{
		{name: "enter flow", text: "Edit Homework", wantText: "How do you want to set the homework?", wantMarkup: chat.MarkupHomeworkEditMenu},
		{name: "choose from list", text: "Choose From List", wantPrefix: "Choose a subject from the list:", wantMarkup: chat.MarkupNone},
		{name: "subject", text: "Math", wantText: `Enter the new homework for "Math":`, wantMarkup: chat.MarkupNone},
		{name: "body", text: "p. 20", wantText: `Homework for "Math" updated!`, wantMarkup: chat.MarkupNone},
	})

	got, _ := f.classSvc.Get(context.Background(), cls.ID)
	if got.Homework["Math"] != "p. 20" {
		t.Errorf("homework = %q, want %q", got.Homework["Math"], "p. 20")
	}
}

func TestEngine_JoinReviewFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	lead := testutil.CreateProfile(t, f.profRepo, 1, "Lead", profile.StatusMember)
	requester := testutil.CreateProfile(t, f.profRepo, 2, "Ana", profile.StatusMember)
	cls := testutil.CreateClass(t, f.classRepo, "c1", "7B", lead.ID, lead.ID)
	testutil.LinkToClass(t, f.profRepo, lead.ID, cls.ID, profile.RoleLead)

	if _, _, err := f.classSvc.Join(ctx, requester, cls.ID); err != nil {
		t.Fatalf("Join() failed: %v", err)
	}

	runConvo(t, f, lead.ID, []convoStep{
		{name: "open queue", text: "Join Requests", wantPrefix: "Pending join requests:\n- Ana (2)", wantMarkup: chat.MarkupNone},
		{name: "bad format re-prompts", text: "approve", wantText: `Send "approve <id>" or "reject <id>":`, wantMarkup: chat.MarkupNone},
		{name: "bad verb re-prompts", text: "promote 2", wantText: `Send "approve <id>" or "reject <id>":`, wantMarkup: chat.MarkupNone},
		{name: "approve", text: "approve 2", wantText: "Approved the join request of user 2", wantMarkup: chat.MarkupNone},
		{name: "queue now empty", text: "Join Requests", wantText: "No pending join requests", wantMarkup: chat.MarkupNone},
	})

	if prof, _ := f.profSvc.Get(ctx, requester.ID); prof.ClassID != cls.ID {
		t.Errorf("requester not linked to class, got %q", prof.ClassID)
	}
}

func TestEngine_AssignAssistantFlow(t *testing.T) {
	f := setup(t)

	lead := testutil.CreateProfile(t, f.profRepo, 1, "Lead", profile.StatusMember)
	member := testutil.CreateProfile(t, f.profRepo, 2, "Ana", profile.StatusMember)
	cls := testutil.CreateClass(t, f.classRepo, "c1", "7B", lead.ID, lead.ID, member.ID)
	testutil.LinkToClass(t, f.profRepo, lead.ID, cls.ID, profile.RoleLead)
	testutil.LinkToClass(t, f.profRepo, member.ID, cls.ID, profile.RoleMember)

	runConvo(t, f, lead.ID, []convoStep{
		{name: "enter flow", text: "Assign Assistant", wantText: "Send the user id of the member to promote to Assistant:", wantMarkup: chat.MarkupNone},
		{name: "non-numeric re-prompts", text: "Ana", wantText: "Send the member's user id:", wantMarkup: chat.MarkupNone},
		{name: "promote", text: "2", wantText: "User 2 is now an Assistant", wantMarkup: chat.MarkupNone},
	})

	if prof, _ := f.profSvc.Get(context.Background(), member.ID); prof.TeamRole != profile.RoleAssistant {
		t.Errorf("TeamRole = %q, want %q", prof.TeamRole, profile.RoleAssistant)
	}
}

func TestEngine_SpecificSubjectSetsNoFlow(t *testing.T) {
	f := setup(t)

	member := testutil.CreateProfile(t, f.profRepo, 2, "Ana", profile.StatusMember)
	cls := testutil.CreateClass(t, f.classRepo, "c1", "7B", 99, member.ID)
	testutil.LinkToClass(t, f.profRepo, member.ID, cls.ID, profile.RoleMember)

	staff := profile.Profile{ID: 1, OrgStatus: profile.StatusStaff, ClassID: cls.ID}
	if _, err := f.classSvc.SetHomework(context.Background(), staff, "Math", "p. 1"); err != nil {
		t.Fatalf("SetHomework() failed: %v", err)
	}

	runConvo(t, f, member.ID, []convoStep{
		{name: "list subjects", text: "Specific Subject", wantPrefix: "Available subjects:\n- Math", wantMarkup: chat.MarkupNone},
	})
	if f.engine.HasActiveFlow(member.ID) {
		t.Error("Specific Subject should not start a flow")
	}

	// the follow-up message falls through to the router and is ignored
	rep, err := f.engine.Receive(context.Background(), member.ID, "Math")
	if err != nil {
		t.Fatalf("Receive() failed: %v", err)
	}
	if !rep.IsZero() {
		t.Errorf("follow-up reply = %+v, want zero", rep)
	}
}

func TestEngine_UnmatchedTextIsIgnored(t *testing.T) {
	f := setup(t)
	testutil.CreateProfile(t, f.profRepo, 42, "Ana", profile.StatusMember)

	rep, err := f.engine.Receive(context.Background(), 42, "hello there")
	if err != nil {
		t.Fatalf("Receive() failed: %v", err)
	}
	if !rep.IsZero() {
		t.Errorf("reply = %+v, want zero", rep)
	}
}

func TestEngine_RequiresProfile(t *testing.T) {
	f := setup(t)

	runConvo(t, f, 42, []convoStep{
		{name: "profile gated", text: "My Profile", wantText: "Profile not found. Start with /start", wantMarkup: chat.MarkupNone},
		{name: "class gated", text: "Class Info", wantText: "Profile not found. Start with /start", wantMarkup: chat.MarkupNone},
	})
}
