package chat

import (
	"context"
	"fmt"

	"github.com/darasabot/darasa/core"
	"github.com/darasabot/darasa/core/classroom"
	"github.com/darasabot/darasa/core/perm"
	"github.com/darasabot/darasa/core/profile"
)

// canned reply texts
const (
	msgMainMenu         = "Main menu:"
	msgProfileNotFound  = "Profile not found. Start with /start"
	msgClassNotFound    = "Class not found"
	msgNotInClass       = "You are not in a class"
	msgAlreadyInClass   = "You are already in a class"
	msgPermissionDenied = "You do not have permission to do that"
)

// Engine is the conversation core: it owns the per-user flow sessions, routes
// incoming events to either the active flow's step or a stateless command
// handler, and talks to the entity services for every durable effect.
type Engine struct {
	profiles *profile.Service
	classes  *classroom.Service
	conf     *core.Config
	logger   core.Logger
	sessions *sessionStore
}

func NewEngine(profiles *profile.Service, classes *classroom.Service, conf *core.Config, logger core.Logger) *Engine {
	return &Engine{
		profiles: profiles,
		classes:  classes,
		conf:     conf,
		logger:   logger,
		sessions: newSessionStore(),
	}
}

// Receive processes one incoming event and returns the reply directive.
// Events for the same user are handled strictly in arrival order; a returned
// error means a store fault, never bad user input.
func (e *Engine) Receive(ctx context.Context, userID int64, text string) (Reply, error) {
	sess := e.sessions.acquire(userID)
	defer sess.mu.Unlock()

	text = core.CleanString(text)

	// global escape hatch, regardless of the active flow
	if text == LabelBack {
		sess.reset()
		return e.mainMenu(ctx, userID)
	}

	if sess.flow != FlowNone {
		return e.step(ctx, userID, sess, text)
	}
	return e.dispatch(ctx, userID, sess, text)
}

// HasActiveFlow reports whether a flow is in progress for the user.
func (e *Engine) HasActiveFlow(userID int64) bool {
	sess := e.sessions.acquire(userID)
	defer sess.mu.Unlock()
	return sess.flow != FlowNone
}

func (e *Engine) dispatch(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	switch text {
	case CmdStart:
		return e.cmdStart(ctx, userID, sess)
	case CmdMyProfile:
		return e.cmdMyProfile(ctx, userID)
	case CmdEditProfile:
		sess.start(FlowProfileField)
		return reply("Choose a field to edit:", MarkupEditProfileFields), nil
	case CmdMyHomework:
		return e.cmdMyHomework(ctx, userID)
	case CmdAddPersonalHW:
		sess.start(FlowPersonalSubject)
		return textReply("Enter the subject name for your personal homework:"), nil
	case CmdClass:
		return e.cmdClass(ctx, userID)
	case CmdClassInfo:
		return e.cmdClassInfo(ctx, userID)
	case CmdJoinClass:
		sess.start(FlowJoinClass)
		return textReply("Enter the id of the class to join:"), nil
	case CmdLeaveClass:
		return e.cmdLeaveClass(ctx, userID)
	case CmdManageClass:
		return e.cmdManageClass(ctx, userID)
	case CmdCreateClass:
		return e.cmdCreateClass(ctx, userID, sess)
	case CmdClassHomework:
		return e.requireClass(ctx, userID, func(profile.Profile) (Reply, error) {
			return reply("Homework:", MarkupHomeworkMenu), nil
		})
	case CmdAllSubjects:
		return e.cmdAllSubjects(ctx, userID)
	case CmdSpecificSubject:
		return e.cmdSpecificSubject(ctx, userID)
	case CmdEditHomework:
		return e.cmdEditHomework(ctx, userID, sess)
	case CmdEditInformation:
		return e.cmdEditInformation(ctx, userID, sess)
	case CmdJoinRequests:
		return e.cmdJoinRequests(ctx, userID, sess)
	case CmdClassMembers:
		return e.cmdClassMembers(ctx, userID)
	case CmdAssignAssistant:
		return e.cmdAssignAssistant(ctx, userID, sess)
	}
	// unmatched free text outside a flow is silently ignored
	return Reply{}, nil
}

// ===== stateless command handlers =====

func (e *Engine) cmdStart(ctx context.Context, userID int64, sess *session) (Reply, error) {
	prof, err := e.profiles.Get(ctx, userID)
	if err == profile.ErrNotFound {
		sess.start(FlowProfileName)
		return textReply("Welcome! Let's create your profile first.\nEnter your name:"), nil
	} else if err != nil {
		return Reply{}, err
	}
	return reply(fmt.Sprintf("Welcome back, %s!", prof.Name), MarkupMainMenu), nil
}

func (e *Engine) cmdMyProfile(ctx context.Context, userID int64) (Reply, error) {
	return e.requireProfile(ctx, userID, func(prof profile.Profile) (Reply, error) {
		var className string
		if prof.InClass() {
			if cls, err := e.classes.Get(ctx, prof.ClassID); err == nil {
				className = cls.Name
			} else if err != classroom.ErrNotFound {
				return Reply{}, err
			}
		}
		return reply(formatProfile(prof, className), MarkupProfileMenu), nil
	})
}

func (e *Engine) cmdMyHomework(ctx context.Context, userID int64) (Reply, error) {
	return e.requireProfile(ctx, userID, func(prof profile.Profile) (Reply, error) {
		if len(prof.PersonalHomework) == 0 {
			return reply("No personal homework set", MarkupHomeworkMenu), nil
		}
		text := "Your personal homework:\n\n" + formatHomework(prof.PersonalHomework)
		return reply(text, MarkupHomeworkMenu), nil
	})
}

func (e *Engine) cmdClass(ctx context.Context, userID int64) (Reply, error) {
	return e.requireProfile(ctx, userID, func(prof profile.Profile) (Reply, error) {
		text := "Choose an action:"
		if prof.InClass() {
			cls, err := e.classes.Get(ctx, prof.ClassID)
			if err == nil {
				text = formatClassOverview(cls, prof.TeamRole) + "\n\n" + text
			} else if err != classroom.ErrNotFound {
				return Reply{}, err
			}
		}
		return reply(text, MarkupClassMenu), nil
	})
}

func (e *Engine) cmdClassInfo(ctx context.Context, userID int64) (Reply, error) {
	return e.requireClass(ctx, userID, func(prof profile.Profile) (Reply, error) {
		cls, err := e.classes.Get(ctx, prof.ClassID)
		if err == classroom.ErrNotFound {
			return textReply(msgClassNotFound), nil
		} else if err != nil {
			return Reply{}, err
		}
		if cls.Information == "" {
			return textReply("No class information set"), nil
		}
		return textReply(fmt.Sprintf("Class %q:\n\n%s", cls.Name, cls.Information)), nil
	})
}

func (e *Engine) cmdLeaveClass(ctx context.Context, userID int64) (Reply, error) {
	return e.requireProfile(ctx, userID, func(prof profile.Profile) (Reply, error) {
		switch err := e.classes.Leave(ctx, prof); err {
		case nil:
			return textReply("You left the class"), nil
		case classroom.ErrNotInClass:
			return textReply(msgNotInClass), nil
		case classroom.ErrProtectedStatus:
			return textReply("You cannot leave the class because of your status"), nil
		default:
			return Reply{}, err
		}
	})
}

func (e *Engine) cmdManageClass(ctx context.Context, userID int64) (Reply, error) {
	return e.requireClass(ctx, userID, func(prof profile.Profile) (Reply, error) {
		if !perm.CanEditClass(prof, prof.ClassID) {
			return textReply(msgPermissionDenied), nil
		}
		return reply("Class management:", MarkupClassManageMenu), nil
	})
}

func (e *Engine) cmdCreateClass(ctx context.Context, userID int64, sess *session) (Reply, error) {
	return e.requireProfile(ctx, userID, func(prof profile.Profile) (Reply, error) {
		if !perm.CanCreateClass(prof) {
			return textReply(msgPermissionDenied), nil
		}
		sess.start(FlowClassName)
		return textReply("Enter the name of the new class:"), nil
	})
}

func (e *Engine) cmdAllSubjects(ctx context.Context, userID int64) (Reply, error) {
	return e.requireClass(ctx, userID, func(prof profile.Profile) (Reply, error) {
		cls, err := e.classes.Get(ctx, prof.ClassID)
		if err == classroom.ErrNotFound {
			return textReply(msgClassNotFound), nil
		} else if err != nil {
			return Reply{}, err
		}
		if len(cls.Homework) == 0 {
			return textReply("No homework set"), nil
		}
		return textReply(fmt.Sprintf("Homework of class %q:\n\n%s", cls.Name, formatHomework(cls.Homework))), nil
	})
}

// cmdSpecificSubject lists subjects and prompts for a name but sets no flow:
// the follow-up message falls through to the router like any other text.
func (e *Engine) cmdSpecificSubject(ctx context.Context, userID int64) (Reply, error) {
	return e.requireClass(ctx, userID, func(prof profile.Profile) (Reply, error) {
		cls, err := e.classes.Get(ctx, prof.ClassID)
		if err == classroom.ErrNotFound {
			return textReply(msgClassNotFound), nil
		} else if err != nil {
			return Reply{}, err
		}
		if len(cls.Homework) == 0 {
			return textReply("No subjects set"), nil
		}
		return textReply("Available subjects:\n" + formatSubjectList(cls) + "\n\nEnter the subject name:"), nil
	})
}

func (e *Engine) cmdEditHomework(ctx context.Context, userID int64, sess *session) (Reply, error) {
	return e.requireClass(ctx, userID, func(prof profile.Profile) (Reply, error) {
		if !perm.CanEditClass(prof, prof.ClassID) {
			return textReply(msgPermissionDenied), nil
		}
		sess.start(FlowHomeworkMode)
		return reply("How do you want to set the homework?", MarkupHomeworkEditMenu), nil
	})
}

func (e *Engine) cmdEditInformation(ctx context.Context, userID int64, sess *session) (Reply, error) {
	return e.requireClass(ctx, userID, func(prof profile.Profile) (Reply, error) {
		if !perm.CanEditClass(prof, prof.ClassID) {
			return textReply(msgPermissionDenied), nil
		}
		sess.start(FlowClassInfo)
		return textReply("Enter the new class information:"), nil
	})
}

func (e *Engine) cmdJoinRequests(ctx context.Context, userID int64, sess *session) (Reply, error) {
	return e.requireProfile(ctx, userID, func(prof profile.Profile) (Reply, error) {
		profs, err := e.classes.PendingRequests(ctx, prof)
		switch err {
		case nil:
		case classroom.ErrNotInClass:
			return textReply(msgNotInClass), nil
		case classroom.ErrPermissionDenied:
			return textReply(msgPermissionDenied), nil
		default:
			return Reply{}, err
		}
		if len(profs) == 0 {
			return textReply("No pending join requests"), nil
		}
		sess.start(FlowJoinReview)
		text := "Pending join requests:\n" + formatProfileList(profs) +
			"\n\nSend \"approve <id>\" or \"reject <id>\":"
		return textReply(text), nil
	})
}

func (e *Engine) cmdClassMembers(ctx context.Context, userID int64) (Reply, error) {
	return e.requireProfile(ctx, userID, func(prof profile.Profile) (Reply, error) {
		profs, err := e.classes.Members(ctx, prof)
		switch err {
		case nil:
		case classroom.ErrNotInClass:
			return textReply(msgNotInClass), nil
		case classroom.ErrPermissionDenied:
			return textReply(msgPermissionDenied), nil
		default:
			return Reply{}, err
		}
		if len(profs) == 0 {
			return textReply("The class has no members"), nil
		}
		return textReply("Class members:\n" + formatProfileList(profs)), nil
	})
}

func (e *Engine) cmdAssignAssistant(ctx context.Context, userID int64, sess *session) (Reply, error) {
	return e.requireClass(ctx, userID, func(prof profile.Profile) (Reply, error) {
		if !perm.CanManageRoles(prof, prof.ClassID) {
			return textReply(msgPermissionDenied), nil
		}
		sess.start(FlowAssignAssistant)
		return textReply("Send the user id of the member to promote to Assistant:"), nil
	})
}

// ===== helpers =====

// mainMenu builds the default menu reply; a missing profile still gets the
// menu so the user can /start.
func (e *Engine) mainMenu(ctx context.Context, userID int64) (Reply, error) {
	if _, err := e.profiles.Get(ctx, userID); err != nil && err != profile.ErrNotFound {
		return Reply{}, err
	}
	return reply(msgMainMenu, MarkupMainMenu), nil
}

func (e *Engine) requireProfile(ctx context.Context, userID int64, fn func(profile.Profile) (Reply, error)) (Reply, error) {
	prof, err := e.profiles.Get(ctx, userID)
	if err == profile.ErrNotFound {
		return textReply(msgProfileNotFound), nil
	} else if err != nil {
		return Reply{}, err
	}
	return fn(prof)
}

func (e *Engine) requireClass(ctx context.Context, userID int64, fn func(profile.Profile) (Reply, error)) (Reply, error) {
	return e.requireProfile(ctx, userID, func(prof profile.Profile) (Reply, error) {
		if !prof.InClass() {
			return textReply(msgNotInClass), nil
		}
		return fn(prof)
	})
}
