package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/darasabot/darasa/core"
	"github.com/darasabot/darasa/core/classroom"
	"github.com/darasabot/darasa/core/profile"
)

// step advances the user's active flow with one input. Terminal steps perform
// exactly one durable effect and reset the flow; constrained steps re-prompt
// on unrecognized input without touching flow state or data.
func (e *Engine) step(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	switch sess.flow {
	case FlowProfileName:
		return e.stepProfileName(ctx, userID, sess, text)
	case FlowProfileField:
		return e.stepProfileField(sess, text)
	case FlowProfileValue:
		return e.stepProfileValue(ctx, userID, sess, text)
	case FlowJoinClass:
		return e.stepJoinClass(ctx, userID, sess, text)
	case FlowHomeworkMode:
		return e.stepHomeworkMode(ctx, userID, sess, text)
	case FlowHomeworkSubject:
		sess.set(dataSubject, text)
		sess.flow = FlowHomeworkText
		return textReply(fmt.Sprintf("Enter the homework for %q:", text)), nil
	case FlowHomeworkText:
		return e.stepHomeworkText(ctx, userID, sess, text)
	case FlowPersonalSubject:
		sess.set(dataSubject, text)
		sess.flow = FlowPersonalText
		return textReply(fmt.Sprintf("Enter the homework for %q:", text)), nil
	case FlowPersonalText:
		return e.stepPersonalText(ctx, userID, sess, text)
	case FlowClassInfo:
		return e.stepClassInfo(ctx, userID, sess, text)
	case FlowClassName:
		return e.stepClassName(ctx, userID, sess, text)
	case FlowJoinReview:
		return e.stepJoinReview(ctx, userID, sess, text)
	case FlowAssignAssistant:
		return e.stepAssignAssistant(ctx, userID, sess, text)
	}

	// unknown flow state; drop it rather than trapping the user
	sess.reset()
	return reply(msgMainMenu, MarkupMainMenu), nil
}

func (e *Engine) stepProfileName(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	prof, err := e.profiles.Create(ctx, profile.NewProfile{ID: userID, Name: text})
	if isValidationErr(err) {
		return textReply("Enter your name:"), nil
	}
	if err == profile.ErrAlreadyExists {
		sess.reset()
		return reply(msgMainMenu, MarkupMainMenu), nil
	}
	if err != nil {
		return Reply{}, err
	}

	sess.reset()
	text = fmt.Sprintf(
		"Profile created! Welcome, %s!\nYou can fill in the rest under 'My Profile'.",
		prof.Name,
	)
	return reply(text, MarkupMainMenu), nil
}

func (e *Engine) stepProfileField(sess *session, text string) (Reply, error) {
	fieldMap := map[string]string{
		LabelBirthDate:      profile.FieldBirthDate,
		LabelPhone:          profile.FieldPhone,
		LabelEmail:          profile.FieldEmail,
		LabelAdditionalInfo: profile.FieldAdditionalInfo,
	}
	field, ok := fieldMap[text]
	if !ok {
		return textReply("Please choose a field from the menu:"), nil
	}
	sess.set(dataField, field)
	sess.flow = FlowProfileValue
	return textReply(fmt.Sprintf("Enter a new value for %q:", text)), nil
}

func (e *Engine) stepProfileValue(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	field := sess.get(dataField)
	if field == "" {
		sess.reset()
		return reply(msgMainMenu, MarkupMainMenu), nil
	}

	prof, err := e.profiles.UpdateContactField(ctx, userID, field, text)
	if isValidationErr(err) {
		return textReply("That value is not valid. Enter a new value:"), nil
	}
	sess.reset()
	if err == profile.ErrNotFound {
		return textReply(msgProfileNotFound), nil
	}
	if err != nil {
		return Reply{}, err
	}

	var className string
	if prof.InClass() {
		if cls, cerr := e.classes.Get(ctx, prof.ClassID); cerr == nil {
			className = cls.Name
		}
	}
	return reply("Profile updated!\n\n"+formatProfile(prof, className), MarkupProfileMenu), nil
}

func (e *Engine) stepJoinClass(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	sess.reset()

	prof, err := e.profiles.Get(ctx, userID)
	if err == profile.ErrNotFound {
		return textReply(msgProfileNotFound), nil
	} else if err != nil {
		return Reply{}, err
	}

	joined, cls, err := e.classes.Join(ctx, prof, text)
	switch err {
	case nil:
	case classroom.ErrNotFound:
		return textReply(msgClassNotFound), nil
	case classroom.ErrAlreadyInClass:
		return textReply(msgAlreadyInClass), nil
	default:
		return Reply{}, err
	}

	var msg string
	if joined {
		msg = fmt.Sprintf("You joined class %q", cls.Name)
		// re-read: the join linked the profile to the class
		if prof, err = e.profiles.Get(ctx, userID); err != nil {
			return Reply{}, err
		}
		msg += "\n\n" + formatClassOverview(cls, prof.TeamRole)
	} else {
		msg = fmt.Sprintf("Join request for class %q sent", cls.Name)
	}
	return reply(msg, MarkupClassMenu), nil
}

func (e *Engine) stepHomeworkMode(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	switch text {
	case LabelChooseFromList:
		prof, err := e.profiles.Get(ctx, userID)
		if err == profile.ErrNotFound {
			sess.reset()
			return textReply(msgProfileNotFound), nil
		} else if err != nil {
			return Reply{}, err
		}
		cls, err := e.classes.Get(ctx, prof.ClassID)
		if err == classroom.ErrNotFound {
			sess.reset()
			return textReply(msgClassNotFound), nil
		} else if err != nil {
			return Reply{}, err
		}
		if len(cls.Homework) == 0 {
			return textReply(fmt.Sprintf("No subjects set yet. Choose %q", LabelWriteNew)), nil
		}
		sess.set(dataEditExisting, "1")
		sess.flow = FlowHomeworkText
		return textReply("Choose a subject from the list:\n" + formatSubjectList(cls) + "\n\nEnter the subject name:"), nil

	case LabelWriteNew:
		sess.flow = FlowHomeworkSubject
		return textReply("Enter the subject name:"), nil
	}
	return reply("How do you want to set the homework?", MarkupHomeworkEditMenu), nil
}

func (e *Engine) stepHomeworkText(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	prof, err := e.profiles.Get(ctx, userID)
	if err == profile.ErrNotFound || (err == nil && !prof.InClass()) {
		sess.reset()
		return Reply{}, nil
	} else if err != nil {
		return Reply{}, err
	}

	subject := sess.get(dataSubject)
	editExisting := sess.get(dataEditExisting) == "1"

	// Two-phase collapse: when editing an existing subject the first message
	// names the subject and the flow re-prompts for the body.
	if editExisting && subject == "" {
		sess.set(dataSubject, text)
		return textReply(fmt.Sprintf("Enter the new homework for %q:", text)), nil
	}
	if subject == "" {
		subject = text
	}

	_, err = e.classes.SetHomework(ctx, prof, subject, text)
	sess.reset()
	switch err {
	case nil:
		return textReply(fmt.Sprintf("Homework for %q updated!", subject)), nil
	case classroom.ErrNotFound:
		return textReply(msgClassNotFound), nil
	case classroom.ErrPermissionDenied, classroom.ErrNotInClass:
		return textReply(msgPermissionDenied), nil
	default:
		return Reply{}, err
	}
}

func (e *Engine) stepPersonalText(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	subject := sess.get(dataSubject)
	sess.reset()

	_, err := e.profiles.AddPersonalHomework(ctx, userID, subject, text)
	if err == profile.ErrNotFound {
		return textReply(msgProfileNotFound), nil
	} else if err != nil {
		return Reply{}, err
	}
	return textReply(fmt.Sprintf("Personal homework for %q added!", subject)), nil
}

func (e *Engine) stepClassInfo(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	sess.reset()

	prof, err := e.profiles.Get(ctx, userID)
	if err == profile.ErrNotFound {
		return textReply(msgProfileNotFound), nil
	} else if err != nil {
		return Reply{}, err
	}

	_, err = e.classes.SetInformation(ctx, prof, text)
	switch err {
	case nil:
		return textReply("Class information updated!"), nil
	case classroom.ErrNotFound:
		return textReply(msgClassNotFound), nil
	case classroom.ErrPermissionDenied, classroom.ErrNotInClass:
		return textReply(msgPermissionDenied), nil
	default:
		return Reply{}, err
	}
}

func (e *Engine) stepClassName(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	prof, err := e.profiles.Get(ctx, userID)
	if err == profile.ErrNotFound {
		sess.reset()
		return textReply(msgProfileNotFound), nil
	} else if err != nil {
		return Reply{}, err
	}

	cls, err := e.classes.Create(ctx, classroom.NewClass{Name: text}, prof)
	if isValidationErr(err) {
		return textReply("Enter the name of the new class:"), nil
	}
	sess.reset()
	if err == classroom.ErrPermissionDenied {
		return textReply(msgPermissionDenied), nil
	}
	if err != nil {
		return Reply{}, err
	}
	return reply(fmt.Sprintf("Class %q created!\nClass id: %s", cls.Name, cls.ID), MarkupMainMenu), nil
}

func (e *Engine) stepJoinReview(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return textReply("Send \"approve <id>\" or \"reject <id>\":"), nil
	}
	verb := strings.ToLower(fields[0])
	requesterID, err := strconv.ParseInt(fields[1], 10, 64)
	if (verb != "approve" && verb != "reject") || err != nil {
		return textReply("Send \"approve <id>\" or \"reject <id>\":"), nil
	}

	sess.reset()

	prof, err := e.profiles.Get(ctx, userID)
	if err == profile.ErrNotFound {
		return textReply(msgProfileNotFound), nil
	} else if err != nil {
		return Reply{}, err
	}

	if verb == "approve" {
		_, err = e.classes.Approve(ctx, prof, requesterID)
	} else {
		_, err = e.classes.Reject(ctx, prof, requesterID)
	}
	switch err {
	case nil:
	case classroom.ErrNoJoinRequest:
		return textReply("No pending join request for that user"), nil
	case classroom.ErrNotFound:
		return textReply(msgClassNotFound), nil
	case classroom.ErrPermissionDenied, classroom.ErrNotInClass:
		return textReply(msgPermissionDenied), nil
	default:
		return Reply{}, err
	}

	if verb == "approve" {
		return textReply(fmt.Sprintf("Approved the join request of user %d", requesterID)), nil
	}
	return textReply(fmt.Sprintf("Rejected the join request of user %d", requesterID)), nil
}

func (e *Engine) stepAssignAssistant(ctx context.Context, userID int64, sess *session, text string) (Reply, error) {
	memberID, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return textReply("Send the member's user id:"), nil
	}

	sess.reset()

	prof, err := e.profiles.Get(ctx, userID)
	if err == profile.ErrNotFound {
		return textReply(msgProfileNotFound), nil
	} else if err != nil {
		return Reply{}, err
	}

	switch err := e.classes.AssignAssistant(ctx, prof, memberID); err {
	case nil:
		return textReply(fmt.Sprintf("User %d is now an Assistant", memberID)), nil
	case classroom.ErrNotMember:
		return textReply("That user is not a member of your class"), nil
	case classroom.ErrNotFound:
		return textReply(msgClassNotFound), nil
	case classroom.ErrPermissionDenied, classroom.ErrNotInClass:
		return textReply(msgPermissionDenied), nil
	default:
		return Reply{}, err
	}
}

func isValidationErr(err error) bool {
	if err == nil {
		return false
	}
	switch err.(type) {
	case validator.ValidationErrors, *core.ValidationError:
		return true
	}
	return false
}
