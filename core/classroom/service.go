package classroom

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/darasabot/darasa/core"
	"github.com/darasabot/darasa/core/perm"
	"github.com/darasabot/darasa/core/profile"
)

var (
	// errors
	ErrNotFound         = errors.New("class not found")
	ErrAlreadyInClass   = errors.New("already in a class")
	ErrNotInClass       = errors.New("not in a class")
	ErrNotMember        = errors.New("not a member of this class")
	ErrNoJoinRequest    = errors.New("no pending join request for this user")
	ErrPermissionDenied = errors.New("permission denied")
	ErrProtectedStatus  = errors.New("privileged statuses cannot leave a class")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClass(ctx context.Context, id string) (Class, error)
		// UpdateClass fully replaces the stored class; atomic per id.
		UpdateClass(ctx context.Context, cls Class) (Class, error)
	}

	Service struct {
		repo     Repository
		profiles *profile.Service
		mailSvc  core.EmailService
		locks    *core.KeyedMutex
	}
)

func NewService(repo Repository, profiles *profile.Service, mailSvc core.EmailService) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		mailSvc:  mailSvc,
		locks:    core.NewKeyedMutex(),
	}
}

// Create creates a class with the creator as its first member. Creators without
// a class are linked to it as Lead; creators already in a class keep theirs.
func (svc *Service) Create(ctx context.Context, nc NewClass, creator profile.Profile) (Class, error) {
	if !perm.CanCreateClass(creator) {
		return Class{}, ErrPermissionDenied
	}
	if err := nc.Validate(); err != nil {
		return Class{}, err
	}
	if nc.ID == "" {
		nc.ID = uuid.New().String()
	}

	cls := Class{
		ID:           nc.ID,
		Name:         nc.Name,
		Homework:     make(map[string]string),
		Members:      []int64{creator.ID},
		JoinRequests: []int64{},
		CreatedAt:    time.Now().UTC(),
		CreatedBy:    creator.ID,
	}
	cls, err := svc.repo.CreateClass(ctx, cls)
	if err != nil {
		return Class{}, err
	}

	if !creator.InClass() {
		if _, err := svc.profiles.SetClass(ctx, creator.ID, cls.ID, profile.RoleLead); err != nil {
			return Class{}, err
		}
	}
	return cls, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

// Join adds the actor to the class directly when their status allows it, or
// queues a join request otherwise. The returned bool is true for a direct join.
func (svc *Service) Join(ctx context.Context, actor profile.Profile, classID string) (bool, Class, error) {
	if actor.InClass() {
		return false, Class{}, ErrAlreadyInClass
	}

	svc.locks.Lock(classID)
	defer svc.locks.Unlock(classID)

	cls, err := svc.repo.GetClass(ctx, classID)
	if err != nil {
		return false, Class{}, err
	}

	if perm.CanJoinWithoutApproval(actor) {
		if !cls.IsMember(actor.ID) {
			cls.Members = append(cls.Members, actor.ID)
			if cls, err = svc.repo.UpdateClass(ctx, cls); err != nil {
				return false, Class{}, err
			}
		}
		if _, err = svc.profiles.SetClass(ctx, actor.ID, cls.ID, profile.RoleMember); err != nil {
			return false, Class{}, err
		}
		return true, cls, nil
	}

	if !cls.HasJoinRequest(actor.ID) {
		cls.JoinRequests = append(cls.JoinRequests, actor.ID)
		if cls, err = svc.repo.UpdateClass(ctx, cls); err != nil {
			return false, Class{}, err
		}
	}
	return false, cls, nil
}

// Leave removes the actor from their class and unlinks their profile.
func (svc *Service) Leave(ctx context.Context, actor profile.Profile) error {
	if !actor.InClass() {
		return ErrNotInClass
	}
	if !perm.CanLeaveClass(actor) {
		return ErrProtectedStatus
	}

	svc.locks.Lock(actor.ClassID)
	defer svc.locks.Unlock(actor.ClassID)

	cls, err := svc.repo.GetClass(ctx, actor.ClassID)
	if err == nil && cls.IsMember(actor.ID) {
		cls.Members = removeID(cls.Members, actor.ID)
		if _, err = svc.repo.UpdateClass(ctx, cls); err != nil {
			return err
		}
	} else if err != nil && err != ErrNotFound {
		return err
	}

	_, err = svc.profiles.ClearClass(ctx, actor.ID)
	return err
}

// Approve moves userID from the join-request queue of the actor's class into
// its members and links their profile with the default member role. The
// approved user is notified by email when their profile has one.
func (svc *Service) Approve(ctx context.Context, actor profile.Profile, userID int64) (Class, error) {
	cls, err := svc.editRequestQueue(ctx, actor, userID, true)
	if err != nil {
		return Class{}, err
	}

	if _, err = svc.profiles.SetClass(ctx, userID, cls.ID, profile.RoleMember); err != nil {
		return Class{}, err
	}
	svc.notifyApproved(ctx, userID, cls)
	return cls, nil
}

// Reject drops userID's join request; members are untouched.
func (svc *Service) Reject(ctx context.Context, actor profile.Profile, userID int64) (Class, error) {
	return svc.editRequestQueue(ctx, actor, userID, false)
}

func (svc *Service) editRequestQueue(ctx context.Context, actor profile.Profile, userID int64, accept bool) (Class, error) {
	if !actor.InClass() {
		return Class{}, ErrNotInClass
	}
	if !perm.CanEditClass(actor, actor.ClassID) {
		return Class{}, ErrPermissionDenied
	}

	svc.locks.Lock(actor.ClassID)
	defer svc.locks.Unlock(actor.ClassID)

	cls, err := svc.repo.GetClass(ctx, actor.ClassID)
	if err != nil {
		return Class{}, err
	}
	if !cls.HasJoinRequest(userID) {
		return Class{}, ErrNoJoinRequest
	}

	cls.JoinRequests = removeID(cls.JoinRequests, userID)
	if accept {
		cls.Members = append(cls.Members, userID)
	}
	return svc.repo.UpdateClass(ctx, cls)
}

// SetHomework upserts one subject of the actor's class homework.
func (svc *Service) SetHomework(ctx context.Context, actor profile.Profile, subject, text string) (Class, error) {
	return svc.edit(ctx, actor, func(cls *Class) {
		if cls.Homework == nil {
			cls.Homework = make(map[string]string)
		}
		cls.Homework[subject] = text
	})
}

// SetInformation replaces the free-text information of the actor's class.
func (svc *Service) SetInformation(ctx context.Context, actor profile.Profile, text string) (Class, error) {
	return svc.edit(ctx, actor, func(cls *Class) {
		cls.Information = text
	})
}

func (svc *Service) edit(ctx context.Context, actor profile.Profile, mutate func(*Class)) (Class, error) {
	if !actor.InClass() {
		return Class{}, ErrNotInClass
	}
	if !perm.CanEditClass(actor, actor.ClassID) {
		return Class{}, ErrPermissionDenied
	}

	svc.locks.Lock(actor.ClassID)
	defer svc.locks.Unlock(actor.ClassID)

	cls, err := svc.repo.GetClass(ctx, actor.ClassID)
	if err != nil {
		return Class{}, err
	}
	mutate(&cls)
	return svc.repo.UpdateClass(ctx, cls)
}

// AssignAssistant promotes a member of the actor's class to the Assistant role.
func (svc *Service) AssignAssistant(ctx context.Context, actor profile.Profile, memberID int64) error {
	if !actor.InClass() {
		return ErrNotInClass
	}
	if !perm.CanManageRoles(actor, actor.ClassID) {
		return ErrPermissionDenied
	}

	cls, err := svc.repo.GetClass(ctx, actor.ClassID)
	if err != nil {
		return err
	}
	if !cls.IsMember(memberID) {
		return ErrNotMember
	}

	_, err = svc.profiles.SetTeamRole(ctx, memberID, profile.RoleAssistant)
	return err
}

// Members resolves the member profiles of the actor's class. Profiles missing
// from the store are skipped; membership lists survive profile desync.
func (svc *Service) Members(ctx context.Context, actor profile.Profile) ([]profile.Profile, error) {
	return svc.resolve(ctx, actor, func(cls Class) []int64 { return cls.Members })
}

// PendingRequests resolves the profiles waiting for approval.
func (svc *Service) PendingRequests(ctx context.Context, actor profile.Profile) ([]profile.Profile, error) {
	return svc.resolve(ctx, actor, func(cls Class) []int64 { return cls.JoinRequests })
}

func (svc *Service) resolve(ctx context.Context, actor profile.Profile, ids func(Class) []int64) ([]profile.Profile, error) {
	if !actor.InClass() {
		return nil, ErrNotInClass
	}
	if !perm.CanEditClass(actor, actor.ClassID) {
		return nil, ErrPermissionDenied
	}

	cls, err := svc.repo.GetClass(ctx, actor.ClassID)
	if err != nil {
		return nil, err
	}

	var profs []profile.Profile
	for _, id := range ids(cls) {
		prof, err := svc.profiles.Get(ctx, id)
		if err == profile.ErrNotFound {
			continue
		} else if err != nil {
			return nil, err
		}
		profs = append(profs, prof)
	}
	return profs, nil
}

func (svc *Service) notifyApproved(ctx context.Context, userID int64, cls Class) {
	if svc.mailSvc == nil {
		return
	}
	prof, err := svc.profiles.Get(ctx, userID)
	if err != nil || prof.Contact.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: prof.Name, Address: prof.Contact.Email}},
		Subject:      fmt.Sprintf("Your request to join %q was approved", cls.Name),
		TemplateName: "join_approved",
		TemplateData: struct {
			Name      string
			ClassName string
		}{prof.Name, cls.Name},
	})
}
