package profile

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/darasabot/darasa/core"
)

var (
	// errors
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("a profile with this id already exists")
	ErrUnknownField  = errors.New("unknown profile field")
	ErrInvalidStatus = errors.New("unknown organization status")
)

type (
	Repository interface {
		CreateProfile(ctx context.Context, prof Profile) (Profile, error)
		GetProfile(ctx context.Context, id int64) (Profile, error)
		// UpdateProfile fully replaces the stored profile; atomic per id.
		UpdateProfile(ctx context.Context, prof Profile) (Profile, error)
	}

	Service struct {
		repo  Repository
		conf  *core.Config
		locks *core.KeyedMutex
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf, locks: core.NewKeyedMutex()}
}

func (svc *Service) lock(id int64) func() {
	key := strconv.FormatInt(id, 10)
	svc.locks.Lock(key)
	return func() { svc.locks.Unlock(key) }
}

// Create creates a minimal profile. The configured owner id is auto-promoted
// to the Owner status; everyone else starts as Member.
func (svc *Service) Create(ctx context.Context, np NewProfile) (Profile, error) {
	if err := np.Validate(); err != nil {
		return Profile{}, err
	}

	defer svc.lock(np.ID)()

	if _, err := svc.repo.GetProfile(ctx, np.ID); err == nil {
		return Profile{}, ErrAlreadyExists
	} else if err != ErrNotFound {
		return Profile{}, err
	}

	now := time.Now().UTC()
	prof := Profile{
		ID:               np.ID,
		Name:             np.Name,
		OrgStatus:        StatusMember,
		PersonalHomework: make(map[string]string),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if svc.conf.OwnerID != 0 && np.ID == svc.conf.OwnerID {
		prof.OrgStatus = StatusOwner
	}
	return svc.repo.CreateProfile(ctx, prof)
}

func (svc *Service) Get(ctx context.Context, id int64) (Profile, error) {
	return svc.repo.GetProfile(ctx, id)
}

// UpdateContactField merges a single contact field into the profile.
func (svc *Service) UpdateContactField(ctx context.Context, id int64, field, value string) (Profile, error) {
	defer svc.lock(id)()

	prof, err := svc.repo.GetProfile(ctx, id)
	if err != nil {
		return Profile{}, err
	}

	value = core.CleanString(value)
	switch field {
	case FieldBirthDate:
		prof.Contact.BirthDate = value
	case FieldPhone:
		prof.Contact.Phone = value
	case FieldEmail:
		prof.Contact.Email = core.CleanString(value, true /* lower */)
	case FieldAdditionalInfo:
		prof.Contact.AdditionalInfo = value
	default:
		return Profile{}, ErrUnknownField
	}
	if err := core.Validate.Struct(prof.Contact); err != nil {
		return Profile{}, err
	}

	prof.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfile(ctx, prof)
}

// AddPersonalHomework upserts one subject in the profile's personal homework.
func (svc *Service) AddPersonalHomework(ctx context.Context, id int64, subject, text string) (Profile, error) {
	defer svc.lock(id)()

	prof, err := svc.repo.GetProfile(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	if prof.PersonalHomework == nil {
		prof.PersonalHomework = make(map[string]string)
	}
	prof.PersonalHomework[subject] = text
	prof.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfile(ctx, prof)
}

// SetStatus assigns an organization status; used by operator tooling.
func (svc *Service) SetStatus(ctx context.Context, id int64, status string) (Profile, error) {
	if !ValidStatus(status) {
		return Profile{}, ErrInvalidStatus
	}

	defer svc.lock(id)()

	prof, err := svc.repo.GetProfile(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	prof.OrgStatus = status
	prof.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfile(ctx, prof)
}

// SetClass links the profile to a class with the given team role.
func (svc *Service) SetClass(ctx context.Context, id int64, classID, role string) (Profile, error) {
	defer svc.lock(id)()

	prof, err := svc.repo.GetProfile(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	prof.ClassID = classID
	prof.TeamRole = role
	prof.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfile(ctx, prof)
}

// SetTeamRole changes the in-class role; the profile must already be in a class.
func (svc *Service) SetTeamRole(ctx context.Context, id int64, role string) (Profile, error) {
	defer svc.lock(id)()

	prof, err := svc.repo.GetProfile(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	if !prof.InClass() {
		return Profile{}, ErrNotFound
	}
	prof.TeamRole = role
	prof.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfile(ctx, prof)
}

// ClearClass unlinks the profile from its class. The team role is always
// cleared in the same write.
func (svc *Service) ClearClass(ctx context.Context, id int64) (Profile, error) {
	defer svc.lock(id)()

	prof, err := svc.repo.GetProfile(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	prof.ClassID = ""
	prof.TeamRole = ""
	prof.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfile(ctx, prof)
}
