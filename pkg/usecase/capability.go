package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/domain/types"
)

// Capability is a unit of fields and behavior composed into a risk record.
// Init runs at construction before the model's own registrations.
type Capability interface {
	Name() string
	Init(rec *RiskRecord) error
}

// AfterSaver is implemented by capabilities that react to a successful save.
// saved is the record returned by the server.
type AfterSaver interface {
	AfterSave(ctx context.Context, rec *RiskRecord, saved *model.Risk) error
}

// DefaultCapabilities returns the capabilities of the Risk model in their
// initialization order.
func DefaultCapabilities(api interfaces.RiskAPI) []Capability {
	return []Capability{
		&Ownable{},
		&Contactable{},
		NewUniqueTitle(api),
		NewCAUpdate(api),
	}
}

const reasonNotPerson = "must reference a Person"

func personRule(get func(r *model.Risk) *model.Stub) model.CheckFunc {
	return func(_ context.Context, r *model.Risk) (string, error) {
		s := get(r)
		if s.IsZero() || s.Type == types.ObjectTypePerson {
			return "", nil
		}
		return reasonNotPerson, nil
	}
}

func ownersRule(_ context.Context, r *model.Risk) (string, error) {
	for _, owner := range r.Owners {
		if !owner.Is(types.ObjectTypePerson) {
			return reasonNotPerson, nil
		}
	}
	return "", nil
}

// registerPeopleRules adds the Person reference checks of the ownable and
// contactable capabilities to v
func registerPeopleRules(v *model.Validator) {
	registerOwnerRules(v)
	registerContactRules(v)
}

func registerOwnerRules(v *model.Validator) {
	v.Add("owners", ownersRule)
}

func registerContactRules(v *model.Validator) {
	v.Add("contact", personRule(func(r *model.Risk) *model.Stub { return r.Contact }))
	v.Add("secondary_contact", personRule(func(r *model.Risk) *model.Stub { return r.SecondaryContact }))
}

// Ownable keeps an owner list on the record; every owner is a Person
type Ownable struct{}

func (c *Ownable) Name() string { return model.CapabilityOwnable }

func (c *Ownable) Init(rec *RiskRecord) error {
	if rec.Owners == nil {
		rec.Owners = []*model.Stub{}
	}
	registerOwnerRules(rec.Validator())
	return nil
}

// IsOwner reports whether personID owns rec
func IsOwner(rec *RiskRecord, personID int64) bool {
	for _, owner := range rec.Owners {
		if owner.Is(types.ObjectTypePerson) && owner.ID == personID {
			return true
		}
	}
	return false
}

// Contactable requires the primary and secondary contacts, when set, to be
// Person references
type Contactable struct{}

func (c *Contactable) Name() string { return model.CapabilityContactable }

func (c *Contactable) Init(rec *RiskRecord) error {
	registerContactRules(rec.Validator())
	return nil
}

// UniqueTitle rejects a title already used by another risk. Titles compare
// case-insensitively after trimming.
type UniqueTitle struct {
	api interfaces.RiskAPI
}

func NewUniqueTitle(api interfaces.RiskAPI) *UniqueTitle {
	return &UniqueTitle{api: api}
}

func (c *UniqueTitle) Name() string { return model.CapabilityUniqueTitle }

func (c *UniqueTitle) Init(rec *RiskRecord) error {
	if c.api == nil {
		return goerr.New("unique_title requires a risk API")
	}
	rec.Validator().AddRemote("title", c.check)
	return nil
}

func (c *UniqueTitle) check(ctx context.Context, r *model.Risk) (string, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return "", nil
	}

	risks, err := c.api.List(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list risks for title check")
	}
	for _, other := range risks {
		if other.ID != r.ID && strings.EqualFold(strings.TrimSpace(other.Title), title) {
			return model.ReasonNotUnique, nil
		}
	}
	return "", nil
}

// CAUpdate refreshes custom attribute values after a save. When the record
// carries values the save response omitted, they are re-fetched from the
// server.
type CAUpdate struct {
	api interfaces.RiskAPI
}

func NewCAUpdate(api interfaces.RiskAPI) *CAUpdate {
	return &CAUpdate{api: api}
}

func (c *CAUpdate) Name() string { return model.CapabilityCAUpdate }

func (c *CAUpdate) Init(rec *RiskRecord) error {
	return nil
}

func (c *CAUpdate) AfterSave(ctx context.Context, rec *RiskRecord, saved *model.Risk) error {
	if saved.CustomAttributeValues != nil {
		rec.CustomAttributeValues = saved.Copy().CustomAttributeValues
		return nil
	}
	if len(rec.CustomAttributeValues) == 0 {
		return nil
	}

	fresh, err := c.api.Get(ctx, saved.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to refresh custom attribute values", goerr.V(model.RiskIDKey, saved.ID))
	}
	rec.CustomAttributeValues = fresh.CustomAttributeValues
	return nil
}
