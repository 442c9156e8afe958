package model

import (
	"slices"
	"strings"
	"time"

	"github.com/secmon-lab/grc-risk/pkg/domain/types"
)

// Risk is a risk record as exchanged with the API. Fields tagged omitempty are
// optional on the wire; ID, ModifiedBy, Slug and the timestamps are set by the
// server.
type Risk struct {
	ID                    int64                  `json:"id,omitempty"`
	Title                 string                 `json:"title"`
	Description           string                 `json:"description"`
	Slug                  string                 `json:"slug,omitempty"`
	Notes                 string                 `json:"notes,omitempty"`
	Status                types.RiskStatus       `json:"status,omitempty"`
	Contact               *Stub                  `json:"contact,omitempty"`
	SecondaryContact      *Stub                  `json:"secondary_contact,omitempty"`
	Owners                []*Stub                `json:"owners"`
	ModifiedBy            *Stub                  `json:"modified_by,omitempty"`
	Context               *Stub                  `json:"context,omitempty"`
	Objects               []*Stub                `json:"objects,omitempty"`
	RiskObjects           []*Stub                `json:"risk_objects,omitempty"`
	ReferenceURL          string                 `json:"reference_url,omitempty"`
	CustomAttributeValues []CustomAttributeValue `json:"custom_attribute_values,omitempty"`
	CreatedAt             time.Time              `json:"created_at,omitzero"`
	UpdatedAt             time.Time              `json:"updated_at,omitzero"`
}

// IsNew reports whether the risk has not been persisted yet
func (r *Risk) IsNew() bool {
	return r.ID == 0
}

// Stub returns a reference to r
func (r *Risk) Stub() *Stub {
	return NewStub(types.ObjectTypeRisk, r.ID)
}

// Copy returns a deep copy of r
func (r *Risk) Copy() *Risk {
	if r == nil {
		return nil
	}
	c := *r
	c.Contact = r.Contact.copy()
	c.SecondaryContact = r.SecondaryContact.copy()
	c.ModifiedBy = r.ModifiedBy.copy()
	c.Context = r.Context.copy()
	c.Owners = copyStubs(r.Owners)
	c.Objects = copyStubs(r.Objects)
	c.RiskObjects = copyStubs(r.RiskObjects)
	c.CustomAttributeValues = slices.Clone(r.CustomAttributeValues)
	return &c
}

// present reports whether the attribute named by its JSON key holds a value.
// Strings consisting only of whitespace count as blank.
func (r *Risk) present(field string) (bool, bool) {
	switch field {
	case "title":
		return notBlank(r.Title), true
	case "description":
		return notBlank(r.Description), true
	case "slug":
		return notBlank(r.Slug), true
	case "notes":
		return notBlank(r.Notes), true
	case "status":
		return r.Status != "", true
	case "reference_url":
		return notBlank(r.ReferenceURL), true
	case "contact":
		return !r.Contact.IsZero(), true
	case "secondary_contact":
		return !r.SecondaryContact.IsZero(), true
	case "modified_by":
		return !r.ModifiedBy.IsZero(), true
	case "context":
		return !r.Context.IsZero(), true
	case "owners":
		return len(r.Owners) > 0, true
	case "objects":
		return len(r.Objects) > 0, true
	case "risk_objects":
		return len(r.RiskObjects) > 0, true
	default:
		return false, false
	}
}

// attribute returns the string value of a scalar attribute
func (r *Risk) attribute(field string) (string, bool) {
	switch field {
	case "title":
		return r.Title, true
	case "description":
		return r.Description, true
	case "slug":
		return r.Slug, true
	case "notes":
		return r.Notes, true
	case "status":
		return string(r.Status), true
	case "reference_url":
		return r.ReferenceURL, true
	default:
		return "", false
	}
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
