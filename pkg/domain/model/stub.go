package model

import (
	"fmt"

	"github.com/secmon-lab/grc-risk/pkg/domain/types"
)

// Stub is a weak reference to another entity: its id and type plus the API
// href it can be resolved from. A stub never owns the referenced entity.
type Stub struct {
	ID   int64            `json:"id" firestore:"id"`
	Type types.ObjectType `json:"type" firestore:"type"`
	Href string           `json:"href,omitempty" firestore:"href,omitempty"`
}

// NewStub builds a stub with its canonical href
func NewStub(typ types.ObjectType, id int64) *Stub {
	return &Stub{
		ID:   id,
		Type: typ,
		Href: fmt.Sprintf("/api/%s/%d", typ.Collection(), id),
	}
}

// NewPersonStub builds a stub referencing a Person
func NewPersonStub(id int64) *Stub {
	return NewStub(types.ObjectTypePerson, id)
}

// IsZero reports whether the stub references nothing
func (s *Stub) IsZero() bool {
	return s == nil || s.ID == 0
}

// Is reports whether the stub references an entity of typ
func (s *Stub) Is(typ types.ObjectType) bool {
	return !s.IsZero() && s.Type == typ
}

func (s *Stub) copy() *Stub {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func copyStubs(src []*Stub) []*Stub {
	if src == nil {
		return nil
	}
	dst := make([]*Stub, len(src))
	for i, s := range src {
		dst[i] = s.copy()
	}
	return dst
}
