package model

import (
	"time"

	"github.com/secmon-lab/grc-risk/pkg/domain/types"
)

// Person is the resolved form of a Person stub
type Person struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Stub returns a reference to p
func (p *Person) Stub() *Stub {
	return NewPersonStub(p.ID)
}

// Context is an access control scope a risk belongs to
type Context struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Stub returns a reference to c
func (c *Context) Stub() *Stub {
	return NewStub(types.ObjectTypeContext, c.ID)
}

// RiskObject maps a risk to one related object of arbitrary type
type RiskObject struct {
	ID     int64 `json:"id"`
	RiskID int64 `json:"risk_id"`
	Object *Stub `json:"object"`
}

// Stub returns a reference to o
func (o *RiskObject) Stub() *Stub {
	return NewStub(types.ObjectTypeRiskObject, o.ID)
}

// Document is a link related to a risk, such as its reference URL
type Document struct {
	ID           int64              `json:"id"`
	RiskID       int64              `json:"risk_id"`
	Title        string             `json:"title"`
	Link         string             `json:"link"`
	DocumentType types.DocumentType `json:"document_type"`
	CreatedAt    time.Time          `json:"created_at,omitzero"`
}

// CustomAttributeValue is the value of one custom attribute definition
type CustomAttributeValue struct {
	DefinitionID int64  `json:"custom_attribute_id" firestore:"custom_attribute_id"`
	Value        string `json:"attribute_value" firestore:"attribute_value"`
}
