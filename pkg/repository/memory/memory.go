package memory

import (
	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

// ErrNotFound is returned, wrapped, when an entity does not exist
var ErrNotFound = model.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	risk       *riskRepository
	riskObject *riskObjectRepository
	document   *documentRepository
	person     *personRepository
	context    *contextRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		risk:       newRiskRepository(),
		riskObject: newRiskObjectRepository(),
		document:   newDocumentRepository(),
		person:     newPersonRepository(),
		context:    newContextRepository(),
	}
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) RiskObject() interfaces.RiskObjectRepository {
	return m.riskObject
}

func (m *Memory) Document() interfaces.DocumentRepository {
	return m.document
}

func (m *Memory) Person() interfaces.PersonRepository {
	return m.person
}

func (m *Memory) Context() interfaces.ContextRepository {
	return m.context
}

func (m *Memory) Close() error {
	return nil
}
