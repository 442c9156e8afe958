package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/service/event"
	"github.com/secmon-lab/grc-risk/pkg/utils/errutil"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// RiskModel binds risk records to a RiskAPI. It constructs records with the
// capabilities and rules of the Risk descriptor, validates them before any
// request and announces successful saves on its event bus.
type RiskModel struct {
	api          interfaces.RiskAPI
	descriptor   *model.Descriptor
	capabilities []Capability
	bus          interfaces.EventBus

	people      interfaces.PersonResolver
	contexts    interfaces.ContextResolver
	riskObjects interfaces.RiskObjectResolver
}

type RiskModelOption func(*RiskModel)

// WithCapabilities replaces the default capabilities. They are initialized
// in the given order.
func WithCapabilities(caps ...Capability) RiskModelOption {
	return func(m *RiskModel) {
		m.capabilities = caps
	}
}

func WithEventBus(bus interfaces.EventBus) RiskModelOption {
	return func(m *RiskModel) {
		m.bus = bus
	}
}

func WithPersonResolver(r interfaces.PersonResolver) RiskModelOption {
	return func(m *RiskModel) {
		m.people = r
	}
}

func WithContextResolver(r interfaces.ContextResolver) RiskModelOption {
	return func(m *RiskModel) {
		m.contexts = r
	}
}

func WithRiskObjectResolver(r interfaces.RiskObjectResolver) RiskModelOption {
	return func(m *RiskModel) {
		m.riskObjects = r
	}
}

func NewRiskModel(api interfaces.RiskAPI, opts ...RiskModelOption) *RiskModel {
	m := &RiskModel{
		api:        api,
		descriptor: model.RiskDescriptor(),
	}
	m.capabilities = DefaultCapabilities(api)

	for _, opt := range opts {
		opt(m)
	}

	if m.bus == nil {
		m.bus = event.New()
	}
	return m
}

// Descriptor returns the descriptor the model was built from
func (m *RiskModel) Descriptor() *model.Descriptor {
	return m.descriptor
}

// Subscribe registers handler for events named name
func (m *RiskModel) Subscribe(name model.EventName, handler model.EventHandler) interfaces.Subscription {
	return m.bus.Subscribe(name, handler)
}

// New constructs a record from attrs. Capabilities are initialized first,
// then the default status and the descriptor rules are applied.
func (m *RiskModel) New(attrs *model.Risk) (*RiskRecord, error) {
	rec := newRiskRecord(attrs)

	for _, c := range m.capabilities {
		if err := c.Init(rec); err != nil {
			return nil, goerr.Wrap(err, "failed to initialize capability", goerr.V("capability", c.Name()))
		}
	}

	if rec.Status == "" {
		rec.Status = m.descriptor.DefaultStatus
	}
	m.descriptor.RegisterRules(rec.validator)

	return rec, nil
}

// Validate runs every registered check of rec. It returns a
// *model.ValidationError listing all failures, or an infrastructure error
// raised by a check.
func (m *RiskModel) Validate(ctx context.Context, rec *RiskRecord) error {
	return rec.validator.Validate(ctx, rec.Risk)
}

// Save creates rec when it has no id and updates it otherwise. The server
// response replaces the local attributes. Exactly one
// refreshRelatedDocuments event is emitted per successful save.
func (m *RiskModel) Save(ctx context.Context, rec *RiskRecord) error {
	if !rec.saving.CompareAndSwap(false, true) {
		return goerr.Wrap(ErrSaveInProgress, "risk is being saved", goerr.V("cid", rec.cid), goerr.V(model.RiskIDKey, rec.ID))
	}
	defer rec.saving.Store(false)

	if err := m.Validate(ctx, rec); err != nil {
		return err
	}

	op := model.OperationUpdate
	if rec.IsNew() {
		op = model.OperationCreate
	}

	var saved *model.Risk
	var err error
	if op == model.OperationCreate {
		saved, err = m.api.Create(ctx, rec.Snapshot())
	} else {
		saved, err = m.api.Update(ctx, rec.Snapshot())
	}
	if err != nil {
		return err
	}

	local := rec.CustomAttributeValues
	rec.Risk = saved.Copy()
	if rec.CustomAttributeValues == nil {
		rec.CustomAttributeValues = local
	}

	for _, c := range m.capabilities {
		hook, ok := c.(AfterSaver)
		if !ok {
			continue
		}
		if err := hook.AfterSave(ctx, rec, saved); err != nil {
			errutil.Handle(ctx, goerr.Wrap(err, "after save hook failed", goerr.V("capability", c.Name())), "after save hook failed")
		}
	}

	logging.From(ctx).Debug("risk saved", "op", op, "risk_id", rec.ID, "cid", rec.cid)

	m.bus.Emit(ctx, model.Event{
		Name:      model.EventRefreshRelatedDocuments,
		Operation: op,
		Risk:      rec.Snapshot(),
	})
	return nil
}

// FetchAll retrieves every risk as constructed records
func (m *RiskModel) FetchAll(ctx context.Context) ([]*RiskRecord, error) {
	risks, err := m.api.List(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]*RiskRecord, 0, len(risks))
	for _, r := range risks {
		rec, err := m.New(r)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// FetchOne retrieves a single risk. Unknown ids fail with model.ErrNotFound.
func (m *RiskModel) FetchOne(ctx context.Context, id int64) (*RiskRecord, error) {
	r, err := m.api.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.New(r)
}

// Destroy deletes the risk identified by id
func (m *RiskModel) Destroy(ctx context.Context, id int64) error {
	if id == 0 {
		return goerr.Wrap(ErrNotPersisted, "cannot destroy risk")
	}
	return m.api.Delete(ctx, id)
}

// ResolvedRisk holds the objects the stubs of a risk refer to. Fields stay
// empty when no resolver was configured for their type.
type ResolvedRisk struct {
	Risk             *model.Risk
	Contact          *model.Person
	SecondaryContact *model.Person
	ModifiedBy       *model.Person
	Owners           []*model.Person
	Context          *model.Context
	RiskObjects      []*model.RiskObject
}

// Resolve fetches the objects referenced by rec concurrently
func (m *RiskModel) Resolve(ctx context.Context, rec *RiskRecord) (*ResolvedRisk, error) {
	risk := rec.Snapshot()
	resolved := &ResolvedRisk{Risk: risk}

	g, ctx := errgroup.WithContext(ctx)

	if m.people != nil {
		person := func(s *model.Stub, dst **model.Person) {
			if s.IsZero() {
				return
			}
			g.Go(func() error {
				p, err := m.people.GetPerson(ctx, s.ID)
				if err != nil {
					return goerr.Wrap(err, "failed to resolve person", goerr.V("person_id", s.ID))
				}
				*dst = p
				return nil
			})
		}
		person(risk.Contact, &resolved.Contact)
		person(risk.SecondaryContact, &resolved.SecondaryContact)
		person(risk.ModifiedBy, &resolved.ModifiedBy)

		resolved.Owners = make([]*model.Person, len(risk.Owners))
		for i, owner := range risk.Owners {
			person(owner, &resolved.Owners[i])
		}
	}

	if m.contexts != nil && !risk.Context.IsZero() {
		g.Go(func() error {
			c, err := m.contexts.GetContext(ctx, risk.Context.ID)
			if err != nil {
				return goerr.Wrap(err, "failed to resolve context", goerr.V("context_id", risk.Context.ID))
			}
			resolved.Context = c
			return nil
		})
	}

	if m.riskObjects != nil {
		resolved.RiskObjects = make([]*model.RiskObject, len(risk.RiskObjects))
		for i, s := range risk.RiskObjects {
			g.Go(func() error {
				obj, err := m.riskObjects.GetRiskObject(ctx, s.ID)
				if err != nil {
					return goerr.Wrap(err, "failed to resolve risk object", goerr.V("risk_object_id", s.ID))
				}
				resolved.RiskObjects[i] = obj
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}
