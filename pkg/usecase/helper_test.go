package usecase_test

import (
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

// fakeRiskAPI is an in-memory RiskAPI recording the calls it receives
type fakeRiskAPI struct {
	mu     sync.Mutex
	risks  map[int64]*model.Risk
	nextID int64
	calls  []string

	// block, when set, is waited on inside Create and Update
	block chan struct{}
	// entered is signalled when Create or Update starts
	entered chan struct{}
	// saveErr is returned by Create and Update when set
	saveErr error
	// omitCAV drops custom attribute values from save responses
	omitCAV bool
	// listErr is returned by List when set
	listErr error
}

func newFakeRiskAPI(risks ...*model.Risk) *fakeRiskAPI {
	api := &fakeRiskAPI{
		risks:  make(map[int64]*model.Risk),
		nextID: 1,
	}
	for _, r := range risks {
		if r.ID >= api.nextID {
			api.nextID = r.ID + 1
		}
		api.risks[r.ID] = r.Copy()
	}
	return api
}

func (f *fakeRiskAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeRiskAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeRiskAPI) List(ctx context.Context) ([]*model.Risk, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []*model.Risk
	for id := int64(1); id < f.nextID; id++ {
		if r, ok := f.risks[id]; ok {
			out = append(out, r.Copy())
		}
	}
	return out, nil
}

func (f *fakeRiskAPI) Get(ctx context.Context, id int64) (*model.Risk, error) {
	f.record("get")
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.risks[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "risk not found", goerr.V(model.RiskIDKey, id))
	}
	return r.Copy(), nil
}

func (f *fakeRiskAPI) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeRiskAPI) response(r *model.Risk) *model.Risk {
	out := r.Copy()
	if f.omitCAV {
		out.CustomAttributeValues = nil
	}
	return out
}

func (f *fakeRiskAPI) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	f.record("create")
	f.wait()
	if f.saveErr != nil {
		return nil, f.saveErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	created := risk.Copy()
	created.ID = f.nextID
	f.nextID++
	f.risks[created.ID] = created
	return f.response(created), nil
}

func (f *fakeRiskAPI) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	f.record("update")
	f.wait()
	if f.saveErr != nil {
		return nil, f.saveErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.risks[risk.ID]; !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "risk not found", goerr.V(model.RiskIDKey, risk.ID))
	}
	updated := risk.Copy()
	f.risks[updated.ID] = updated
	return f.response(updated), nil
}

func (f *fakeRiskAPI) Delete(ctx context.Context, id int64) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.risks[id]; !ok {
		return goerr.Wrap(model.ErrNotFound, "risk not found", goerr.V(model.RiskIDKey, id))
	}
	delete(f.risks, id)
	return nil
}

// validRisk returns attributes that pass every rule of the Risk model
func validRisk(title string) *model.Risk {
	return &model.Risk{
		Title:       title,
		Description: "description of " + title,
		Contact:     model.NewPersonStub(1),
	}
}
