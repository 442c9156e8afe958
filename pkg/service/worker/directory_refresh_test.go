package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/repository/memory"
	"github.com/secmon-lab/grc-risk/pkg/service/worker"
	"github.com/secmon-lab/grc-risk/pkg/usecase"
)

// mockSource is a DirectorySource whose content can change between loads
type mockSource struct {
	mu       sync.Mutex
	people   []*model.Person
	contexts []*model.Context
	err      error
	loads    int
	loaded   chan struct{}
}

func newMockSource() *mockSource {
	return &mockSource{loaded: make(chan struct{}, 16)}
}

func (m *mockSource) set(people []*model.Person, contexts []*model.Context, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people = people
	m.contexts = contexts
	m.err = err
}

func (m *mockSource) Load(ctx context.Context) ([]*model.Person, []*model.Context, error) {
	m.mu.Lock()
	defer func() {
		m.mu.Unlock()
		select {
		case m.loaded <- struct{}{}:
		default:
		}
	}()

	m.loads++
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.people, m.contexts, nil
}

func waitLoad(t *testing.T, src *mockSource) {
	t.Helper()
	select {
	case <-src.loaded:
	case <-time.After(5 * time.Second):
		t.Fatal("directory was not loaded")
	}
}

func TestDirectoryRefreshWorker_Refresh(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.NewRiskUseCase(repo)
	src := newMockSource()
	w := worker.NewDirectoryRefreshWorker(src, uc, time.Hour)

	t.Run("stores loaded entries", func(t *testing.T) {
		src.set([]*model.Person{{ID: 1, Name: "Alice"}}, []*model.Context{{ID: 2, Name: "Ops"}}, nil)
		gt.NoError(t, w.Refresh(ctx)).Required()

		p, err := repo.Person().Get(ctx, 1)
		gt.NoError(t, err).Required()
		gt.Value(t, p.Name).Equal("Alice")

		c, err := repo.Context().Get(ctx, 2)
		gt.NoError(t, err).Required()
		gt.Value(t, c.Name).Equal("Ops")
	})

	t.Run("load failure keeps stored entries", func(t *testing.T) {
		src.set(nil, nil, errors.New("file not readable"))
		gt.Value(t, w.Refresh(ctx)).NotNil()

		p, err := repo.Person().Get(ctx, 1)
		gt.NoError(t, err).Required()
		gt.Value(t, p.Name).Equal("Alice")
	})

	t.Run("invalid entries fail", func(t *testing.T) {
		src.set([]*model.Person{{Name: "no id"}}, nil, nil)
		gt.Value(t, w.Refresh(ctx)).NotNil()
	})
}

func TestDirectoryRefreshWorker_StartStop(t *testing.T) {
	repo := memory.New()
	src := newMockSource()
	src.set([]*model.Person{{ID: 7, Name: "Grace"}}, nil, nil)

	w := worker.NewDirectoryRefreshWorker(src, usecase.NewRiskUseCase(repo), 10*time.Millisecond)
	gt.NoError(t, w.Start(context.Background())).Required()

	waitLoad(t, src)
	waitLoad(t, src)
	w.Stop()

	p, err := repo.Person().Get(context.Background(), 7)
	gt.NoError(t, err).Required()
	gt.Value(t, p.Name).Equal("Grace")
}

func TestDirectoryRefreshWorker_InvalidInterval(t *testing.T) {
	w := worker.NewDirectoryRefreshWorker(newMockSource(), usecase.NewRiskUseCase(memory.New()), 0)
	gt.Value(t, w.Start(context.Background())).NotNil()
}
