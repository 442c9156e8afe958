package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/domain/types"
	"github.com/secmon-lab/grc-risk/pkg/repository/memory"
	"github.com/secmon-lab/grc-risk/pkg/service/event"
	"github.com/secmon-lab/grc-risk/pkg/usecase"
)

func newRiskUseCase(t *testing.T) (*usecase.RiskUseCase, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	uc := usecase.New(repo)
	gt.NoError(t, uc.Risk.SeedDirectory(context.Background(),
		[]*model.Person{{ID: 1, Name: "Alice", Email: "alice@example.com"}, {ID: 2, Name: "Bob"}},
		[]*model.Context{{ID: 1, Name: "Default"}},
	)).Required()
	return uc.Risk, repo
}

func TestRiskUseCase_CreateRisk(t *testing.T) {
	t.Run("applies server defaults", func(t *testing.T) {
		uc, repo := newRiskUseCase(t)
		ctx := model.ContextWithActor(context.Background(), model.NewPersonStub(2))

		attrs := validRisk("  Supplier failure ")
		attrs.ReferenceURL = "https://example.com/ref"
		attrs.Objects = []*model.Stub{model.NewStub("Control", 4), model.NewStub("System", 9)}
		attrs.RiskObjects = []*model.Stub{model.NewStub(types.ObjectTypeRiskObject, 100)}

		created, err := uc.CreateRisk(ctx, attrs)
		gt.NoError(t, err).Required()

		gt.N(t, created.ID).Equal(1)
		gt.Value(t, created.Title).Equal("Supplier failure")
		gt.Value(t, created.Slug).Equal("RISK-1")

		// padded titles come back trimmed
		got, err := uc.GetRisk(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Supplier failure")
		gt.Value(t, created.Status).Equal(types.RiskStatusDraft)
		gt.Value(t, created.ModifiedBy.ID).Equal(int64(2))
		gt.B(t, created.Owners != nil).True()
		gt.A(t, created.Owners).Length(0)
		gt.B(t, created.CreatedAt.IsZero()).False()

		gt.A(t, created.RiskObjects).Length(2)
		objs, err := repo.RiskObject().ListByRisk(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.A(t, objs).Length(2)
		gt.Value(t, created.RiskObjects[0].ID).Equal(objs[0].ID)
		gt.Value(t, created.RiskObjects[0].Type).Equal(types.ObjectTypeRiskObject)
		gt.Value(t, objs[1].Object.Type).Equal(types.ObjectType("System"))

		docs, err := uc.ListDocuments(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.A(t, docs).Length(1)
		gt.Value(t, docs[0].DocumentType).Equal(types.DocumentTypeReferenceURL)
		gt.Value(t, docs[0].Link).Equal("https://example.com/ref")
	})

	t.Run("keeps a given slug", func(t *testing.T) {
		uc, _ := newRiskUseCase(t)
		attrs := validRisk("Slugged")
		attrs.Slug = "RISK-CUSTOM"

		created, err := uc.CreateRisk(context.Background(), attrs)
		gt.NoError(t, err).Required()
		gt.Value(t, created.Slug).Equal("RISK-CUSTOM")
	})

	t.Run("invalid risk is not stored", func(t *testing.T) {
		uc, _ := newRiskUseCase(t)
		ctx := context.Background()

		_, err := uc.CreateRisk(ctx, &model.Risk{Status: "Closed"})
		gt.Error(t, err).Is(model.ErrValidation)

		verr, ok := model.AsValidationError(err)
		gt.B(t, ok).True()
		gt.V(t, verr.Fields()).Equal([]string{"title", "description", "contact", "status"})

		risks, err := uc.ListRisks(ctx)
		gt.NoError(t, err).Required()
		gt.A(t, risks).Length(0)
	})

	t.Run("duplicate title", func(t *testing.T) {
		uc, _ := newRiskUseCase(t)
		ctx := context.Background()

		_, err := uc.CreateRisk(ctx, validRisk("Phishing"))
		gt.NoError(t, err).Required()

		_, err = uc.CreateRisk(ctx, validRisk("PHISHING"))
		verr, ok := model.AsValidationError(err)
		gt.B(t, ok).True()
		gt.V(t, verr.Errors).Equal([]model.FieldError{{Field: "title", Reason: model.ReasonNotUnique}})
	})
}

type failingDocuments struct {
	interfaces.DocumentRepository
	err error
}

func (f *failingDocuments) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.DocumentRepository.Create(ctx, doc)
}

type brokenDocumentRepo struct {
	*memory.Memory
	docs *failingDocuments
}

func (r *brokenDocumentRepo) Document() interfaces.DocumentRepository { return r.docs }

func TestRiskUseCase_CreateRiskRollback(t *testing.T) {
	ctx := context.Background()
	errStore := errors.New("document store unavailable")
	mem := memory.New()
	repo := &brokenDocumentRepo{
		Memory: mem,
		docs:   &failingDocuments{DocumentRepository: mem.Document(), err: errStore},
	}
	uc := usecase.New(repo).Risk
	gt.NoError(t, uc.SeedDirectory(ctx, []*model.Person{{ID: 1, Name: "Alice"}}, nil)).Required()

	attrs := validRisk("Half stored")
	attrs.ReferenceURL = "https://example.com/ref"
	attrs.Objects = []*model.Stub{model.NewStub("Control", 4)}

	_, err := uc.CreateRisk(ctx, attrs)
	gt.Error(t, err).Is(errStore)

	risks, err := mem.Risk().List(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, risks).Length(0)

	objs, err := mem.RiskObject().ListByRisk(ctx, 1)
	gt.NoError(t, err).Required()
	gt.A(t, objs).Length(0)

	// the title is free again once the broken create is undone
	repo.docs.err = nil
	created, err := uc.CreateRisk(ctx, attrs)
	gt.NoError(t, err).Required()
	gt.Value(t, created.Title).Equal("Half stored")

	docs, err := uc.ListDocuments(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.A(t, docs).Length(1)
}

func TestRiskUseCase_UpdateRisk(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces reference url and keeps derived fields", func(t *testing.T) {
		uc, repo := newRiskUseCase(t)
		attrs := validRisk("Updated")
		attrs.ReferenceURL = "https://old.example.com"
		attrs.Objects = []*model.Stub{model.NewStub("Control", 1)}
		created, err := uc.CreateRisk(model.ContextWithActor(ctx, model.NewPersonStub(1)), attrs)
		gt.NoError(t, err).Required()

		change := created.Copy()
		change.Slug = ""
		change.ModifiedBy = nil
		change.Status = types.RiskStatusActive
		change.ReferenceURL = "https://new.example.com"

		updated, err := uc.UpdateRisk(ctx, created.ID, change)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Slug).Equal(created.Slug)
		gt.Value(t, updated.Status).Equal(types.RiskStatusActive)
		gt.Value(t, updated.ModifiedBy.ID).Equal(int64(1))
		gt.V(t, updated.RiskObjects).Equal(created.RiskObjects)

		objs, err := repo.RiskObject().ListByRisk(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.A(t, objs).Length(1)

		docs, err := uc.ListDocuments(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.A(t, docs).Length(1)
		gt.Value(t, docs[0].Link).Equal("https://new.example.com")
	})

	t.Run("changed objects are rebuilt", func(t *testing.T) {
		uc, repo := newRiskUseCase(t)
		attrs := validRisk("Objects")
		attrs.Objects = []*model.Stub{model.NewStub("Control", 1)}
		created, err := uc.CreateRisk(ctx, attrs)
		gt.NoError(t, err).Required()

		change := created.Copy()
		change.Objects = []*model.Stub{model.NewStub("Control", 2), model.NewStub("Program", 3)}
		updated, err := uc.UpdateRisk(ctx, created.ID, change)
		gt.NoError(t, err).Required()

		gt.A(t, updated.RiskObjects).Length(2)
		objs, err := repo.RiskObject().ListByRisk(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.A(t, objs).Length(2)
		gt.Value(t, objs[0].Object.ID).Equal(int64(2))
	})

	t.Run("clearing reference url removes the document", func(t *testing.T) {
		uc, _ := newRiskUseCase(t)
		attrs := validRisk("Cleared")
		attrs.ReferenceURL = "https://example.com"
		created, err := uc.CreateRisk(ctx, attrs)
		gt.NoError(t, err).Required()

		change := created.Copy()
		change.ReferenceURL = ""
		_, err = uc.UpdateRisk(ctx, created.ID, change)
		gt.NoError(t, err).Required()

		docs, err := uc.ListDocuments(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.A(t, docs).Length(0)
	})

	t.Run("own title is not a duplicate", func(t *testing.T) {
		uc, _ := newRiskUseCase(t)
		created, err := uc.CreateRisk(ctx, validRisk("Same title"))
		gt.NoError(t, err).Required()

		_, err = uc.UpdateRisk(ctx, created.ID, created)
		gt.NoError(t, err)
	})

	t.Run("unknown risk", func(t *testing.T) {
		uc, _ := newRiskUseCase(t)
		_, err := uc.UpdateRisk(ctx, 404, validRisk("Missing"))
		gt.Error(t, err).Is(model.ErrNotFound)
	})
}

func TestRiskUseCase_DeleteRisk(t *testing.T) {
	ctx := context.Background()
	uc, repo := newRiskUseCase(t)

	attrs := validRisk("Deleted")
	attrs.ReferenceURL = "https://example.com"
	attrs.Objects = []*model.Stub{model.NewStub("Control", 1)}
	created, err := uc.CreateRisk(ctx, attrs)
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.DeleteRisk(ctx, created.ID)).Required()

	_, err = uc.GetRisk(ctx, created.ID)
	gt.Error(t, err).Is(model.ErrNotFound)

	objs, err := repo.RiskObject().ListByRisk(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.A(t, objs).Length(0)

	docs, err := repo.Document().ListByRisk(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.A(t, docs).Length(0)

	gt.Error(t, uc.DeleteRisk(ctx, created.ID)).Is(model.ErrNotFound)

	_, err = uc.ListDocuments(ctx, created.ID)
	gt.Error(t, err).Is(model.ErrNotFound)
}

func TestRiskUseCase_Directory(t *testing.T) {
	ctx := context.Background()
	uc, _ := newRiskUseCase(t)

	p, err := uc.GetPerson(ctx, 1)
	gt.NoError(t, err).Required()
	gt.Value(t, p.Email).Equal("alice@example.com")

	c, err := uc.GetContext(ctx, 1)
	gt.NoError(t, err).Required()
	gt.Value(t, c.Name).Equal("Default")

	_, err = uc.GetPerson(ctx, 99)
	gt.Error(t, err).Is(model.ErrNotFound)

	_, err = uc.GetRiskObject(ctx, 99)
	gt.Error(t, err).Is(model.ErrNotFound)
}

func TestRiskUseCase_Events(t *testing.T) {
	repo := memory.New()
	bus := event.New()
	uc := usecase.New(repo, usecase.WithServerEventBus(bus))
	ctx := context.Background()
	gt.NoError(t, uc.Risk.SeedDirectory(ctx, []*model.Person{{ID: 1, Name: "Alice"}}, nil)).Required()

	var got []model.Event
	bus.Subscribe(model.EventRefreshRelatedDocuments, func(ctx context.Context, ev model.Event) {
		got = append(got, ev)
	})

	created, err := uc.Risk.CreateRisk(ctx, validRisk("Evented"))
	gt.NoError(t, err).Required()

	created.Notes = "changed"
	_, err = uc.Risk.UpdateRisk(ctx, created.ID, created)
	gt.NoError(t, err).Required()

	_, err = uc.Risk.CreateRisk(ctx, &model.Risk{})
	gt.Error(t, err)

	gt.A(t, got).Length(2).Required()
	gt.Value(t, got[0].Operation).Equal(model.OperationCreate)
	gt.Value(t, got[1].Operation).Equal(model.OperationUpdate)
	gt.Value(t, got[1].Risk.Notes).Equal("changed")
}

func TestRiskUseCase_PeopleRulesMatchClient(t *testing.T) {
	ctx := context.Background()
	uc, _ := newRiskUseCase(t)
	m := usecase.NewRiskModel(newFakeRiskAPI())

	attrs := validRisk("Wrong people")
	attrs.Owners = []*model.Stub{model.NewPersonStub(1), model.NewStub(types.ObjectTypeContext, 4)}
	attrs.Contact = model.NewStub(types.ObjectTypeContext, 3)
	attrs.SecondaryContact = model.NewStub("Control", 5)

	reasons := func(err error) map[string]string {
		verr, ok := model.AsValidationError(err)
		gt.B(t, ok).Required().True()
		out := map[string]string{}
		for _, fe := range verr.Errors {
			out[fe.Field] = fe.Reason
		}
		return out
	}

	_, err := uc.CreateRisk(ctx, attrs)
	server := reasons(err)

	rec, err := m.New(attrs)
	gt.NoError(t, err).Required()
	client := reasons(m.Validate(ctx, rec))

	gt.V(t, server).Equal(client)
	gt.M(t, server).Length(3)
	for _, field := range []string{"owners", "contact", "secondary_contact"} {
		gt.S(t, server[field]).IsNotEmpty()
	}
}
