package model_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/domain/types"
)

func newRequiredValidator() *model.Validator {
	v := model.NewValidator()
	model.RiskDescriptor().RegisterRules(v)
	return v
}

func TestValidator_Presence(t *testing.T) {
	tests := []struct {
		name       string
		risk       *model.Risk
		wantFields []string
	}{
		{
			name: "all required fields present",
			risk: &model.Risk{
				Title:       "Data breach",
				Description: "Risk of PII leak",
				Contact:     model.NewPersonStub(42),
			},
		},
		{
			name: "missing title",
			risk: &model.Risk{
				Description: "Risk of PII leak",
				Contact:     model.NewPersonStub(42),
			},
			wantFields: []string{"title"},
		},
		{
			name: "missing description and contact",
			risk: &model.Risk{
				Title: "Data breach",
			},
			wantFields: []string{"description", "contact"},
		},
		{
			name:       "everything missing",
			risk:       &model.Risk{},
			wantFields: []string{"title", "description", "contact"},
		},
		{
			name: "whitespace title counts as blank",
			risk: &model.Risk{
				Title:       "   ",
				Description: "Risk of PII leak",
				Contact:     model.NewPersonStub(42),
			},
			wantFields: []string{"title"},
		},
		{
			name: "contact stub without id counts as missing",
			risk: &model.Risk{
				Title:       "Data breach",
				Description: "Risk of PII leak",
				Contact:     &model.Stub{Type: types.ObjectTypePerson},
			},
			wantFields: []string{"contact"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newRequiredValidator().Validate(context.Background(), tt.risk)
			if len(tt.wantFields) == 0 {
				gt.NoError(t, err)
				return
			}

			gt.Error(t, err).Is(model.ErrValidation)
			ve, ok := model.AsValidationError(err)
			gt.B(t, ok).True()
			gt.V(t, ve.Fields()).Equal(tt.wantFields)
			for _, fe := range ve.Errors {
				gt.S(t, fe.Reason).Equal(model.ReasonBlank)
			}
		})
	}
}

func TestValidator_StatusInclusion(t *testing.T) {
	base := func(status types.RiskStatus) *model.Risk {
		return &model.Risk{
			Title:       "Data breach",
			Description: "Risk of PII leak",
			Contact:     model.NewPersonStub(42),
			Status:      status,
		}
	}

	for _, status := range types.AllRiskStatuses() {
		t.Run(status.String(), func(t *testing.T) {
			gt.NoError(t, newRequiredValidator().Validate(context.Background(), base(status)))
		})
	}

	t.Run("status outside the domain fails", func(t *testing.T) {
		err := newRequiredValidator().Validate(context.Background(), base("Retired"))
		ve, ok := model.AsValidationError(err)
		gt.B(t, ok).True()
		gt.A(t, ve.Errors).Length(1)
		gt.S(t, ve.Errors[0].Field).Equal("status")
		gt.S(t, ve.Errors[0].Reason).Contains("Draft, Deprecated, Active")
	})
}

func TestValidator_CustomChecks(t *testing.T) {
	t.Run("collects every failure in registration order", func(t *testing.T) {
		v := model.NewValidator()
		v.Add("title", func(context.Context, *model.Risk) (string, error) { return "first", nil })
		v.Add("title", func(context.Context, *model.Risk) (string, error) { return "second", nil })
		v.ValidatePresenceOf("owners")

		err := v.Validate(context.Background(), &model.Risk{})
		ve, ok := model.AsValidationError(err)
		gt.B(t, ok).True()
		gt.A(t, ve.Errors).Length(3)
		gt.S(t, ve.Errors[0].Reason).Equal("first")
		gt.S(t, ve.Errors[1].Reason).Equal("second")
		gt.S(t, ve.Errors[2].Field).Equal("owners")
		gt.V(t, ve.Fields()).Equal([]string{"title", "owners"})
		gt.B(t, ve.Has("owners")).True()
		gt.B(t, ve.Has("contact")).False()
	})

	t.Run("infrastructure error aborts validation", func(t *testing.T) {
		errBackend := goerr.New("backend down")
		v := model.NewValidator()
		v.ValidatePresenceOf("title")
		v.Add("title", func(context.Context, *model.Risk) (string, error) { return "", errBackend })

		err := v.Validate(context.Background(), &model.Risk{})
		gt.Error(t, err).Is(errBackend)
		gt.B(t, errors.Is(err, model.ErrValidation)).False()
	})

	t.Run("remote check is skipped while local checks fail", func(t *testing.T) {
		errBackend := goerr.New("backend down")
		called := false
		v := model.NewValidator()
		v.AddRemote("title", func(context.Context, *model.Risk) (string, error) {
			called = true
			return "", errBackend
		})
		model.RiskDescriptor().RegisterRules(v)

		err := v.Validate(context.Background(), &model.Risk{Title: "Data breach"})
		ve, ok := model.AsValidationError(err)
		gt.B(t, ok).True()
		gt.V(t, ve.Fields()).Equal([]string{"description", "contact"})
		gt.B(t, called).False()
	})

	t.Run("remote check runs once the record is locally valid", func(t *testing.T) {
		errBackend := goerr.New("backend down")
		v := newRequiredValidator()
		v.AddRemote("title", func(context.Context, *model.Risk) (string, error) { return "", errBackend })

		err := v.Validate(context.Background(), &model.Risk{
			Title:       "Data breach",
			Description: "Risk of PII leak",
			Contact:     model.NewPersonStub(42),
		})
		gt.Error(t, err).Is(errBackend)

		v = newRequiredValidator()
		v.AddRemote("title", func(context.Context, *model.Risk) (string, error) { return model.ReasonNotUnique, nil })
		err = v.Validate(context.Background(), &model.Risk{
			Title:       "Data breach",
			Description: "Risk of PII leak",
			Contact:     model.NewPersonStub(42),
		})
		ve, ok := model.AsValidationError(err)
		gt.B(t, ok).True()
		gt.V(t, ve.Fields()).Equal([]string{"title"})
	})

	t.Run("unknown attribute is reported", func(t *testing.T) {
		v := model.NewValidator()
		v.ValidatePresenceOf("severity")

		err := v.Validate(context.Background(), &model.Risk{})
		ve, ok := model.AsValidationError(err)
		gt.B(t, ok).True()
		gt.S(t, ve.Errors[0].Reason).Equal(model.ReasonUnknownAttr)
	})
}

func TestValidationError_Wrapped(t *testing.T) {
	ve := &model.ValidationError{Errors: []model.FieldError{{Field: "title", Reason: model.ReasonBlank}}}
	err := goerr.Wrap(ve, "failed to save risk")

	gt.Error(t, err).Is(model.ErrValidation)
	got, ok := model.AsValidationError(err)
	gt.B(t, ok).True()
	gt.V(t, got.Fields()).Equal([]string{"title"})
	gt.S(t, ve.Error()).Equal("validation failed: title cannot be blank")
}
