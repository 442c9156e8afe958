package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-risk/pkg/domain/types"
)

func TestRiskStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status types.RiskStatus
		want   bool
	}{
		{name: "draft", status: types.RiskStatusDraft, want: true},
		{name: "deprecated", status: types.RiskStatusDeprecated, want: true},
		{name: "active", status: types.RiskStatusActive, want: true},
		{name: "lowercase is not a member", status: types.RiskStatus("draft"), want: false},
		{name: "unknown", status: types.RiskStatus("Closed"), want: false},
		{name: "empty", status: types.RiskStatus(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, tt.status.IsValid()).Equal(tt.want)
		})
	}
}

func TestRiskStatus_Normalize(t *testing.T) {
	gt.V(t, types.RiskStatus("").Normalize()).Equal(types.RiskStatusDraft)
	gt.V(t, types.RiskStatusActive.Normalize()).Equal(types.RiskStatusActive)
	gt.V(t, types.RiskStatus("bogus").Normalize()).Equal(types.RiskStatus("bogus"))
}

func TestParseRiskStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.RiskStatus
		wantErr bool
	}{
		{name: "draft", input: "Draft", want: types.RiskStatusDraft},
		{name: "deprecated", input: "Deprecated", want: types.RiskStatusDeprecated},
		{name: "active", input: "Active", want: types.RiskStatusActive},
		{name: "invalid", input: "Retired", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseRiskStatus(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.V(t, got).Equal(tt.want)
		})
	}
}

func TestAllRiskStatuses(t *testing.T) {
	statuses := types.AllRiskStatuses()
	gt.A(t, statuses).Length(3)
	gt.V(t, statuses[0]).Equal(types.RiskStatusDraft)

	for _, status := range statuses {
		gt.B(t, status.IsValid()).
			Describef("Status %s should be valid", status).
			True()
	}
}

func TestObjectType_Collection(t *testing.T) {
	tests := []struct {
		typ  types.ObjectType
		want string
	}{
		{typ: types.ObjectTypePerson, want: "people"},
		{typ: types.ObjectTypeContext, want: "contexts"},
		{typ: types.ObjectTypeRisk, want: "risks"},
		{typ: types.ObjectTypeRiskObject, want: "risk_objects"},
		{typ: types.ObjectTypeDocument, want: "documents"},
		{typ: types.ObjectType("OrgGroup"), want: "org_groups"},
		{typ: types.ObjectType("Policy"), want: "policies"},
		{typ: types.ObjectType("Process"), want: "processes"},
		{typ: types.ObjectType(""), want: ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			gt.S(t, tt.typ.Collection()).Equal(tt.want)
		})
	}
}

func TestDocumentType_IsValid(t *testing.T) {
	gt.B(t, types.DocumentTypeReferenceURL.IsValid()).True()
	gt.B(t, types.DocumentTypeURL.IsValid()).True()
	gt.B(t, types.DocumentTypeEvidence.IsValid()).True()
	gt.B(t, types.DocumentType("FILE").IsValid()).False()
}
