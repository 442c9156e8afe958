package model

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/secmon-lab/grc-risk/pkg/domain/types"
)

// Operation is one REST operation of a model
type Operation string

const (
	OperationList   Operation = "list"
	OperationGet    Operation = "get"
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Endpoint is an HTTP method and a path template that may contain "{id}"
type Endpoint struct {
	Method string
	Path   string
}

// Expand renders the path with id substituted for "{id}"
func (e Endpoint) Expand(id int64) string {
	return strings.ReplaceAll(e.Path, "{id}", strconv.FormatInt(id, 10))
}

func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

// AttributeKind tells how an attribute is decoded from the wire
type AttributeKind string

const (
	// AttributeStub is a single reference of a fixed type
	AttributeStub AttributeKind = "stub"
	// AttributeStubs is a list of references of a fixed type
	AttributeStubs AttributeKind = "stubs"
	// AttributeAnyStubs is a list of references of arbitrary types
	AttributeAnyStubs AttributeKind = "get_stubs"
)

// AttributeHint declares the kind and referenced type of an attribute
type AttributeHint struct {
	Kind AttributeKind
	Type types.ObjectType
}

// TreeAttr is one column of the tree view listing
type TreeAttr struct {
	Title string `json:"attr_title"`
	Name  string `json:"attr_name"`
}

// TreeViewOptions are display hints for the tree view
type TreeViewOptions struct {
	AddItemView string     `json:"add_item_view"`
	AttrView    string     `json:"attr_view"`
	AttrList    []TreeAttr `json:"attr_list"`
}

// Capability names composed into a model, in initialization order
const (
	CapabilityOwnable     = "ownable"
	CapabilityContactable = "contactable"
	CapabilityUniqueTitle = "unique_title"
	CapabilityCAUpdate    = "ca_update"
)

// Descriptor binds a model to its REST endpoints and declares how its
// attributes are decoded, defaulted, validated and displayed.
type Descriptor struct {
	RootObject         string
	RootCollection     string
	Category           string
	Endpoints          map[Operation]Endpoint
	Capabilities       []string
	CustomAttributable bool
	Roleable           bool
	Attributes         map[string]AttributeHint
	TreeView           TreeViewOptions
	DefaultStatus      types.RiskStatus
	Statuses           []types.RiskStatus
	RequiredFields     []string
}

// Endpoint returns the endpoint of op
func (d *Descriptor) Endpoint(op Operation) (Endpoint, bool) {
	ep, ok := d.Endpoints[op]
	return ep, ok
}

// StatusValues returns the status domain as strings
func (d *Descriptor) StatusValues() []string {
	values := make([]string, len(d.Statuses))
	for i, s := range d.Statuses {
		values[i] = s.String()
	}
	return values
}

// RegisterRules adds the required-field presence checks and the status
// domain check to v.
func (d *Descriptor) RegisterRules(v *Validator) {
	for _, field := range d.RequiredFields {
		v.ValidatePresenceOf(field)
	}
	v.ValidateInclusionOf("status", d.StatusValues())
}

// baseTreeAttrs are the columns every listed model shows
var baseTreeAttrs = []TreeAttr{
	{Title: "Title", Name: "title"},
	{Title: "Owner", Name: "owners"},
	{Title: "Code", Name: "slug"},
	{Title: "State", Name: "status"},
	{Title: "Primary Contact", Name: "contact"},
	{Title: "Last Updated", Name: "updated_at"},
}

// RiskDescriptor returns the descriptor of the Risk model
func RiskDescriptor() *Descriptor {
	attrList := append([]TreeAttr{}, baseTreeAttrs...)
	attrList = append(attrList, TreeAttr{Title: "Reference URL", Name: "reference_url"})

	return &Descriptor{
		RootObject:     "risk",
		RootCollection: "risks",
		Category:       "risk",
		Endpoints: map[Operation]Endpoint{
			OperationList:   {Method: http.MethodGet, Path: "/api/risks"},
			OperationGet:    {Method: http.MethodGet, Path: "/api/risks/{id}"},
			OperationCreate: {Method: http.MethodPost, Path: "/api/risks"},
			OperationUpdate: {Method: http.MethodPut, Path: "/api/risks/{id}"},
			OperationDelete: {Method: http.MethodDelete, Path: "/api/risks/{id}"},
		},
		Capabilities: []string{
			CapabilityOwnable,
			CapabilityContactable,
			CapabilityUniqueTitle,
			CapabilityCAUpdate,
		},
		CustomAttributable: true,
		Roleable:           true,
		Attributes: map[string]AttributeHint{
			"context":      {Kind: AttributeStub, Type: types.ObjectTypeContext},
			"contact":      {Kind: AttributeStub, Type: types.ObjectTypePerson},
			"owners":       {Kind: AttributeStubs, Type: types.ObjectTypePerson},
			"modified_by":  {Kind: AttributeStub, Type: types.ObjectTypePerson},
			"objects":      {Kind: AttributeAnyStubs},
			"risk_objects": {Kind: AttributeStubs, Type: types.ObjectTypeRiskObject},
		},
		TreeView: TreeViewOptions{
			AddItemView: "/base_objects/tree_add_item.mustache",
			AttrView:    "/base_objects/tree-item-attr.mustache",
			AttrList:    attrList,
		},
		DefaultStatus:  types.DefaultRiskStatus,
		Statuses:       types.AllRiskStatuses(),
		RequiredFields: []string{"title", "description", "contact"},
	}
}
