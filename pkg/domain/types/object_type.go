package types

import (
	"strings"
	"unicode"
)

// ObjectType is the server side type name carried by a stub reference.
type ObjectType string

const (
	ObjectTypePerson     ObjectType = "Person"
	ObjectTypeContext    ObjectType = "Context"
	ObjectTypeRisk       ObjectType = "Risk"
	ObjectTypeRiskObject ObjectType = "RiskObject"
	ObjectTypeDocument   ObjectType = "Document"
)

var collections = map[ObjectType]string{
	ObjectTypePerson:     "people",
	ObjectTypeContext:    "contexts",
	ObjectTypeRisk:       "risks",
	ObjectTypeRiskObject: "risk_objects",
	ObjectTypeDocument:   "documents",
}

// Collection returns the REST collection name of the type. Unknown types are
// converted to snake_case and pluralized, e.g. "OrgGroup" -> "org_groups".
func (t ObjectType) Collection() string {
	if c, ok := collections[t]; ok {
		return c
	}

	var b strings.Builder
	for i, r := range string(t) {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}

	name := b.String()
	switch {
	case name == "":
		return ""
	case strings.HasSuffix(name, "y"):
		return strings.TrimSuffix(name, "y") + "ies"
	case strings.HasSuffix(name, "s"):
		return name + "es"
	default:
		return name + "s"
	}
}

func (t ObjectType) String() string {
	return string(t)
}
