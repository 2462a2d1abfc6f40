package ir

// EnumDecl is a compiled enumeration declaration.
type EnumDecl struct {
	Name         string           `json:"name"`
	Bases        []string         `json:"bases"`
	Members      []MemberDecl     `json:"members"`
	Capabilities []CapabilityDecl `json:"capabilities,omitempty"`
	Boundary     string           `json:"boundary,omitempty"` // flag types only
	Order        []string         `json:"order,omitempty"`
}

// MemberDecl declares one member. A member with no Args is generated.
type MemberDecl struct {
	Name string  `json:"name"`
	Args IRArray `json:"args,omitempty"`
}

// Auto reports whether the member value is left to the type's generator.
func (m MemberDecl) Auto() bool { return len(m.Args) == 0 }

// CapabilityDecl declares a method or property.
//
// Concrete capabilities carry a text/template body rendered against the
// receiving member; abstract ones carry none.
type CapabilityDecl struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"` // "method" or "property"
	Abstract bool   `json:"abstract,omitempty"`
	Template string `json:"template,omitempty"`
	Settable bool   `json:"settable,omitempty"` // properties only
}

// ValidCapabilityKinds defines allowed capability kinds.
var ValidCapabilityKinds = map[string]bool{
	"method":   true,
	"property": true,
}

// ValidBoundaries defines allowed flag boundary policies.
var ValidBoundaries = map[string]bool{
	"strict":  true,
	"conform": true,
	"eject":   true,
	"keep":    true,
}

// IRObject returns the declaration as an IRObject, the form hashed by DeclHash.
// Optional fields are omitted when empty so adding them later does not
// change existing hashes.
func (d EnumDecl) IRObject() IRObject {
	bases := make(IRArray, len(d.Bases))
	for i, b := range d.Bases {
		bases[i] = IRString(b)
	}

	members := make(IRArray, len(d.Members))
	for i, m := range d.Members {
		obj := IRObject{"name": IRString(m.Name)}
		if !m.Auto() {
			obj["args"] = m.Args
		}
		members[i] = obj
	}

	obj := IRObject{
		"name":    IRString(d.Name),
		"bases":   bases,
		"members": members,
	}

	if len(d.Capabilities) > 0 {
		caps := make(IRArray, len(d.Capabilities))
		for i, c := range d.Capabilities {
			co := IRObject{
				"name": IRString(c.Name),
				"kind": IRString(c.Kind),
			}
			if c.Abstract {
				co["abstract"] = IRBool(true)
			}
			if c.Template != "" {
				co["template"] = IRString(c.Template)
			}
			if c.Settable {
				co["settable"] = IRBool(true)
			}
			caps[i] = co
		}
		obj["capabilities"] = caps
	}
	if d.Boundary != "" {
		obj["boundary"] = IRString(d.Boundary)
	}
	if len(d.Order) > 0 {
		order := make(IRArray, len(d.Order))
		for i, n := range d.Order {
			order[i] = IRString(n)
		}
		obj["order"] = order
	}
	return obj
}
