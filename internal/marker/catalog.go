package marker

import (
	"slices"
)

// Kind is the tagged variant of markers dlgen understands. The collectors match
// directives syntactically; the kind is only assigned once the directive
// resolved to the marker type declared in the package.
type Kind uint8

const (
	KindNone Kind = iota
	KindAutoNotify
	KindFlags
)

func (k Kind) String() string {
	switch k {
	case KindAutoNotify:
		return "AutoNotify"
	case KindFlags:
		return "Flags"
	default:
		return "none"
	}
}

// TargetMask describes the declarations a marker may be attached to.
type TargetMask uint8

const (
	TargetNone  TargetMask = 0
	TargetField TargetMask = 1 << iota // struct fields
	TargetType                         // type declarations
)

// Spec describes a marker, the Go type name it is declared under and its
// supported targets.
type Spec struct {
	Kind    Kind
	Name    string
	Targets TargetMask
}

// Allows reports whether the marker can be applied to the provided target bit.
func (spec Spec) Allows(target TargetMask) bool {
	return spec.Targets&target != 0
}

var registry = map[string]Spec{
	"AutoNotify": {Kind: KindAutoNotify, Name: "AutoNotify", Targets: TargetField},
	"Flags":      {Kind: KindFlags, Name: "Flags", Targets: TargetType},
}

// Lookup returns metadata for the marker declared under the given type name.
func Lookup(name string) (Spec, bool) {
	if name == "" {
		return Spec{}, false
	}
	spec, ok := registry[name]
	return spec, ok
}

// LookupKind returns metadata for the given kind.
func LookupKind(kind Kind) (Spec, bool) {
	for _, spec := range registry {
		if spec.Kind == kind {
			return spec, true
		}
	}
	return Spec{}, false
}

// Specs returns all registered markers sorted by name.
func Specs() []Spec {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	result := make([]Spec, 0, len(names))
	for _, name := range names {
		result = append(result, registry[name])
	}
	return result
}
