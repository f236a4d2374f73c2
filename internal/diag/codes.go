package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// AutoNotify usage errors
	AnNotOnField         Code = 101
	AnOwnerNotExtendable Code = 102
	AnFieldImmutable     Code = 103
	AnFieldNotComparable Code = 104
	AnAccessorCollision  Code = 105
	AnOptionNotConstant  Code = 106

	// enum matcher
	EmFlagsMisapplied Code = 201
	EmNameCollision   Code = 202

	// marker unit
	MkMarkerShadowed Code = 301
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		AnNotOnField:         "Attribute is not applied to field of struct",
		AnOwnerNotExtendable: "Struct does not permit generated members",
		AnFieldImmutable:     "Field is not assignable",
		AnFieldNotComparable: "Field type is not comparable",
		AnAccessorCollision:  "Generated accessor name is already taken",
		AnOptionNotConstant:  "Marker option is not a constant",
		EmFlagsMisapplied:    "Flags marker is not applied to an integer enum type",
		EmNameCollision:      "Generated dispatch helper name is already declared",
		MkMarkerShadowed:     "Package declares a marker name itself",
	}
)

// ID returns the stable identifier printed next to diagnostics, e.g. DL.AN01.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 100 && ic < 200:
		return fmt.Sprintf("DL.AN%02d", ic-100)
	case ic >= 200 && ic < 300:
		return fmt.Sprintf("DL.EM%02d", ic-200)
	case ic >= 300 && ic < 400:
		return fmt.Sprintf("DL.MK%02d", ic-300)
	}
	return "DL.XX00"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
