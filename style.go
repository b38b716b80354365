package passbook

import "fmt"

// StyleKind identifies one of the five pass layouts.
type StyleKind int

// Pass layouts.
const (
	BoardingPass StyleKind = iota
	Coupon
	EventTicket
	Generic
	StoreCard
)

// JSONName returns the pass.json key holding the layout's fields.
func (k StyleKind) JSONName() string {
	switch k {
	case BoardingPass:
		return "boardingPass"
	case Coupon:
		return "coupon"
	case EventTicket:
		return "eventTicket"
	case Generic:
		return "generic"
	case StoreCard:
		return "storeCard"
	default:
		return fmt.Sprintf("StyleKind(%d)", int(k))
	}
}

// ParseStyleKind maps a pass.json layout key back to its StyleKind.
func ParseStyleKind(name string) (StyleKind, error) {
	for _, k := range []StyleKind{BoardingPass, Coupon, EventTicket, Generic, StoreCard} {
		if k.JSONName() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown pass style %q", name)
}

// TransitType is the mode of transport of a boarding pass.
type TransitType string

// Transit types.
const (
	TransitAir     TransitType = "PKTransitTypeAir"
	TransitTrain   TransitType = "PKTransitTypeTrain"
	TransitBus     TransitType = "PKTransitTypeBus"
	TransitBoat    TransitType = "PKTransitTypeBoat"
	TransitGeneric TransitType = "PKTransitTypeGeneric"
)

// Section names one of the five ordered field lists of a style.
type Section int

// Field sections, in serialization order.
const (
	HeaderFields Section = iota
	PrimaryFields
	SecondaryFields
	BackFields
	AuxiliaryFields

	numSections
)

// String returns the pass.json key of the section.
func (s Section) String() string {
	switch s {
	case HeaderFields:
		return "headerFields"
	case PrimaryFields:
		return "primaryFields"
	case SecondaryFields:
		return "secondaryFields"
	case BackFields:
		return "backFields"
	case AuxiliaryFields:
		return "auxiliaryFields"
	default:
		return fmt.Sprintf("Section(%d)", int(s))
	}
}

func (s Section) valid() bool {
	return s >= HeaderFields && s < numSections
}

// ParseSection maps a pass.json section key back to its Section.
func ParseSection(name string) (Section, error) {
	for s := HeaderFields; s < numSections; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown field section %q", name)
}

// Style is the layout of a pass together with its field sections.
// The kind is fixed at construction; fields are appended in call order.
type Style struct {
	kind        StyleKind
	transitType TransitType
	sections    [numSections][]Field
}

// NewBoardingPass returns a boarding pass layout. An empty transit type
// defaults to TransitAir.
func NewBoardingPass(transit TransitType) *Style {
	if transit == "" {
		transit = TransitAir
	}
	return &Style{kind: BoardingPass, transitType: transit}
}

// NewCoupon returns a coupon layout.
func NewCoupon() *Style { return &Style{kind: Coupon} }

// NewEventTicket returns an event ticket layout.
func NewEventTicket() *Style { return &Style{kind: EventTicket} }

// NewGeneric returns a generic layout.
func NewGeneric() *Style { return &Style{kind: Generic} }

// NewStoreCard returns a store card layout.
func NewStoreCard() *Style { return &Style{kind: StoreCard} }

// NewStyle returns an empty layout of the given kind.
func NewStyle(kind StyleKind) (*Style, error) {
	switch kind {
	case BoardingPass:
		return NewBoardingPass(TransitAir), nil
	case Coupon, EventTicket, Generic, StoreCard:
		return &Style{kind: kind}, nil
	default:
		return nil, fmt.Errorf("unknown pass style %s", kind.JSONName())
	}
}

// Kind returns the layout kind.
func (s *Style) Kind() StyleKind { return s.kind }

// JSONName returns the pass.json key for this layout.
func (s *Style) JSONName() string { return s.kind.JSONName() }

// TransitType returns the boarding pass transit type, or "" for other layouts.
func (s *Style) TransitType() TransitType { return s.transitType }

// AddHeaderField appends a plain field to the header section.
func (s *Style) AddHeaderField(key string, value any, label string) {
	s.AddField(HeaderFields, NewField(key, value, label))
}

// AddPrimaryField appends a plain field to the primary section.
func (s *Style) AddPrimaryField(key string, value any, label string) {
	s.AddField(PrimaryFields, NewField(key, value, label))
}

// AddSecondaryField appends a plain field to the secondary section.
func (s *Style) AddSecondaryField(key string, value any, label string) {
	s.AddField(SecondaryFields, NewField(key, value, label))
}

// AddBackField appends a plain field to the back section.
func (s *Style) AddBackField(key string, value any, label string) {
	s.AddField(BackFields, NewField(key, value, label))
}

// AddAuxiliaryField appends a plain field to the auxiliary section.
func (s *Style) AddAuxiliaryField(key string, value any, label string) {
	s.AddField(AuxiliaryFields, NewField(key, value, label))
}

// AddField appends f to section. Fields for an unknown section are dropped.
func (s *Style) AddField(section Section, f Field) {
	if !section.valid() {
		return
	}
	s.sections[section] = append(s.sections[section], f)
}

// Fields returns a copy of the fields in section, or nil for an unknown
// section.
func (s *Style) Fields(section Section) []Field {
	if !section.valid() {
		return nil
	}
	out := make([]Field, len(s.sections[section]))
	copy(out, s.sections[section])
	return out
}

type styleJSON struct {
	HeaderFields    []Field     `json:"headerFields,omitempty"`
	PrimaryFields   []Field     `json:"primaryFields,omitempty"`
	SecondaryFields []Field     `json:"secondaryFields,omitempty"`
	BackFields      []Field     `json:"backFields,omitempty"`
	AuxiliaryFields []Field     `json:"auxiliaryFields,omitempty"`
	TransitType     TransitType `json:"transitType,omitempty"`
}

// MarshalJSON emits the non-empty sections in order, followed by the transit
// type for boarding passes.
func (s *Style) MarshalJSON() ([]byte, error) {
	out := styleJSON{
		HeaderFields:    s.sections[HeaderFields],
		PrimaryFields:   s.sections[PrimaryFields],
		SecondaryFields: s.sections[SecondaryFields],
		BackFields:      s.sections[BackFields],
		AuxiliaryFields: s.sections[AuxiliaryFields],
	}
	if s.kind == BoardingPass {
		out.TransitType = orDefault(s.transitType, TransitAir)
	}
	return encodeJSON(out)
}
