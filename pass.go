package passbook

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meigma/passbook/internal/safepath"
)

// FormatVersion is the only pass file format version wallets accept.
const FormatVersion = 1

// Identity holds the required identification attributes of a pass.
type Identity struct {
	// TeamIdentifier is the team that signs the pass.
	TeamIdentifier string
	// PassTypeIdentifier must match the signing certificate's subject.
	PassTypeIdentifier string
	// OrganizationName is shown to the user as the pass issuer.
	OrganizationName string
	// SerialNumber identifies this pass within its pass type.
	SerialNumber string
	// Description is read out by accessibility tools.
	Description string
}

// NewSerialNumber returns a random serial number.
func NewSerialNumber() string {
	return uuid.NewString()
}

// Pass is a wallet pass: identity, appearance, relevance data, one layout
// and a set of flat asset files.
//
// Optional attributes are written to pass.json only when set. A Pass is
// owned by one goroutine; Create reads it without modifying it.
type Pass struct {
	Identity

	BackgroundColor string
	ForegroundColor string
	LabelColor      string
	LogoText        string

	// SuppressStripShine is written only when true.
	SuppressStripShine bool

	Barcode      *Barcode
	Locations    []Location
	RelevantDate time.Time

	// WebServiceURL and AuthenticationToken must be set together.
	WebServiceURL       string
	AuthenticationToken string

	AssociatedStoreIdentifiers []int64

	style     *Style
	files     map[string][]byte
	validator NameValidator
}

// NewPass returns a pass with the given layout and identity.
func NewPass(style *Style, id Identity) *Pass {
	return &Pass{
		Identity:  id,
		style:     style,
		files:     make(map[string][]byte),
		validator: safepath.NewValidator(),
	}
}

// Style returns the pass layout. It is nil for a Pass not built by NewPass.
func (p *Pass) Style() *Style { return p.style }

// AddFile reads r to EOF and stores the content as asset name, replacing
// any earlier asset of that name.
// Returns ErrReservedName for pass.json, manifest.json and signature, and
// ErrInvalidName for empty, nested or unsafe names.
func (p *Pass) AddFile(name string, r io.Reader) error {
	if p.validator == nil {
		p.validator = safepath.NewValidator()
	}
	if err := p.validator.ValidateName(name); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if p.files == nil {
		p.files = make(map[string][]byte)
	}
	p.files[name] = data
	return nil
}

// AddFileBytes stores a copy of data as asset name. It validates name like
// AddFile.
func (p *Pass) AddFileBytes(name string, data []byte) error {
	return p.AddFile(name, bytes.NewReader(data))
}

// AddFS adds every regular file at the top level of fsys as an asset.
// Subdirectories and dot files are skipped.
func (p *Pass) AddFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read asset directory: %w", err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if err := p.AddFileBytes(e.Name(), data); err != nil {
			return err
		}
	}
	return nil
}

// RemoveFile deletes asset name. It reports whether the asset existed.
func (p *Pass) RemoveFile(name string) bool {
	_, ok := p.files[name]
	delete(p.files, name)
	return ok
}

// File returns the content of asset name.
func (p *Pass) File(name string) ([]byte, bool) {
	data, ok := p.files[name]
	return data, ok
}

// Files returns the asset names in sorted order.
func (p *Pass) Files() []string {
	return slices.Sorted(maps.Keys(p.files))
}

type passJSON struct {
	Description        string `json:"description"`
	FormatVersion      int    `json:"formatVersion"`
	OrganizationName   string `json:"organizationName"`
	PassTypeIdentifier string `json:"passTypeIdentifier"`
	SerialNumber       string `json:"serialNumber"`
	TeamIdentifier     string `json:"teamIdentifier"`

	SuppressStripShine bool `json:"suppressStripShine,omitempty"`

	BoardingPass *Style `json:"boardingPass,omitempty"`
	Coupon       *Style `json:"coupon,omitempty"`
	EventTicket  *Style `json:"eventTicket,omitempty"`
	Generic      *Style `json:"generic,omitempty"`
	StoreCard    *Style `json:"storeCard,omitempty"`

	Barcode                    *Barcode   `json:"barcode,omitempty"`
	RelevantDate               string     `json:"relevantDate,omitempty"`
	BackgroundColor            string     `json:"backgroundColor,omitempty"`
	ForegroundColor            string     `json:"foregroundColor,omitempty"`
	LabelColor                 string     `json:"labelColor,omitempty"`
	LogoText                   string     `json:"logoText,omitempty"`
	Locations                  []Location `json:"locations,omitempty"`
	AssociatedStoreIdentifiers []int64    `json:"associatedStoreIdentifiers,omitempty"`
	WebServiceURL              string     `json:"webServiceURL,omitempty"`
	AuthenticationToken        string     `json:"authenticationToken,omitempty"`
}

// MarshalJSON produces the pass.json document.
// Returns ErrEncoding if the pass has no layout, a field value cannot be
// encoded, or only one of WebServiceURL and AuthenticationToken is set.
func (p *Pass) MarshalJSON() ([]byte, error) {
	if p.style == nil {
		return nil, fmt.Errorf("%w: pass has no style", ErrEncoding)
	}
	if (p.WebServiceURL == "") != (p.AuthenticationToken == "") {
		return nil, fmt.Errorf("%w: webServiceURL and authenticationToken must be set together", ErrEncoding)
	}

	out := passJSON{
		Description:                p.Description,
		FormatVersion:              FormatVersion,
		OrganizationName:           p.OrganizationName,
		PassTypeIdentifier:         p.PassTypeIdentifier,
		SerialNumber:               p.SerialNumber,
		TeamIdentifier:             p.TeamIdentifier,
		SuppressStripShine:         p.SuppressStripShine,
		Barcode:                    p.Barcode,
		BackgroundColor:            p.BackgroundColor,
		ForegroundColor:            p.ForegroundColor,
		LabelColor:                 p.LabelColor,
		LogoText:                   p.LogoText,
		Locations:                  p.Locations,
		AssociatedStoreIdentifiers: p.AssociatedStoreIdentifiers,
		WebServiceURL:              p.WebServiceURL,
		AuthenticationToken:        p.AuthenticationToken,
	}
	if !p.RelevantDate.IsZero() {
		out.RelevantDate = p.RelevantDate.Format(time.RFC3339)
	}

	switch p.style.Kind() {
	case BoardingPass:
		out.BoardingPass = p.style
	case Coupon:
		out.Coupon = p.style
	case EventTicket:
		out.EventTicket = p.style
	case Generic:
		out.Generic = p.style
	case StoreCard:
		out.StoreCard = p.style
	default:
		return nil, fmt.Errorf("%w: unknown pass style %s", ErrEncoding, p.style.JSONName())
	}

	data, err := encodeJSON(out)
	if err != nil {
		if errors.Is(err, ErrEncoding) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return data, nil
}
