package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meigma/passbook"
)

// passDefinition is the YAML form of a pass accepted by "passbook create".
type passDefinition struct {
	Style       string `yaml:"style"`
	TransitType string `yaml:"transitType"`

	TeamIdentifier     string `yaml:"teamIdentifier"`
	PassTypeIdentifier string `yaml:"passTypeIdentifier"`
	OrganizationName   string `yaml:"organizationName"`
	SerialNumber       string `yaml:"serialNumber"`
	Description        string `yaml:"description"`

	BackgroundColor    string `yaml:"backgroundColor"`
	ForegroundColor    string `yaml:"foregroundColor"`
	LabelColor         string `yaml:"labelColor"`
	LogoText           string `yaml:"logoText"`
	SuppressStripShine bool   `yaml:"suppressStripShine"`

	Barcode      *barcodeDefinition   `yaml:"barcode"`
	Locations    []locationDefinition `yaml:"locations"`
	RelevantDate *time.Time           `yaml:"relevantDate"`

	WebServiceURL              string  `yaml:"webServiceURL"`
	AuthenticationToken        string  `yaml:"authenticationToken"`
	AssociatedStoreIdentifiers []int64 `yaml:"associatedStoreIdentifiers"`

	Fields fieldsDefinition `yaml:"fields"`

	// Assets is a directory of images, relative to the definition file.
	Assets string `yaml:"assets"`
}

type barcodeDefinition struct {
	Format          string `yaml:"format"`
	Message         string `yaml:"message"`
	MessageEncoding string `yaml:"messageEncoding"`
	AltText         string `yaml:"altText"`
}

type locationDefinition struct {
	Latitude     passbook.Decimal  `yaml:"latitude"`
	Longitude    passbook.Decimal  `yaml:"longitude"`
	Altitude     *passbook.Decimal `yaml:"altitude"`
	RelevantText string            `yaml:"relevantText"`
}

type fieldsDefinition struct {
	HeaderFields    []fieldDefinition `yaml:"headerFields"`
	PrimaryFields   []fieldDefinition `yaml:"primaryFields"`
	SecondaryFields []fieldDefinition `yaml:"secondaryFields"`
	BackFields      []fieldDefinition `yaml:"backFields"`
	AuxiliaryFields []fieldDefinition `yaml:"auxiliaryFields"`
}

type fieldDefinition struct {
	Type          string     `yaml:"type"`
	Key           string     `yaml:"key"`
	Value         fieldValue `yaml:"value"`
	Label         string     `yaml:"label"`
	ChangeMessage string     `yaml:"changeMessage"`
	TextAlignment string     `yaml:"textAlignment"`
	DateStyle     string     `yaml:"dateStyle"`
	TimeStyle     string     `yaml:"timeStyle"`
	IsRelative    bool       `yaml:"isRelative"`
	NumberStyle   string     `yaml:"numberStyle"`
	CurrencyCode  string     `yaml:"currencyCode"`
}

// fieldValue keeps the scalar type YAML resolved for a field value.
// Floats keep their literal text so "10.50" is written as 10.50.
type fieldValue struct {
	v any
}

func (f *fieldValue) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: field value must be a scalar", n.Line)
	}
	switch n.ShortTag() {
	case "!!str":
		f.v = n.Value
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		f.v = b
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return err
		}
		f.v = i
	case "!!float":
		if !json.Valid([]byte(n.Value)) {
			return fmt.Errorf("line %d: %q is not a JSON number; quote it to use it as text", n.Line, n.Value)
		}
		f.v = json.Number(n.Value)
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return err
		}
		f.v = t
	default:
		return fmt.Errorf("line %d: unsupported field value %q", n.Line, n.Value)
	}
	return nil
}

// loadPassFile reads a YAML pass definition. Assets named by the definition
// are added relative to the file's directory. A missing serial number is
// replaced by a random one.
func loadPassFile(path string) (*passbook.Pass, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	def, err := decodePassDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p, err := def.pass()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if def.Assets != "" {
		dir := def.Assets
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(filepath.Dir(path), dir)
		}
		if err := p.AddFS(os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("add assets from %s: %w", dir, err)
		}
	}
	return p, nil
}

func decodePassDefinition(data []byte) (*passDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def passDefinition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parse pass definition: %w", err)
	}
	return &def, nil
}

func (d *passDefinition) pass() (*passbook.Pass, error) {
	style, err := d.style()
	if err != nil {
		return nil, err
	}

	id := passbook.Identity{
		TeamIdentifier:     d.TeamIdentifier,
		PassTypeIdentifier: d.PassTypeIdentifier,
		OrganizationName:   d.OrganizationName,
		SerialNumber:       d.SerialNumber,
		Description:        d.Description,
	}
	if id.SerialNumber == "" {
		id.SerialNumber = passbook.NewSerialNumber()
	}

	var missing []string
	for name, v := range map[string]string{
		"teamIdentifier":     id.TeamIdentifier,
		"passTypeIdentifier": id.PassTypeIdentifier,
		"organizationName":   id.OrganizationName,
		"description":        id.Description,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, fmt.Errorf("missing required keys: %s", strings.Join(missing, ", "))
	}

	p := passbook.NewPass(style, id)
	p.BackgroundColor = d.BackgroundColor
	p.ForegroundColor = d.ForegroundColor
	p.LabelColor = d.LabelColor
	p.LogoText = d.LogoText
	p.SuppressStripShine = d.SuppressStripShine
	p.WebServiceURL = d.WebServiceURL
	p.AuthenticationToken = d.AuthenticationToken
	p.AssociatedStoreIdentifiers = d.AssociatedStoreIdentifiers
	if d.RelevantDate != nil {
		p.RelevantDate = *d.RelevantDate
	}

	if d.Barcode != nil {
		format, err := parseBarcodeFormat(d.Barcode.Format)
		if err != nil {
			return nil, err
		}
		bc := passbook.NewBarcode(d.Barcode.Message, format)
		if d.Barcode.MessageEncoding != "" {
			bc = bc.WithEncoding(d.Barcode.MessageEncoding)
		}
		if d.Barcode.AltText != "" {
			bc = bc.WithAltText(d.Barcode.AltText)
		}
		p.Barcode = &bc
	}

	for _, l := range d.Locations {
		loc := passbook.NewLocation(l.Latitude, l.Longitude)
		if l.Altitude != nil {
			loc = loc.WithAltitude(*l.Altitude)
		}
		if l.RelevantText != "" {
			loc = loc.WithRelevantText(l.RelevantText)
		}
		p.Locations = append(p.Locations, loc)
	}

	return p, nil
}

func (d *passDefinition) style() (*passbook.Style, error) {
	if d.Style == "" {
		return nil, errors.New("missing required key: style")
	}
	kind, err := passbook.ParseStyleKind(d.Style)
	if err != nil {
		return nil, err
	}

	var style *passbook.Style
	if kind == passbook.BoardingPass {
		style = passbook.NewBoardingPass(passbook.TransitType(d.TransitType))
	} else {
		if d.TransitType != "" {
			return nil, fmt.Errorf("transitType is only valid for boardingPass, not %s", d.Style)
		}
		if style, err = passbook.NewStyle(kind); err != nil {
			return nil, err
		}
	}

	sections := []struct {
		section passbook.Section
		fields  []fieldDefinition
	}{
		{passbook.HeaderFields, d.Fields.HeaderFields},
		{passbook.PrimaryFields, d.Fields.PrimaryFields},
		{passbook.SecondaryFields, d.Fields.SecondaryFields},
		{passbook.BackFields, d.Fields.BackFields},
		{passbook.AuxiliaryFields, d.Fields.AuxiliaryFields},
	}
	for _, s := range sections {
		for i, fd := range s.fields {
			f, err := fd.field()
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", s.section, i, err)
			}
			style.AddField(s.section, f)
		}
	}
	return style, nil
}

func (fd fieldDefinition) field() (passbook.Field, error) {
	if fd.Key == "" {
		return passbook.Field{}, errors.New("missing field key")
	}
	if fd.Value.v == nil {
		return passbook.Field{}, fmt.Errorf("field %s: missing value", fd.Key)
	}

	var f passbook.Field
	switch fd.Type {
	case "", "plain":
		f = passbook.NewField(fd.Key, fd.Value.v, fd.Label)
	case "date":
		t, err := fd.Value.time()
		if err != nil {
			return f, fmt.Errorf("field %s: %w", fd.Key, err)
		}
		f = passbook.NewDateField(fd.Key, t, fd.Label)
	case "number":
		f = passbook.NewNumberField(fd.Key, fd.Value.v, fd.Label)
	case "currency":
		if fd.CurrencyCode == "" {
			return f, fmt.Errorf("field %s: currency fields need currencyCode", fd.Key)
		}
		f = passbook.NewCurrencyField(fd.Key, fd.Value.v, fd.Label, fd.CurrencyCode)
	default:
		return f, fmt.Errorf("field %s: unknown type %q (want plain, date, number or currency)", fd.Key, fd.Type)
	}

	if fd.ChangeMessage != "" {
		f = f.WithChangeMessage(fd.ChangeMessage)
	}
	if fd.TextAlignment != "" {
		f = f.WithAlignment(passbook.Alignment(fd.TextAlignment))
	}
	if fd.DateStyle != "" {
		f = f.WithDateStyle(passbook.DateStyle(fd.DateStyle))
	}
	if fd.TimeStyle != "" {
		f = f.WithTimeStyle(passbook.DateStyle(fd.TimeStyle))
	}
	if fd.IsRelative {
		f = f.WithRelative(true)
	}
	if fd.NumberStyle != "" {
		f = f.WithNumberStyle(passbook.NumberStyle(fd.NumberStyle))
	}
	return f, nil
}

// time returns the value as a timestamp, parsing RFC 3339 strings.
func (f fieldValue) time() (time.Time, error) {
	switch v := f.v.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("date value %q is not RFC 3339", v)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("date value %v is not a timestamp", v)
	}
}

// parseBarcodeFormat accepts "qr", "pdf417", "aztec" or the full PKBarcodeFormat names.
func parseBarcodeFormat(name string) (passbook.BarcodeFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(name, "PKBarcodeFormat")) {
	case "", "pdf417":
		return passbook.BarcodePDF417, nil
	case "qr":
		return passbook.BarcodeQR, nil
	case "aztec":
		return passbook.BarcodeAztec, nil
	default:
		return "", fmt.Errorf("unknown barcode format %q (want pdf417, qr or aztec)", name)
	}
}
