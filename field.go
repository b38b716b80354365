package passbook

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// FieldKind selects the formatting variant of a Field.
type FieldKind int

// Field kinds.
const (
	PlainField FieldKind = iota
	DateField
	NumberField
	CurrencyField
)

// String returns the kind name.
func (k FieldKind) String() string {
	switch k {
	case PlainField:
		return "plain"
	case DateField:
		return "date"
	case NumberField:
		return "number"
	case CurrencyField:
		return "currency"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Alignment is the horizontal alignment of a field's text.
type Alignment string

// Text alignments.
const (
	AlignLeft      Alignment = "PKTextAlignmentLeft"
	AlignCenter    Alignment = "PKTextAlignmentCenter"
	AlignRight     Alignment = "PKTextAlignmentRight"
	AlignJustified Alignment = "PKTextAlignmentJustified"
	AlignNatural   Alignment = "PKTextAlignmentNatural"
)

// DateStyle controls how the date or time part of a date field is shown.
type DateStyle string

// Date styles.
const (
	DateStyleNone   DateStyle = "PKDateStyleNone"
	DateStyleShort  DateStyle = "PKDateStyleShort"
	DateStyleMedium DateStyle = "PKDateStyleMedium"
	DateStyleLong   DateStyle = "PKDateStyleLong"
	DateStyleFull   DateStyle = "PKDateStyleFull"
)

// NumberStyle controls how a number field is shown.
type NumberStyle string

// Number styles.
const (
	NumberStyleDecimal    NumberStyle = "PKNumberStyleDecimal"
	NumberStylePercent    NumberStyle = "PKNumberStylePercent"
	NumberStyleScientific NumberStyle = "PKNumberStyleScientific"
	NumberStyleSpellOut   NumberStyle = "PKNumberStyleSpellOut"
)

// Field is one labelled value on a pass.
//
// Kind selects which formatting attributes are serialized: DateStyle,
// TimeStyle and IsRelative for DateField; NumberStyle for NumberField;
// NumberStyle and CurrencyCode for CurrencyField. Attributes that do not
// belong to the kind are ignored.
//
// Value may be a string, bool, integer, finite float, json.Number, Decimal
// or time.Time. Anything else fails to encode.
type Field struct {
	Kind          FieldKind
	Key           string
	Value         any
	Label         string
	ChangeMessage string
	TextAlignment Alignment

	DateStyle  DateStyle
	TimeStyle  DateStyle
	IsRelative bool

	NumberStyle  NumberStyle
	CurrencyCode string
}

// NewField returns a plain field.
func NewField(key string, value any, label string) Field {
	return Field{
		Kind:          PlainField,
		Key:           key,
		Value:         value,
		Label:         label,
		TextAlignment: AlignLeft,
	}
}

// NewDateField returns a date field with short date and time styles.
func NewDateField(key string, value time.Time, label string) Field {
	f := NewField(key, value, label)
	f.Kind = DateField
	f.DateStyle = DateStyleShort
	f.TimeStyle = DateStyleShort
	return f
}

// NewNumberField returns a number field with decimal style.
func NewNumberField(key string, value any, label string) Field {
	f := NewField(key, value, label)
	f.Kind = NumberField
	f.NumberStyle = NumberStyleDecimal
	return f
}

// NewCurrencyField returns a currency field. code is an ISO 4217 currency
// code such as "EUR".
func NewCurrencyField(key string, value any, label, code string) Field {
	f := NewNumberField(key, value, label)
	f.Kind = CurrencyField
	f.CurrencyCode = code
	return f
}

// WithChangeMessage returns a copy of f with the update alert format string
// set. The message should contain "%@" where the new value goes.
func (f Field) WithChangeMessage(msg string) Field {
	f.ChangeMessage = msg
	return f
}

// WithAlignment returns a copy of f with the text alignment set.
func (f Field) WithAlignment(a Alignment) Field {
	f.TextAlignment = a
	return f
}

// WithDateStyle returns a copy of f with the date style set.
func (f Field) WithDateStyle(s DateStyle) Field {
	f.DateStyle = s
	return f
}

// WithTimeStyle returns a copy of f with the time style set.
func (f Field) WithTimeStyle(s DateStyle) Field {
	f.TimeStyle = s
	return f
}

// WithRelative returns a copy of f that displays its date relative to now.
func (f Field) WithRelative(relative bool) Field {
	f.IsRelative = relative
	return f
}

// WithNumberStyle returns a copy of f with the number style set.
func (f Field) WithNumberStyle(s NumberStyle) Field {
	f.NumberStyle = s
	return f
}

type baseFieldJSON struct {
	Key           string          `json:"key"`
	Value         json.RawMessage `json:"value"`
	Label         string          `json:"label"`
	ChangeMessage string          `json:"changeMessage"`
	TextAlignment Alignment       `json:"textAlignment"`
}

type dateFieldJSON struct {
	baseFieldJSON
	DateStyle  DateStyle `json:"dateStyle"`
	TimeStyle  DateStyle `json:"timeStyle"`
	IsRelative bool      `json:"isRelative"`
}

type numberFieldJSON struct {
	baseFieldJSON
	NumberStyle NumberStyle `json:"numberStyle"`
}

type currencyFieldJSON struct {
	baseFieldJSON
	NumberStyle  NumberStyle `json:"numberStyle"`
	CurrencyCode string      `json:"currencyCode"`
}

// MarshalJSON emits every attribute of the field's kind in a fixed order.
// Defaults are written out rather than omitted.
func (f Field) MarshalJSON() ([]byte, error) {
	value, err := encodeFieldValue(f.Value)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Key, err)
	}
	alignment := f.TextAlignment
	if alignment == "" {
		alignment = AlignLeft
	}
	base := baseFieldJSON{
		Key:           f.Key,
		Value:         value,
		Label:         f.Label,
		ChangeMessage: f.ChangeMessage,
		TextAlignment: alignment,
	}

	switch f.Kind {
	case PlainField:
		return encodeJSON(base)
	case DateField:
		return encodeJSON(dateFieldJSON{
			baseFieldJSON: base,
			DateStyle:     orDefault(f.DateStyle, DateStyleShort),
			TimeStyle:     orDefault(f.TimeStyle, DateStyleShort),
			IsRelative:    f.IsRelative,
		})
	case NumberField:
		return encodeJSON(numberFieldJSON{
			baseFieldJSON: base,
			NumberStyle:   orDefault(f.NumberStyle, NumberStyleDecimal),
		})
	case CurrencyField:
		return encodeJSON(currencyFieldJSON{
			baseFieldJSON: base,
			NumberStyle:   orDefault(f.NumberStyle, NumberStyleDecimal),
			CurrencyCode:  f.CurrencyCode,
		})
	default:
		return nil, fmt.Errorf("%w: field %q has unknown kind %s", ErrEncoding, f.Key, f.Kind)
	}
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

// encodeFieldValue encodes the supported field value types.
func encodeFieldValue(v any) (json.RawMessage, error) {
	switch v := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: missing value", ErrEncoding)
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return encodeJSON(v)
	case float32:
		return encodeFloat(float64(v), v)
	case float64:
		return encodeFloat(v, v)
	case json.Number:
		data, err := encodeJSON(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return data, nil
	case Decimal:
		return v.MarshalJSON()
	case *Decimal:
		if v == nil {
			return nil, fmt.Errorf("%w: missing value", ErrEncoding)
		}
		return v.MarshalJSON()
	case time.Time:
		return encodeJSON(v.Format(time.RFC3339))
	default:
		return nil, fmt.Errorf("%w: unsupported value type %T", ErrEncoding, v)
	}
}

func encodeFloat(f float64, orig any) (json.RawMessage, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: non-finite number %v", ErrEncoding, f)
	}
	return encodeJSON(orig)
}
