package passbook

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_MarshalJSON(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{
			name:  "plain",
			field: NewField("balance", "10.00", "Balance"),
			want:  `{"key":"balance","value":"10.00","label":"Balance","changeMessage":"","textAlignment":"PKTextAlignmentLeft"}`,
		},
		{
			name:  "plain with options",
			field: NewField("gate", 12, "Gate").WithChangeMessage("Gate changed to %@").WithAlignment(AlignRight),
			want:  `{"key":"gate","value":12,"label":"Gate","changeMessage":"Gate changed to %@","textAlignment":"PKTextAlignmentRight"}`,
		},
		{
			name:  "date",
			field: NewDateField("doors", when, "Doors"),
			want:  `{"key":"doors","value":"2024-05-01T18:30:00Z","label":"Doors","changeMessage":"","textAlignment":"PKTextAlignmentLeft","dateStyle":"PKDateStyleShort","timeStyle":"PKDateStyleShort","isRelative":false}`,
		},
		{
			name:  "date styled",
			field: NewDateField("doors", when, "").WithDateStyle(DateStyleLong).WithTimeStyle(DateStyleNone).WithRelative(true),
			want:  `{"key":"doors","value":"2024-05-01T18:30:00Z","label":"","changeMessage":"","textAlignment":"PKTextAlignmentLeft","dateStyle":"PKDateStyleLong","timeStyle":"PKDateStyleNone","isRelative":true}`,
		},
		{
			name:  "number",
			field: NewNumberField("points", 1500, "Points"),
			want:  `{"key":"points","value":1500,"label":"Points","changeMessage":"","textAlignment":"PKTextAlignmentLeft","numberStyle":"PKNumberStyleDecimal"}`,
		},
		{
			name:  "currency",
			field: NewCurrencyField("balance", MustDecimal("10.50"), "Balance", "EUR"),
			want:  `{"key":"balance","value":10.50,"label":"Balance","changeMessage":"","textAlignment":"PKTextAlignmentLeft","numberStyle":"PKNumberStyleDecimal","currencyCode":"EUR"}`,
		},
		{
			name:  "currency percent",
			field: NewCurrencyField("discount", 0.25, "Discount", "USD").WithNumberStyle(NumberStylePercent),
			want:  `{"key":"discount","value":0.25,"label":"Discount","changeMessage":"","textAlignment":"PKTextAlignmentLeft","numberStyle":"PKNumberStylePercent","currencyCode":"USD"}`,
		},
		{
			name:  "zero value alignment defaults",
			field: Field{Key: "k", Value: true},
			want:  `{"key":"k","value":true,"label":"","changeMessage":"","textAlignment":"PKTextAlignmentLeft"}`,
		},
		{
			name:  "html characters are not escaped",
			field: NewField("terms", "<b>Tom & Jerry</b>", ""),
			want:  `{"key":"terms","value":"<b>Tom & Jerry</b>","label":"","changeMessage":"","textAlignment":"PKTextAlignmentLeft"}`,
		},
		{
			name:  "json number",
			field: NewField("n", json.Number("12.340"), ""),
			want:  `{"key":"n","value":12.340,"label":"","changeMessage":"","textAlignment":"PKTextAlignmentLeft"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.field.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestField_MarshalJSON_UnsupportedValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
	}{
		{name: "nil", value: nil},
		{name: "nan", value: math.NaN()},
		{name: "inf", value: math.Inf(1)},
		{name: "map", value: map[string]string{"a": "b"}},
		{name: "struct", value: struct{}{}},
		{name: "channel", value: make(chan int)},
		{name: "nil decimal pointer", value: (*Decimal)(nil)},
		{name: "bad json number", value: json.Number("twelve")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewField("k", tt.value, "").MarshalJSON()
			require.ErrorIs(t, err, ErrEncoding)
		})
	}
}

func TestField_UnknownKind(t *testing.T) {
	t.Parallel()

	f := NewField("k", "v", "")
	f.Kind = FieldKind(42)
	_, err := f.MarshalJSON()
	require.ErrorIs(t, err, ErrEncoding)
	assert.Equal(t, "FieldKind(42)", f.Kind.String())
}

func TestField_WithReturnsCopy(t *testing.T) {
	t.Parallel()

	orig := NewField("k", "v", "")
	changed := orig.WithAlignment(AlignCenter)

	assert.Equal(t, AlignLeft, orig.TextAlignment)
	assert.Equal(t, AlignCenter, changed.TextAlignment)
}
