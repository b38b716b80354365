package passbook

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity() Identity {
	return Identity{
		TeamIdentifier:     "TEAMID1234",
		PassTypeIdentifier: "pass.com.example.test",
		OrganizationName:   "Example",
		SerialNumber:       "abc123",
		Description:        "Test pass",
	}
}

func TestPass_MarshalJSON_OnlyRequiredKeys(t *testing.T) {
	t.Parallel()

	for _, style := range []*Style{NewBoardingPass(""), NewCoupon(), NewEventTicket(), NewGeneric(), NewStoreCard()} {
		t.Run(style.JSONName(), func(t *testing.T) {
			t.Parallel()

			data, err := NewPass(style, testIdentity()).MarshalJSON()
			require.NoError(t, err)

			var decoded map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(data, &decoded))

			keys := make([]string, 0, len(decoded))
			for k := range decoded {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, []string{
				"description", "formatVersion", "organizationName",
				"passTypeIdentifier", "serialNumber", "teamIdentifier",
				style.JSONName(),
			}, keys)
			assert.NotContains(t, string(data), "null")
		})
	}
}

func TestPass_MarshalJSON_ExactOutput(t *testing.T) {
	t.Parallel()

	style := NewGeneric()
	style.AddPrimaryField("balance", "10.00", "Balance")

	data, err := NewPass(style, testIdentity()).MarshalJSON()
	require.NoError(t, err)

	want := `{"description":"Test pass","formatVersion":1,"organizationName":"Example",` +
		`"passTypeIdentifier":"pass.com.example.test","serialNumber":"abc123","teamIdentifier":"TEAMID1234",` +
		`"generic":{"primaryFields":[{"key":"balance","value":"10.00","label":"Balance","changeMessage":"","textAlignment":"PKTextAlignmentLeft"}]}}`
	assert.Equal(t, want, string(data))
}

func TestPass_MarshalJSON_Optionals(t *testing.T) {
	t.Parallel()

	barcode := NewBarcode("123456789", BarcodeQR).WithAltText("123 456 789")
	p := NewPass(NewEventTicket(), testIdentity())
	p.BackgroundColor = RGB(10, 20, 30)
	p.ForegroundColor = RGB(255, 255, 255)
	p.LabelColor = "rgb(0, 0, 0)"
	p.LogoText = "Example"
	p.SuppressStripShine = true
	p.Barcode = &barcode
	p.Locations = []Location{NewLocation(MustDecimal("12.34"), MustDecimal("-56.78")).WithRelevantText("Box office")}
	p.RelevantDate = time.Date(2024, 6, 1, 20, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	p.WebServiceURL = "https://example.com/passes/"
	p.AuthenticationToken = "vxwxd7J8AlNNFPS8k0a0FfUFtq0ewzFdc"
	p.AssociatedStoreIdentifiers = []int64{284882215}

	data, err := p.MarshalJSON()
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.JSONEq(t, `"rgb(10, 20, 30)"`, string(decoded["backgroundColor"]))
	assert.JSONEq(t, `true`, string(decoded["suppressStripShine"]))
	assert.JSONEq(t, `{"format":"PKBarcodeFormatQR","message":"123456789","messageEncoding":"iso-8859-1","altText":"123 456 789"}`, string(decoded["barcode"]))
	assert.Equal(t, `[{"latitude":12.34,"longitude":-56.78,"altitude":0,"relevantText":"Box office"}]`, string(decoded["locations"]))
	assert.JSONEq(t, `"2024-06-01T20:00:00+02:00"`, string(decoded["relevantDate"]))
	assert.JSONEq(t, `"https://example.com/passes/"`, string(decoded["webServiceURL"]))
	assert.JSONEq(t, `"vxwxd7J8AlNNFPS8k0a0FfUFtq0ewzFdc"`, string(decoded["authenticationToken"]))
	assert.JSONEq(t, `[284882215]`, string(decoded["associatedStoreIdentifiers"]))
	assert.JSONEq(t, `{}`, string(decoded["eventTicket"]))
}

func TestPass_MarshalJSON_DecimalCoordinatesAreExact(t *testing.T) {
	t.Parallel()

	p := NewPass(NewStoreCard(), testIdentity())
	p.Locations = []Location{
		NewLocation(MustDecimal("12.34"), MustDecimal("0.1")).WithAltitude(MustDecimal("0.3")),
	}

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"latitude":12.34`)
	assert.Contains(t, string(data), `"longitude":0.1,`)
	assert.Contains(t, string(data), `"altitude":0.3`)
	assert.NotContains(t, string(data), "12.339999")
	assert.NotContains(t, string(data), "0.30000000")
}

func TestPass_MarshalJSON_WebServicePairing(t *testing.T) {
	t.Parallel()

	p := NewPass(NewGeneric(), testIdentity())
	p.WebServiceURL = "https://example.com"
	_, err := p.MarshalJSON()
	require.ErrorIs(t, err, ErrEncoding)

	p.WebServiceURL = ""
	p.AuthenticationToken = "token-without-url-0123456789"
	_, err = p.MarshalJSON()
	require.ErrorIs(t, err, ErrEncoding)
}

func TestPass_MarshalJSON_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewPass(nil, testIdentity()).MarshalJSON()
	require.ErrorIs(t, err, ErrEncoding)

	style := NewGeneric()
	style.AddPrimaryField("bad", func() {}, "")
	_, err = NewPass(style, testIdentity()).MarshalJSON()
	require.ErrorIs(t, err, ErrEncoding)
}

func TestPass_MarshalJSON_Idempotent(t *testing.T) {
	t.Parallel()

	style := NewBoardingPass(TransitBus)
	style.AddHeaderField("gate", "B12", "Gate")
	style.AddPrimaryField("from", "SFO", "San Francisco")
	style.AddPrimaryField("to", "JFK", "New York")
	p := NewPass(style, testIdentity())
	p.LogoText = "Air"

	first, err := p.MarshalJSON()
	require.NoError(t, err)
	second, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPass_AddFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		wantErr error
	}{
		{name: "plain", file: "icon.png"},
		{name: "retina", file: "icon@2x.png"},
		{name: "pass.json", file: "pass.json", wantErr: ErrReservedName},
		{name: "manifest.json", file: "manifest.json", wantErr: ErrReservedName},
		{name: "signature", file: "signature", wantErr: ErrReservedName},
		{name: "empty", file: "", wantErr: ErrInvalidName},
		{name: "nested", file: "en.lproj/pass.strings", wantErr: ErrInvalidName},
		{name: "traversal", file: "../icon.png", wantErr: ErrInvalidName},
		{name: "absolute", file: "/etc/passwd", wantErr: ErrInvalidName},
		{name: "backslash", file: `dir\icon.png`, wantErr: ErrInvalidName},
		{name: "nul", file: "icon\x00.png", wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewPass(NewGeneric(), testIdentity())
			err := p.AddFile(tt.file, strings.NewReader("data"))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, p.Files())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.file}, p.Files())
		})
	}
}

func TestPass_AddFileOverwrites(t *testing.T) {
	t.Parallel()

	p := NewPass(NewGeneric(), testIdentity())
	require.NoError(t, p.AddFile("icon.png", strings.NewReader("first")))
	require.NoError(t, p.AddFileBytes("icon.png", []byte("second")))

	data, ok := p.File("icon.png")
	require.True(t, ok)
	assert.Equal(t, "second", string(data))
	assert.Len(t, p.Files(), 1)

	assert.True(t, p.RemoveFile("icon.png"))
	assert.False(t, p.RemoveFile("icon.png"))
	assert.Empty(t, p.Files())
}

func TestPass_AddFileBytesCopies(t *testing.T) {
	t.Parallel()

	buf := []byte("logo")
	p := NewPass(NewGeneric(), testIdentity())
	require.NoError(t, p.AddFileBytes("logo.png", buf))
	buf[0] = 'X'

	data, _ := p.File("logo.png")
	assert.Equal(t, "logo", string(data))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestPass_AddFileReadError(t *testing.T) {
	t.Parallel()

	p := NewPass(NewGeneric(), testIdentity())
	err := p.AddFile("icon.png", failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Empty(t, p.Files())
}

func TestPass_AddFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"icon.png":              {Data: []byte("icon")},
		"logo.png":              {Data: []byte("logo")},
		".DS_Store":             {Data: []byte("junk")},
		"en.lproj/pass.strings": {Data: []byte("nested")},
	}

	p := NewPass(NewGeneric(), testIdentity())
	require.NoError(t, p.AddFS(fsys))
	assert.Equal(t, []string{"icon.png", "logo.png"}, p.Files())

	reserved := fstest.MapFS{"pass.json": {Data: []byte("{}")}}
	err := NewPass(NewGeneric(), testIdentity()).AddFS(reserved)
	require.ErrorIs(t, err, ErrReservedName)
}

func TestNewSerialNumber(t *testing.T) {
	t.Parallel()

	a, b := NewSerialNumber(), NewSerialNumber()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestRGB(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rgb(0, 128, 255)", RGB(0, 128, 255))
}

func TestPass_ZeroValueAddFile(t *testing.T) {
	t.Parallel()

	var p Pass
	require.NoError(t, p.AddFile("icon.png", strings.NewReader("x")))
	require.NoError(t, p.AddFileBytes("logo.png", []byte("y")))

	data, ok := p.File("icon.png")
	require.True(t, ok)
	assert.Equal(t, []byte("x"), data)
	assert.Equal(t, []string{"icon.png", "logo.png"}, p.Files())

	err := (&Pass{}).AddFile("pass.json", strings.NewReader("{}"))
	assert.ErrorIs(t, err, ErrReservedName)

	q := &Pass{}
	require.NoError(t, q.AddFS(fstest.MapFS{"strip.png": {Data: []byte("z")}}))
	assert.Equal(t, []string{"strip.png"}, q.Files())
	assert.True(t, q.RemoveFile("strip.png"))
}
