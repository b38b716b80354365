package passbook

// BarcodeFormat is the symbology of a pass barcode.
type BarcodeFormat string

// Barcode formats.
const (
	BarcodePDF417 BarcodeFormat = "PKBarcodeFormatPDF417"
	BarcodeQR     BarcodeFormat = "PKBarcodeFormatQR"
	BarcodeAztec  BarcodeFormat = "PKBarcodeFormatAztec"
)

// DefaultMessageEncoding is the text encoding used for barcode messages
// unless WithEncoding overrides it.
const DefaultMessageEncoding = "iso-8859-1"

// Barcode is the barcode shown on a pass. It is immutable; the With methods
// return modified copies.
type Barcode struct {
	format          BarcodeFormat
	message         string
	messageEncoding string
	altText         string
}

// NewBarcode returns a barcode carrying message. An empty format defaults to
// BarcodePDF417.
func NewBarcode(message string, format BarcodeFormat) Barcode {
	if format == "" {
		format = BarcodePDF417
	}
	return Barcode{
		format:          format,
		message:         message,
		messageEncoding: DefaultMessageEncoding,
	}
}

// WithEncoding returns a copy of b using the named text encoding.
func (b Barcode) WithEncoding(encoding string) Barcode {
	b.messageEncoding = encoding
	return b
}

// WithAltText returns a copy of b with text shown near the barcode.
func (b Barcode) WithAltText(text string) Barcode {
	b.altText = text
	return b
}

// Format returns the barcode symbology.
func (b Barcode) Format() BarcodeFormat { return b.format }

// Message returns the encoded payload.
func (b Barcode) Message() string { return b.message }

// MessageEncoding returns the payload text encoding.
func (b Barcode) MessageEncoding() string { return b.messageEncoding }

// AltText returns the human readable text shown near the barcode.
func (b Barcode) AltText() string { return b.altText }

type barcodeJSON struct {
	Format          BarcodeFormat `json:"format"`
	Message         string        `json:"message"`
	MessageEncoding string        `json:"messageEncoding"`
	AltText         string        `json:"altText"`
}

// MarshalJSON emits all four barcode attributes.
func (b Barcode) MarshalJSON() ([]byte, error) {
	return encodeJSON(barcodeJSON{
		Format:          orDefault(b.format, BarcodePDF417),
		Message:         b.message,
		MessageEncoding: orDefault(b.messageEncoding, DefaultMessageEncoding),
		AltText:         b.altText,
	})
}
