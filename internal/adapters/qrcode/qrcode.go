package qrcode

import (
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

// Encoder renders join payloads as PNG QR codes.
type Encoder struct {
	size int
}

func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &Encoder{size: size}
}

func (e *Encoder) EncodePNG(payload string) ([]byte, error) {
	png, err := qr.Encode(payload, qr.Medium, e.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
