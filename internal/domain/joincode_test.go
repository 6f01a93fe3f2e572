package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidJoinCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"ABC123", true},
		{"ZZZZZZ", true},
		{"abc123", false},
		{"ABC12", false},
		{"ABC1234", false},
		{"ABC-12", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidJoinCode(tt.code), "ValidJoinCode(%q)", tt.code)
	}
}

func TestNormalizeJoinCode(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeJoinCode("  abc123\n"))
}

func TestJoinCodeFromQR(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"prefixed payload", "GRUBIO:ABC123", "ABC123"},
		{"prefixed lower case code", "GRUBIO:abc123", "ABC123"},
		{"bare code", "xyz789", "XYZ789"},
		{"surrounding whitespace", " GRUBIO:QWERTY ", "QWERTY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinCodeFromQR(tt.payload))
		})
	}
	assert.Equal(t, "GRUBIO:ABC123", QRPayload("ABC123"))
}
