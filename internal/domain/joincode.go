package domain

import "strings"

const (
	// JoinCodeLength is the number of symbols in a join code.
	JoinCodeLength = 6
	// JoinCodeAlphabet holds the symbols a join code is drawn from.
	JoinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// QRPrefix precedes the join code in scanned QR payloads.
	QRPrefix = "GRUBIO:"
)

// NormalizeJoinCode trims and upper-cases user input.
func NormalizeJoinCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidJoinCode reports whether code is JoinCodeLength symbols from JoinCodeAlphabet.
func ValidJoinCode(code string) bool {
	if len(code) != JoinCodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(JoinCodeAlphabet, c) {
			return false
		}
	}
	return true
}

// QRPayload returns the QR payload for a join code.
func QRPayload(joinCode string) string {
	return QRPrefix + joinCode
}

// JoinCodeFromQR strips QRPrefix from a scanned payload. A payload without the
// prefix is treated as the code itself.
func JoinCodeFromQR(payload string) string {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, QRPrefix) {
		payload = payload[len(QRPrefix):]
	}
	return NormalizeJoinCode(payload)
}
