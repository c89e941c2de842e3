// Package sniff detects the MIME type of decrypted payloads from their
// leading magic bytes. The detector is an interface so new strategies
// can be swapped in without touching pipeline logic.
package sniff

import "github.com/gabriel-vasile/mimetype"

// Fallback is returned when no signature matches.
const Fallback = "application/octet-stream"

// Detector resolves a MIME type for a payload.
type Detector interface {
	Detect(data []byte) string
}

// MagicDetector matches payloads against mimetype's ordered signature
// list, falling back to the generic binary type.
type MagicDetector struct{}

// Default returns the standard magic-byte detector.
func Default() Detector {
	return MagicDetector{}
}

// Detect returns the detected MIME type, without parameters.
// mimetype.Detect never returns nil; unmatched payloads come back as
// its octet-stream root, which is exactly Fallback.
func (MagicDetector) Detect(data []byte) string {
	if len(data) == 0 {
		return Fallback
	}
	return mimetype.Detect(data).String()
}
