// SPDX-License-Identifier: MIT

// Package wide centralizes the UTF-16 conversions used at the engine
// boundary. All path and name values crossing the boundary travel as
// null-terminated little-endian UTF-16 byte sequences, regardless of the
// host platform's native string type. Nothing outside the boundary package
// should need these conversions.
package wide

import (
	"errors"

	"golang.org/x/text/encoding/unicode"
)

// ErrOddLength is returned when a byte sequence cannot be UTF-16 because
// its length is not a multiple of two.
var ErrOddLength = errors.New("utf-16 sequence has odd byte length")

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Encode converts s into a null-terminated little-endian UTF-16 byte
// sequence.
func Encode(s string) ([]byte, error) {
	encoded, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, err
	}

	return append(encoded, 0x00, 0x00), nil
}

// Decode converts a little-endian UTF-16 byte sequence into a string.
// Decoding stops at the first null terminator, if present.
func Decode(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", ErrOddLength
	}

	if idx := terminatorIndex(b); idx >= 0 {
		b = b[:idx]
	}

	decoded, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}

	return string(decoded), nil
}

func terminatorIndex(b []byte) int {
	for idx := 0; idx+1 < len(b); idx += 2 {
		if b[idx] == 0x00 && b[idx+1] == 0x00 {
			return idx
		}
	}

	return -1
}
