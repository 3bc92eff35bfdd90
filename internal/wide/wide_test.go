// SPDX-License-Identifier: MIT

package wide_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilfs/veilfs/internal/wide"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
	}{
		{
			name:     "empty",
			input:    "",
			expected: []byte{0x00, 0x00},
		},
		{
			name:     "ascii",
			input:    "ab",
			expected: []byte{'a', 0x00, 'b', 0x00, 0x00, 0x00},
		},
		{
			name:  "windows path",
			input: `C:\mods`,
			expected: []byte{
				'C', 0x00, ':', 0x00, '\\', 0x00,
				'm', 0x00, 'o', 0x00, 'd', 0x00, 's', 0x00,
				0x00, 0x00,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := wide.Encode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"/game/data",
		`C:\real\mod1\plugin.dll`,
		"müller.esp",
		"テスト",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			encoded, err := wide.Encode(input)
			require.NoError(t, err)

			decoded, err := wide.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, input, decoded)
		})
	}
}

func TestDecodeStopsAtTerminator(t *testing.T) {
	b := []byte{'a', 0x00, 0x00, 0x00, 'b', 0x00}

	decoded, err := wide.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "a", decoded)
}

func TestDecodeOddLength(t *testing.T) {
	_, err := wide.Decode([]byte{'a', 0x00, 'b'})
	assert.ErrorIs(t, err, wide.ErrOddLength)
}
