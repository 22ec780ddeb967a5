package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripWhitespace(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"type 2 diabetes", "type2diabetes"},
		{"  E10 ", "E10"},
		{"a\tb\nc d", "abcd"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, StripWhitespace(tc.input))
		})
	}
}

func TestLower(t *testing.T) {
	assert.Equal(t, "ácido fólico", Lower("ÁCIDO FÓLICO"))
	assert.NotEqual(t, Lower("cafe\u0301"), Lower("CAFÉ"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "dipirona", Fold("DIPIRONA"))
	assert.Equal(t, "ácido fólico", Fold("ÁCIDO FÓLICO"))
	// decomposed "é" composes to the same string as the precomposed one
	assert.Equal(t, Fold("café"), Fold("CAFÉ"))
}

func TestStripAccents(t *testing.T) {
	assert.Equal(t, "DISPENSACAO", StripAccents("DISPENSAÇÃO"))
	assert.Equal(t, "acido folico", StripAccents("ácido fólico"))
	assert.Equal(t, "plain", StripAccents("plain"))
}

func TestNormalizeIdentifier(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Local de Dispensacao", "local_de_dispensacao"},
		{"  MEDICAMENTO  ", "medicamento"},
		{"CID-10 / code", "cid_10_code"},
		{"__x__", "x"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeIdentifier(tc.input))
		})
	}
}

func TestHeaderKey(t *testing.T) {
	assert.Equal(t, "local_de_dispensacao", HeaderKey("Local de Dispensação"))
	assert.Equal(t, "local_de_dispensacao", HeaderKey("LOCAL_DE_DISPENSACAO"))
	assert.Equal(t, "medicamento", HeaderKey("\ufeffMEDICAMENTO"))
	assert.Equal(t, "observacoes", HeaderKey("OBSERVAÇÕES"))
}
