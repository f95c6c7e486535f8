package client

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Line(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("first\r\nsecond"), &out)

	got, err := p.Line("> ")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = p.Line("> ")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = p.Line("> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > ", out.String())
}

func TestPrompter_SecretWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("00ff\n"), &out)
	assert.Equal(t, -1, p.fd)

	got, err := p.Secret("Seed (hex): ")
	require.NoError(t, err)
	assert.Equal(t, "00ff", got)
	assert.Equal(t, "Seed (hex): ", out.String())
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"yep\n", false},
	}
	for _, tt := range tests {
		p := NewPrompter(strings.NewReader(tt.input), io.Discard)
		got, err := p.Confirm("Wipe everything?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}

	_, err := NewPrompter(strings.NewReader(""), io.Discard).Confirm("?")
	assert.ErrorIs(t, err, io.EOF)
}
