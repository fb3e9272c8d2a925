package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("  https://example.supabase.co \n"))
	var out bytes.Buffer

	got, err := GetSimpleText(in, "Backend URL", &out)
	require.NoError(t, err)
	assert.Equal(t, "https://example.supabase.co", got)
	assert.Contains(t, out.String(), "Backend URL")
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer

	got, err := GetSimpleText(in, "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte("hunter2"), nil }

	var out bytes.Buffer
	got, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return nil, errors.New("no tty") }

	var out bytes.Buffer
	_, err := GetPassword(&out)
	assert.Error(t, err)
}
