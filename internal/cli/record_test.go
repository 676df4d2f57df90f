package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crypticarchive/archive/pkg/archive"
)

func TestParseFields(t *testing.T) {
	fields, err := parseFields(nil)
	require.NoError(t, err)
	assert.Nil(t, fields)

	fields, err = parseFields([]string{"url=https://x.example/?a=b", "user=me", "user=you", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"url": "https://x.example/?a=b", "user": "you", "empty": ""}, fields)

	for _, bad := range []string{"novalue", "=x", " =x"} {
		_, err := parseFields([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestApplySets(t *testing.T) {
	record := archive.Result{
		"id":    "me-1",
		"title": "Bank",
		"notes": map[string]any{"pin": "0000"},
	}

	content, err := applySets(record, []string{"title=Other", "notes.pin=1234", "notes.hint=birthday"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title": "Other",
		"notes": map[string]any{"pin": "1234", "hint": "birthday"},
	}, content)
	assert.Equal(t, "Bank", record["title"], "the fetched record is left untouched")

	content, err = applySets(nil, []string{"title=New"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "New"}, content)

	_, err = applySets(record, []string{"broken"})
	assert.Error(t, err)
}

func TestPrintFields(t *testing.T) {
	var out bytes.Buffer
	printFields(&out, archive.Result{
		"title": "Bank",
		"count": 2,
		"notes": map[string]any{"pin": "1234"},
		"tags":  []any{"a", "b"},
	})
	assert.Equal(t, "count: 2\nnotes: {\"pin\":\"1234\"}\ntags: [\"a\",\"b\"]\ntitle: Bank\n", out.String())

	out.Reset()
	printFields(&out, nil)
	assert.Equal(t, "No data\n", out.String())
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("secret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(pw))
	assert.Equal(t, "Enter password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, nil }
	_, err = GetPassword(&out)
	assert.Error(t, err)

	boom := errors.New("no terminal")
	readPassword = func(int) ([]byte, error) { return nil, boom }
	_, err = GetPassword(&out)
	assert.ErrorIs(t, err, boom)
}
