package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	primaryKeys := []string{"First Name", "Last Name"}

	a, ok := NewKey(Record{Fields: Fields{"First Name": "Ada", "Last Name": "Lovelace"}}, primaryKeys)
	require.True(t, ok)
	b, ok := NewKey(Record{ID: "rec00000000000001", Fields: Fields{"First Name": "Ada", "Last Name": "Lovelace", "Role": "Engineer"}}, primaryKeys)
	require.True(t, ok)
	assert.Equal(t, a, b, "same key fields must produce equal keys regardless of other fields")

	c, ok := NewKey(Record{Fields: Fields{"First Name": "Ada", "Last Name": "Byron"}}, primaryKeys)
	require.True(t, ok)
	assert.NotEqual(t, a, c)
}

func TestNewKeyUndefined(t *testing.T) {
	primaryKeys := []string{"Name", "Email"}

	tests := []struct {
		name   string
		fields Fields
	}{
		{"missing key field", Fields{"Name": "Ada"}},
		{"empty string key field", Fields{"Name": "Ada", "Email": ""}},
		{"nil key field", Fields{"Name": "Ada", "Email": nil}},
		{"empty list key field", Fields{"Name": "Ada", "Email": []any{}}},
		{"zero number key field", Fields{"Name": "Ada", "Email": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := NewKey(Record{Fields: tt.fields}, primaryKeys)
			assert.False(t, ok, "any absent or falsy key field must leave the key undefined")
		})
	}

	_, ok := NewKey(Record{Fields: Fields{"Name": "Ada"}}, nil)
	assert.False(t, ok, "empty primary key set must leave the key undefined")
}

func TestNewKeyListValues(t *testing.T) {
	primaryKeys := []string{"Links"}

	a, ok := NewKey(Record{Fields: Fields{"Links": []string{"x", "y"}}}, primaryKeys)
	require.True(t, ok)
	b, ok := NewKey(Record{Fields: Fields{"Links": []any{"x", "y"}}}, primaryKeys)
	require.True(t, ok)
	assert.Equal(t, a, b, "list shape must not matter, only element identities")

	c, ok := NewKey(Record{Fields: Fields{"Links": []string{"y", "x"}}}, primaryKeys)
	require.True(t, ok)
	assert.NotEqual(t, a, c, "element order is significant")
}

func TestNewKeyNoSeparatorCollision(t *testing.T) {
	// "a|b" with one key field must not equal "a" and "b" in two fields.
	one, ok := NewKey(Record{Fields: Fields{"A": "a|b", "B": "x"}}, []string{"A", "B"})
	require.True(t, ok)
	two, ok := NewKey(Record{Fields: Fields{"A": "a", "B": "b|x"}}, []string{"A", "B"})
	require.True(t, ok)
	assert.NotEqual(t, one, two)
}
