package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"non-empty string", "x", true},
		{"false", false, false},
		{"true", true, true},
		{"zero int", 0, false},
		{"zero float", 0.0, false},
		{"nonzero number", 3.14, true},
		{"empty list", []any{}, false},
		{"non-empty list", []any{"a"}, true},
		{"empty string list", []string{}, false},
		{"empty map", map[string]any{}, false},
		{"non-empty map", map[string]any{"k": 1}, true},
		{"struct value", struct{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(tt.value))
		})
	}
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		name    string
		element any
		want    string
	}{
		{
			name:    "attachment identified by URL tail",
			element: Attachment{URL: "https://host-a.example.com/files/photo.png"},
			want:    "photo.png",
		},
		{
			name:    "rehosted attachment compares equal",
			element: Attachment{URL: "https://host-b.example.com/other/path/photo.png"},
			want:    "photo.png",
		},
		{
			name:    "attachment map with url",
			element: map[string]any{"url": "https://cdn.example.com/abc/doc.pdf"},
			want:    "doc.pdf",
		},
		{
			name:    "plain string",
			element: "rec00000000000001",
			want:    "rec00000000000001",
		},
		{
			name:    "number",
			element: 42,
			want:    "42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Identity(tt.element))
		})
	}
}

func TestEqualValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal strings", "a", "a", true},
		{"different strings", "a", "b", false},
		{"int and float of same value", 3, 3.0, true},
		{"int and float of different value", 3, 3.5, false},
		{"number and string", 3, "3", false},
		{"equal lists", []any{"a", "b"}, []string{"a", "b"}, true},
		{"different element order", []any{"a", "b"}, []any{"b", "a"}, false},
		{"different lengths", []any{"a"}, []any{"a", "b"}, false},
		{
			name: "attachment lists compare by URL tail",
			a:    []Attachment{{URL: "https://a.example.com/1/f.png"}},
			b:    []map[string]any{{"url": "https://b.example.com/2/f.png"}},
			want: true,
		},
		{"bools", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EqualValues(tt.a, tt.b))
		})
	}
}
