package util

import (
	"database/sql"
	"testing"
)

func TestNullString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want sql.NullString
	}{
		{"empty", "", sql.NullString{}},
		{"value", "hero", sql.NullString{String: "hero", Valid: true}},
		{"whitespace kept", " ", sql.NullString{String: " ", Valid: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NullString(tt.in); got != tt.want {
				t.Errorf("NullString(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBoolToInt64(t *testing.T) {
	if BoolToInt64(true) != 1 || BoolToInt64(false) != 0 {
		t.Error("BoolToInt64 must map true=1 and false=0")
	}
}
