package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveNameFromEmail(t *testing.T) {
	cases := []struct {
		email string
		first string
		last  string
	}{
		{"ana.lee@example.com", "Ana", "Lee"},
		{"ana_lee@example.com", "Ana", "Lee"},
		{"ana-maria.lee@example.com", "Ana", "Lee"},
		{"ana@example.com", "Ana", "User"},
		{"a.b.c@example.com", "A", "C"},
		{"@example.com", "User", "User"},
		{"", "User", "User"},
		{"plainaddress", "Plainaddress", "User"},
	}

	for _, tc := range cases {
		first, last := DeriveNameFromEmail(tc.email)
		assert.Equal(t, tc.first, first, "first name for %q", tc.email)
		assert.Equal(t, tc.last, last, "last name for %q", tc.email)
	}
}
