package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abc-1234", "ABC-1234"},
		{"  ABC-1234  ", "ABC-1234"},
		{"ab 123 cd", "AB 123 CD"},
		{"ab\t123", "AB 123"},
		{"", ""},
		{"   ", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, NormalizePlate(c.in), "input %q", c.in)
	}
}
