package slug_test

import (
	"testing"

	"storefinder/utils/slug"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Cafe Luna", "cafe-luna"},
		{"Dang! That's Delicious", "dang-that-s-delicious"},
		{"Crêpes & Co.", "crepes-and-co"},
		{"  spaced   out  ", "spaced-out"},
		{"UPPER case 123", "upper-case-123"},
		{"!!!", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, slug.Make(c.name), "Make(%q)", c.name)
	}
}
