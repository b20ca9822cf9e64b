package view

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitials(t *testing.T) {
	assert.Equal(t, "AB", Initials("Alice Bern"))
	assert.Equal(t, "A", Initials("Alice"))
	assert.Equal(t, "AB", Initials("alice bern carter"))
	assert.Equal(t, "?", Initials(""))
	assert.Equal(t, "?", Initials("   "))
}

func TestAvatarColorDeterministic(t *testing.T) {
	hex := regexp.MustCompile(`^#[0-9a-f]{6}$`)

	a := AvatarColor("Alice Bern")
	assert.Regexp(t, hex, a)
	assert.Equal(t, a, AvatarColor("Alice Bern"), "same name, same color")

	b := AvatarColor("Bob Chen")
	assert.Regexp(t, hex, b)
	assert.NotEqual(t, a, b)
}
