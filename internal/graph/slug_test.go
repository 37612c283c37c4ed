package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Backend API", "backend-api"},
		{"php", "php"},
		{"Café Crème", "cafe-creme"},
		{"  Hello, World!  ", "hello-world"},
		{"PHP 8.2", "php-8-2"},
		{"a__b", "a-b"},
		{"日本", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.name))
		})
	}
}

func TestValidateSlug(t *testing.T) {
	for _, ok := range []string{"tech", "backend-api", "php_8", "a1"} {
		assert.NoError(t, ValidateSlug(ok), ok)
	}
	for _, bad := range []string{"", "Tech", "tech.backend", "has space", "café"} {
		assert.ErrorIs(t, ValidateSlug(bad), ErrInvalidSlug, bad)
	}
}
