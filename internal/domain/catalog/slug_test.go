package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/suministros-api/internal/domain/catalog"
)

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Cables":             "cables",
		"Cables USB":         "cables-usb",
		"  Tóner & Tinta  ":  "toner-tinta",
		"Papelería_Oficina":  "papeleria-oficina",
		"A4--Hojas":          "a4-hojas",
		"线缆":                 "",
		"办公 Paper":           "paper",
	}
	for in, want := range cases {
		assert.Equal(t, want, catalog.Slug(in), "slug de %q", in)
	}
}

func TestUniqueSlug_Libre(t *testing.T) {
	s := catalog.UniqueSlug("Cables", func(string) bool { return false })
	assert.Equal(t, "cables", s)
}

func TestUniqueSlug_OcupadoAgregaSufijo(t *testing.T) {
	s := catalog.UniqueSlug("Cables", func(c string) bool { return c == "cables" })
	assert.True(t, strings.HasPrefix(s, "cables-"))
	assert.Len(t, s, len("cables-")+8)
}

func TestUniqueSlug_VacioUsaSintetico(t *testing.T) {
	s := catalog.UniqueSlug("线缆", func(string) bool { return false })
	assert.True(t, strings.HasPrefix(s, "category-"))
	assert.NotEqual(t, catalog.UniqueSlug("线缆", func(string) bool { return false }), s)
}
