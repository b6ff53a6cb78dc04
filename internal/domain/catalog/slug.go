// Package catalog reglas del catálogo que no dependen del almacenamiento.
package catalog

import (
	"strings"
	"unicode"

	nanoid "github.com/jaevor/go-nanoid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var slugSuffix = mustSlugGenerator()

func mustSlugGenerator() func() string {
	gen, err := nanoid.CustomASCII(slugAlphabet, 8)
	if err != nil {
		panic(err)
	}
	return gen
}

// Slug genera un identificador apto para URL a partir del nombre de una categoría.
// Quita acentos, pasa a minúsculas y reemplaza todo lo que no sea [a-z0-9] por guiones.
// Los caracteres fuera del alfabeto latino (ej. "线缆") desaparecen; si no queda nada devuelve "".
func Slug(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r == '_' || r == '-' || unicode.IsSpace(r):
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// UniqueSlug devuelve Slug(name) si está libre; si está vacío o ya existe, agrega un sufijo aleatorio.
func UniqueSlug(name string, taken func(string) bool) string {
	base := Slug(name)
	if base == "" {
		base = "category"
	} else if !taken(base) {
		return base
	}
	for {
		candidate := base + "-" + slugSuffix()
		if !taken(candidate) {
			return candidate
		}
	}
}
