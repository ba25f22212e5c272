// Package ident derives the canonical text forms and stable identifiers
// used to join entities across data sources. Everything here is pure and
// deterministic: the same input yields the same output across runs, which
// is what lets a full re-run reproduce identical IDs.
package ident

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

const fallbackSlug = "unknown"

// foldTable maps the Latin-extended characters observed in source data to
// their base ASCII letters. This is an explicit table, not full Unicode
// normalization: only the characters the providers actually emit need
// folding.
var foldTable = map[rune]rune{
	'ı': 'i', 'ğ': 'g', 'ş': 's', 'ö': 'o', 'ü': 'u', 'ç': 'c',
	'á': 'a', 'à': 'a', 'â': 'a', 'ä': 'a', 'ã': 'a', 'å': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ø': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u',
	'ý': 'y', 'ÿ': 'y',
	'ñ': 'n', 'ß': 's', 'æ': 'a', 'œ': 'o',
	'ć': 'c', 'č': 'c', 'đ': 'd', 'ł': 'l', 'ń': 'n', 'ř': 'r',
	'ś': 's', 'š': 's', 'ť': 't', 'ž': 'z', 'ż': 'z', 'ź': 'z',
	'ą': 'a', 'ę': 'e', 'ė': 'e', 'ī': 'i', 'ū': 'u', 'ő': 'o', 'ű': 'u',
}

// Canonicalize lowers, folds diacritics, strips everything that is not
// alphanumeric or a space and collapses runs of whitespace. The result is
// the cross-source join key for team and player names. Idempotent; an
// empty or missing name canonicalizes to "".
func Canonicalize(name string) string {
	lowered := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if folded, ok := foldTable[r]; ok {
			r = folded
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Slug is the canonical form with spaces turned into underscores, suitable
// for embedding in identifiers. Names that canonicalize to nothing slug to
// a fixed fallback token so ID generation never fails.
func Slug(name string) string {
	canonical := Canonicalize(name)
	if canonical == "" {
		return fallbackSlug
	}
	return strings.ReplaceAll(canonical, " ", "_")
}

// StableID builds a deterministic identifier from a free-text name:
// prefix + slug + a short sha1 fragment of the canonical form. The slug
// keeps IDs debuggable by eye, the hash fragment keeps distinct canonical
// names collision-free for any realistic catalog size.
func StableID(prefix, name string) string {
	slug := Slug(name)
	sum := sha1.Sum([]byte(slug))
	return prefix + "_" + slug + "_" + hex.EncodeToString(sum[:])[:10]
}
