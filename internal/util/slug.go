// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers for turning member-facing text into
// safe ASCII identifiers and download filenames.
package util

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a string to a lowercase ASCII slug. Accents are stripped
// and other scripts are transliterated, so "Zoë Ørsted" becomes
// "zoe-orsted".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	result = unidecode.Unidecode(result)

	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, " ", "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// PassFilename names a downloaded Legacy Pass PDF, for example
// "legacy-pass-ic-0042-jane-doe.pdf".
func PassFilename(passNumber, memberName string) string {
	parts := []string{"legacy-pass"}
	for _, p := range []string{passNumber, memberName} {
		if s := Slugify(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-") + ".pdf"
}

// SafeFilename reduces an untrusted filename (for example from a
// Content-Disposition header) to an ASCII base name, keeping its extension.
// fallback is returned when nothing usable remains.
func SafeFilename(name, fallback string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		return fallback
	}

	ext := strings.ToLower(path.Ext(base))
	stem := Slugify(strings.TrimSuffix(base, path.Ext(base)))
	if stem == "" {
		return fallback
	}
	ext = slugRegex.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}
