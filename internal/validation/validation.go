// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validation provides the portal's form field checks.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Result is the outcome of one check. Message is empty when Valid.
type Result struct {
	Valid   bool
	Message string
}

var ok = Result{Valid: true}

func fail(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Required fails when value is empty or whitespace.
func Required(value, field string) Result {
	if strings.TrimSpace(value) == "" {
		return fail("%s is required", field)
	}
	return ok
}

// MinLength fails when value has fewer than n characters.
func MinLength(value string, n int, field string) Result {
	if utf8.RuneCountInString(value) < n {
		return fail("%s must be at least %d characters", field, n)
	}
	return ok
}

// Email checks for a plausible address shape. The API has the final word.
func Email(value string) Result {
	if strings.TrimSpace(value) == "" {
		return fail("Email is required")
	}
	if !emailRegex.MatchString(value) {
		return fail("Please enter a valid email address")
	}
	return ok
}

// Phone requires at least ten digits, ignoring punctuation.
func Phone(value string) Result {
	if strings.TrimSpace(value) == "" {
		return fail("Phone number is required")
	}
	if len(digits(value)) < 10 {
		return fail("Please enter a valid phone number")
	}
	return ok
}

// FormatPhone renders a ten-digit number as (XXX) XXX-XXXX. Any other input
// is returned unchanged.
func FormatPhone(value string) string {
	d := digits(value)
	if len(d) != 10 {
		return value
	}
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
