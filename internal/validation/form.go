// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package validation

// Form collects the first failure per field for re-rendering a form.
type Form struct {
	Errors map[string]string
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{Errors: make(map[string]string)}
}

// Check records r against field unless the field already failed.
func (f *Form) Check(field string, r Result) {
	if r.Valid {
		return
	}
	if _, exists := f.Errors[field]; !exists {
		f.Errors[field] = r.Message
	}
}

// Add records a message for field directly.
func (f *Form) Add(field, message string) {
	f.Errors[field] = message
}

// Valid reports whether no field failed.
func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// Get returns the message for field, or "".
func (f *Form) Get(field string) string {
	return f.Errors[field]
}
