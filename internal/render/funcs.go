// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/olegiv/innercircle-portal/internal/model"
	"github.com/olegiv/innercircle-portal/internal/validation"
)

// templateFuncs returns custom template functions.
func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate":     FormatDate,
		"formatDateTime": FormatDateTime,
		"tierName":       TierName,
		"statusLabel":    StatusLabel,
		"phone":          validation.FormatPhone,
		"money":          Money,
		"markdown":       r.Markdown,
		"contribution":   func() string { return Money(model.ContributionAmount) },
		"tiers":          func() []string { return model.Tiers },
		"truncate": func(s string, length int) string {
			runes := []rune(s)
			if len(runes) <= length {
				return s
			}
			return string(runes[:length]) + "..."
		},
		"add": func(a, b int) int {
			return a + b
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case model.Timestamp:
		return t.Time, !t.IsZero()
	case *model.Timestamp:
		if t == nil {
			return time.Time{}, false
		}
		return t.Time, !t.IsZero()
	case string:
		ts, err := model.ParseTimestamp(t)
		if err != nil {
			return time.Time{}, false
		}
		return ts.Time, !ts.IsZero()
	}
	return time.Time{}, false
}

// FormatDate renders a date as "Saturday, December 5, 2026". Zero and
// unknown values render empty.
func FormatDate(v any) string {
	t, ok := asTime(v)
	if !ok {
		return ""
	}
	return t.Format("Monday, January 2, 2006")
}

// FormatDateTime renders "Dec 5, 2026 7:30 PM".
func FormatDateTime(v any) string {
	t, ok := asTime(v)
	if !ok {
		return ""
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

var acronyms = map[string]string{
	model.TierVIP: "VIP",
}

// TierName turns a tier id like "founding_member" into "Founding Member".
func TierName(tier string) string {
	if name, ok := acronyms[tier]; ok {
		return name
	}
	return titleWords(tier)
}

// StatusLabel turns a status id like "no_payment" into "No Payment".
func StatusLabel(status string) string {
	return titleWords(status)
}

func titleWords(id string) string {
	// Casers keep state and must not be shared.
	c := cases.Title(language.English)
	return c.String(strings.ReplaceAll(id, "_", " "))
}

// Money renders a dollar amount with grouping, dropping zero cents:
// 1000 becomes "$1,000" and 12.5 becomes "$12.50".
func Money(amount float64) string {
	p := message.NewPrinter(language.English)
	if amount == math.Trunc(amount) {
		return p.Sprintf("$%d", int64(amount))
	}
	return p.Sprintf("$%.2f", amount)
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
}

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Markdown converts event copy to sanitized HTML.
func (r *Renderer) Markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	// #nosec G203 -- output is sanitized by bluemonday
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes()))
}
