// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"strconv"
)

// Pagination describes a page of a list whose total size is unknown. The
// API has skip/limit paging without a count, so one extra row is requested
// to learn whether a next page exists.
type Pagination struct {
	Page    int
	PerPage int
	HasNext bool
	// query holds the filters carried across pages.
	query url.Values
	path  string
}

// parsePagination reads ?page= from r. Invalid values mean page 1.
func parsePagination(r *http.Request, perPage int) Pagination {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	q := url.Values{}
	for k, v := range r.URL.Query() {
		if k != "page" {
			q[k] = v
		}
	}
	return Pagination{Page: page, PerPage: perPage, query: q, path: r.URL.Path}
}

// Skip is the number of rows before this page.
func (p Pagination) Skip() int {
	return (p.Page - 1) * p.PerPage
}

// Limit is the number of rows to request, one more than a page.
func (p Pagination) Limit() int {
	return p.PerPage + 1
}

// trim cuts the lookahead row off rows and records whether it existed.
func trim[T any](p *Pagination, rows []T) []T {
	if len(rows) > p.PerPage {
		p.HasNext = true
		return rows[:p.PerPage]
	}
	return rows
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// PrevURL links to the previous page.
func (p Pagination) PrevURL() string {
	return p.pageURL(p.Page - 1)
}

// NextURL links to the next page.
func (p Pagination) NextURL() string {
	return p.pageURL(p.Page + 1)
}

func (p Pagination) pageURL(page int) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return p.path
	}
	return p.path + "?" + q.Encode()
}
