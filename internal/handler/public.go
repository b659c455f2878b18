// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/innercircle-portal/internal/model"
	"github.com/olegiv/innercircle-portal/internal/render"
)

// Catalog serves member-independent event data, usually from cache.
type Catalog interface {
	CurrentEvent(ctx context.Context) (*model.EventTeaser, bool, error)
	PaymentMethods(ctx context.Context) (*model.PaymentMethods, error)
}

// PublicHandler serves pages that need no session.
type PublicHandler struct {
	renderer *render.Renderer
	catalog  Catalog
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(renderer *render.Renderer, catalog Catalog) *PublicHandler {
	return &PublicHandler{renderer: renderer, catalog: catalog}
}

// HomePage is the data of pages/home.
type HomePage struct {
	Event *model.EventTeaser
}

// Home handles GET /. The landing page still renders when the event cannot
// be loaded.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != RouteRoot {
		h.NotFound(w, r)
		return
	}

	var page HomePage
	event, found, err := h.catalog.CurrentEvent(r.Context())
	switch {
	case err != nil:
		slog.WarnContext(r.Context(), "loading current event for landing page", "error", err)
	case found:
		page.Event = event
	}

	renderPage(w, r, h.renderer, http.StatusOK, "pages/home", render.TemplateData{
		Title: "Paige's Inner Circle",
		Data:  page,
	})
}

// NotFound renders the 404 page.
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.Error(w, r, http.StatusNotFound, msgNotFound)
}

// MethodNotAllowed renders the 405 page.
func (h *PublicHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.renderer.Error(w, r, http.StatusMethodNotAllowed, "That action is not available here.")
}
