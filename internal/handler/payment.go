// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/innercircle-portal/internal/model"
	"github.com/olegiv/innercircle-portal/internal/render"
	"github.com/olegiv/innercircle-portal/internal/session"
	"github.com/olegiv/innercircle-portal/internal/validation"
)

// PaymentAPI is the payment part of the API client.
type PaymentAPI interface {
	PaymentStatus(ctx context.Context, token string) (*model.PaymentStatus, bool, error)
	RequestPaymentContact(ctx context.Context, in model.PaymentContact) (*model.PaymentContactResult, error)
}

// PaymentHandler serves the contribution page of a Legacy Pass.
type PaymentHandler struct {
	renderer *render.Renderer
	api      PaymentAPI
	catalog  Catalog
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(renderer *render.Renderer, api PaymentAPI, catalog Catalog) *PaymentHandler {
	return &PaymentHandler{renderer: renderer, api: api, catalog: catalog}
}

// PaymentPage is the data of pages/payment.
type PaymentPage struct {
	Token   string
	Amount  float64
	Methods []model.PaymentMethod
	// Status is nil until a contact request has been made.
	Status *model.PaymentStatus
	Email  string
	Method string
	Form   *validation.Form
}

// PassURL links back to the pass.
func (p PaymentPage) PassURL() string {
	return passURL(p.Token)
}

// Requested reports whether a contact request is on file.
func (p PaymentPage) Requested() bool {
	return p.Status != nil && p.Status.Status != model.PaymentNone
}

// Show handles GET /payment/{token}.
func (h *PaymentHandler) Show(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if !validLegacyToken(token) {
		h.renderer.Error(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	page := PaymentPage{Token: token, Form: validation.NewForm()}
	if m := session.FromContext(r.Context()).Member; m != nil {
		page.Email = m.Email
	}
	if !h.load(w, r, &page) {
		return
	}
	h.render(w, r, http.StatusOK, page)
}

// RequestContact handles POST /payment/{token}: the member asks staff to get
// in touch about the contribution.
func (h *PaymentHandler) RequestContact(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if !validLegacyToken(token) {
		h.renderer.Error(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, paymentURL(token)) {
		return
	}

	page := PaymentPage{
		Token:  token,
		Email:  strings.TrimSpace(r.PostFormValue("contact_email")),
		Method: r.PostFormValue("payment_method"),
		Form:   validation.NewForm(),
	}
	if !h.load(w, r, &page) {
		return
	}

	page.Form.Check("contact_email", validation.Required(page.Email, "Contact email"))
	page.Form.Check("contact_email", validation.Email(page.Email))
	page.Form.Check("payment_method", validation.Required(page.Method, "Payment method"))
	if page.Method != "" && !(&model.PaymentMethods{Methods: page.Methods}).Has(page.Method) {
		page.Form.Add("payment_method", "Please choose one of the listed payment methods.")
	}
	if !page.Form.Valid() {
		h.render(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	result, err := h.api.RequestPaymentContact(r.Context(), model.PaymentContact{
		LegacyToken:   token,
		ContactEmail:  page.Email,
		PaymentMethod: page.Method,
	})
	if err != nil {
		apiFailure(w, r, h.renderer, err, "requesting payment contact", paymentURL(token))
		return
	}

	slog.InfoContext(r.Context(), "payment contact requested", "method", page.Method)
	msg := result.Message
	if result.EstimatedContactTime != "" {
		msg += " We will be in touch within " + result.EstimatedContactTime + "."
	}
	flashSuccess(w, r, h.renderer, paymentURL(token), msg)
}

// load fills the methods, amount and status of page. It writes the failure
// response and returns false when the API call fails.
func (h *PaymentHandler) load(w http.ResponseWriter, r *http.Request, page *PaymentPage) bool {
	ctx := r.Context()
	page.Amount = model.ContributionAmount

	methods, err := h.catalog.PaymentMethods(ctx)
	if err != nil {
		apiFailure(w, r, h.renderer, err, "loading payment methods", "")
		return false
	}
	page.Methods = methods.Methods

	status, found, err := h.api.PaymentStatus(ctx, page.Token)
	if err != nil {
		apiFailure(w, r, h.renderer, err, "loading payment status", "")
		return false
	}
	if found {
		page.Status = status
	}
	return true
}

func (h *PaymentHandler) render(w http.ResponseWriter, r *http.Request, status int, page PaymentPage) {
	renderPage(w, r, h.renderer, status, "pages/payment", render.TemplateData{
		Title: "Contribution",
		Data:  page,
	})
}
