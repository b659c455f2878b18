// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/innercircle-portal/internal/apiclient"
	"github.com/olegiv/innercircle-portal/internal/model"
	"github.com/olegiv/innercircle-portal/internal/render"
	"github.com/olegiv/innercircle-portal/internal/session"
	"github.com/olegiv/innercircle-portal/internal/util"
)

const msgPassLocked = "Your full pass unlocks once your contribution has been verified."

// PassAPI is the Legacy Pass part of the API client.
type PassAPI interface {
	PassPreview(ctx context.Context, token string) (*model.PassPreview, error)
	Pass(ctx context.Context, token string) (*model.LegacyPass, error)
	DownloadPass(ctx context.Context, token string) (*apiclient.Download, error)
}

// PassHandler serves the Legacy Pass pages.
type PassHandler struct {
	renderer *render.Renderer
	api      PassAPI
}

// NewPassHandler creates a new PassHandler.
func NewPassHandler(renderer *render.Renderer, api PassAPI) *PassHandler {
	return &PassHandler{renderer: renderer, api: api}
}

// PassPreviewPage is the data of pages/pass_preview.
type PassPreviewPage struct {
	Preview *model.PassPreview
}

// PaymentURL links to the contribution page.
func (p PassPreviewPage) PaymentURL() string {
	return paymentURL(p.Preview.Token)
}

// PassPage is the data of pages/pass.
type PassPage struct {
	Pass *model.LegacyPass
}

// DownloadURL links to the pass document.
func (p PassPage) DownloadURL() string {
	return passURL(p.Pass.Token) + "/download"
}

// Show handles GET /pass/{token}. The preview decides whether the full pass
// is requested at all.
func (h *PassHandler) Show(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if !validLegacyToken(token) {
		h.renderer.Error(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	ctx := r.Context()

	preview, err := h.api.PassPreview(ctx, token)
	if err != nil {
		apiFailure(w, r, h.renderer, err, "loading pass preview", "")
		return
	}

	if preview.CanAccessFull {
		pass, err := h.api.Pass(ctx, token)
		switch {
		case err == nil:
			renderPage(w, r, h.renderer, http.StatusOK, "pages/pass", render.TemplateData{
				Title: "Legacy Pass",
				Data:  PassPage{Pass: pass},
			})
			return
		case apiclient.StatusOf(err) == http.StatusPaymentRequired:
			slog.WarnContext(ctx, "full pass refused despite preview", "error", err)
		default:
			apiFailure(w, r, h.renderer, err, "loading pass", "")
			return
		}
	}

	renderPage(w, r, h.renderer, http.StatusOK, "pages/pass_preview", render.TemplateData{
		Title: "Legacy Pass Preview",
		Data:  PassPreviewPage{Preview: preview},
	})
}

// Download handles GET /pass/{token}/download by streaming the API's
// document to the member under a sanitized filename.
func (h *PassHandler) Download(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if !validLegacyToken(token) {
		h.renderer.Error(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	ctx := r.Context()

	dl, err := h.api.DownloadPass(ctx, token)
	if err != nil {
		if apiclient.StatusOf(err) == http.StatusPaymentRequired {
			flashError(w, r, h.renderer, passURL(token), msgPassLocked)
			return
		}
		apiFailure(w, r, h.renderer, err, "downloading pass", passURL(token))
		return
	}
	defer func() { _ = dl.Body.Close() }()

	memberName := ""
	if m := session.FromContext(ctx).Member; m != nil {
		memberName = m.FullName
	}
	filename := util.SafeFilename(dl.Filename, util.PassFilename("", memberName))

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if dl.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, dl.Body); err != nil {
		slog.WarnContext(ctx, "streaming pass download interrupted", "error", err)
	}
}
