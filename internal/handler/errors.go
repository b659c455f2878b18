// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/innercircle-portal/internal/apiclient"
	"github.com/olegiv/innercircle-portal/internal/middleware"
	"github.com/olegiv/innercircle-portal/internal/render"
)

// Static messages for failures whose API detail is not meant for members.
const (
	msgSessionExpired = "Your session has expired. Please sign in again."
	msgUnavailable    = "The Inner Circle is not reachable right now. Please try again shortly."
	msgSomethingWrong = "Something went wrong on our side. Please try again later."
	msgNotFound       = "We could not find what you were looking for."
)

// apiFailure applies the portal's policy to a failed API call.
//
// A 401 has already cleared the session through the client's observer, so the
// member is sent to the access page. A 403 shows the inline denied page.
// Anything else is logged and shown either as a flash on fallbackURL or,
// when fallbackURL is empty, as an error page.
func apiFailure(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, err error, action, fallbackURL string) {
	kind, ok := apiclient.KindOf(err)
	if !ok {
		kind = apiclient.KindRequest
	}

	switch kind {
	case apiclient.KindUnauthorized:
		slog.InfoContext(r.Context(), "session rejected by api", "action", action)
		flashAndRedirect(w, r, renderer, middleware.AccessURL(r), msgSessionExpired, render.FlashInfo)
		return
	case apiclient.KindForbidden:
		slog.WarnContext(r.Context(), "api refused request", "action", action, "error", err)
		renderer.Denied(w, r)
		return
	}

	status, message := failureDisplay(kind, err)
	if kind == apiclient.KindHTTP || kind == apiclient.KindNotFound {
		slog.InfoContext(r.Context(), "api call failed", "action", action, "error", err)
	} else {
		slog.ErrorContext(r.Context(), "api call failed", "action", action, "error", err)
	}

	if fallbackURL != "" {
		flashError(w, r, renderer, fallbackURL, message)
		return
	}
	renderer.Error(w, r, status, message)
}

// failureDisplay picks the status and member-facing message for kind. Client
// errors carry the API's own explanation; server and transport failures
// never do.
func failureDisplay(kind apiclient.Kind, err error) (int, string) {
	switch kind {
	case apiclient.KindNotFound:
		return http.StatusNotFound, apiclient.Message(err, msgNotFound)
	case apiclient.KindHTTP:
		status := apiclient.StatusOf(err)
		if status < 400 || status > 499 {
			status = http.StatusBadRequest
		}
		return status, apiclient.Message(err, msgSomethingWrong)
	case apiclient.KindNetwork:
		return http.StatusBadGateway, msgUnavailable
	case apiclient.KindServer:
		return http.StatusBadGateway, msgSomethingWrong
	default:
		return http.StatusInternalServerError, msgSomethingWrong
	}
}
