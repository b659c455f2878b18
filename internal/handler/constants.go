// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the landing page.
	RouteRoot = "/"
	// RouteAccess is the member access form.
	RouteAccess = "/access"
	// RouteLogout ends the session.
	RouteLogout = "/logout"
	// RouteHealth is the health endpoint.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness probe.
	RouteHealthLive = "/health/live"
	// RouteMetrics exposes Prometheus metrics.
	RouteMetrics = "/metrics"

	// RouteDashboard is the member home.
	RouteDashboard = "/dashboard"
	// RouteEvent shows the current event.
	RouteEvent = "/event"
	// RouteRSVP is the invitation answer form.
	RouteRSVP = "/rsvp"
	// RouteProfileRefresh reloads the member profile from the API.
	RouteProfileRefresh = "/profile/refresh"
	// RoutePayment is the payment page of a pass.
	RoutePayment = "/payment/{token}"
	// RoutePass is the legacy pass page.
	RoutePass = "/pass/{token}"
	// RoutePassDownload streams the pass document.
	RoutePassDownload = "/pass/{token}/download"

	// RouteAdmin is the admin console prefix.
	RouteAdmin = "/admin"
	// RouteMembers is the admin member list.
	RouteMembers = "/members"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteRSVPs is the admin RSVP list.
	RouteRSVPs = "/rsvps"
	// RoutePayments is the admin payment list.
	RoutePayments = "/payments"
	// RouteSuffixVerify is the payment verification suffix.
	RouteSuffixVerify = "/verify"
	// RouteCatalogRefresh reloads the cached event and payment methods.
	RouteCatalogRefresh = "/catalog/refresh"
)

// Redirect targets.
const (
	redirectDashboard     = RouteDashboard
	redirectRSVP          = RouteRSVP
	redirectAdmin         = RouteAdmin
	redirectAdminMembers  = RouteAdmin + RouteMembers
	redirectAdminPayments = RouteAdmin + RoutePayments
)

// paymentURL and passURL build the member-facing links of a legacy token.
func paymentURL(token string) string {
	return "/payment/" + token
}

func passURL(token string) string {
	return "/pass/" + token
}
