package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/innercircle-portal/internal/apiclient"
	"github.com/olegiv/innercircle-portal/internal/model"
)

func newPaymentHandler(t *testing.T, api *fakePaymentAPI) (*PaymentHandler, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return NewPaymentHandler(env.renderer, api, &fakeCatalog{event: testEvent(), methods: testMethods()}), env
}

func TestPaymentShow(t *testing.T) {
	h, env := newPaymentHandler(t, &fakePaymentAPI{})

	req := withURLParam(getRequest("/payment/"+testToken), "token", testToken)
	rec := env.serve(h.Show, req, memberSession())

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "$1,000")
	assert.Contains(t, body, "Wire Transfer")
	assert.Contains(t, body, `value="ann@example.com"`)
	assert.Contains(t, body, "How would you like to pay?")
}

func TestPaymentShowVerifiedHidesForm(t *testing.T) {
	api := &fakePaymentAPI{status: &model.PaymentStatus{
		Status: model.PaymentVerified, IsVerified: true, CanAccessFullPass: true, Message: "Payment verified!",
	}}
	h, env := newPaymentHandler(t, api)

	req := withURLParam(getRequest("/payment/"+testToken), "token", testToken)
	rec := env.serve(h.Show, req, memberSession())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment verified!")
	assert.NotContains(t, rec.Body.String(), `name="payment_method"`)
}

func TestPaymentRejectsMalformedToken(t *testing.T) {
	api := &fakePaymentAPI{}
	h, env := newPaymentHandler(t, api)

	for _, token := range []string{"abc", "../admin", "3f2b8c1e4d5a4b6c9e7f0a1b2c3d4e5f"} {
		req := withURLParam(getRequest("/payment/x"), "token", token)
		rec := env.serve(h.Show, req, memberSession())
		assert.Equal(t, http.StatusNotFound, rec.Code, "token %q", token)

		req = withURLParam(postForm("/payment/x", url.Values{}), "token", token)
		rec = env.serve(h.RequestContact, req, memberSession())
		assert.Equal(t, http.StatusNotFound, rec.Code, "token %q", token)
	}
	assert.Empty(t, api.requests)
}

func TestPaymentRequestContact(t *testing.T) {
	api := &fakePaymentAPI{result: &model.PaymentContactResult{
		Message:              "Payment contact request received.",
		Status:               "pending",
		EstimatedContactTime: "24 hours",
	}}
	h, env := newPaymentHandler(t, api)

	form := url.Values{"contact_email": {"billing@example.com"}, "payment_method": {"zelle"}}
	req := withURLParam(postForm("/payment/"+testToken, form), "token", testToken)
	rec := env.serve(h.RequestContact, req, memberSession())

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/payment/"+testToken, rec.Header().Get("Location"))
	require.Len(t, api.requests, 1)
	assert.Equal(t, model.PaymentContact{
		LegacyToken:   testToken,
		ContactEmail:  "billing@example.com",
		PaymentMethod: "zelle",
	}, api.requests[0])
	assert.Equal(t, "Payment contact request received. We will be in touch within 24 hours.", env.flash(t, rec))
}

func TestPaymentRequestContactValidation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{name: "bad email", form: url.Values{"contact_email": {"nope"}, "payment_method": {"zelle"}}, want: "field-error"},
		{name: "no method", form: url.Values{"contact_email": {"a@b.com"}}, want: "field-error"},
		{name: "unknown method", form: url.Values{"contact_email": {"a@b.com"}, "payment_method": {"bitcoin"}}, want: "listed payment methods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakePaymentAPI{}
			h, env := newPaymentHandler(t, api)

			req := withURLParam(postForm("/payment/"+testToken, tt.form), "token", testToken)
			rec := env.serve(h.RequestContact, req, memberSession())

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Empty(t, api.requests)
		})
	}
}

func TestPaymentForeignTokenIsDenied(t *testing.T) {
	api := &fakePaymentAPI{statusErr: apiError(apiclient.KindForbidden, http.StatusForbidden, "Not your pass")}
	h, env := newPaymentHandler(t, api)

	req := withURLParam(getRequest("/payment/"+testToken), "token", testToken)
	rec := env.serve(h.Show, req, memberSession())

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
