package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/innercircle-portal/internal/apiclient"
	"github.com/olegiv/innercircle-portal/internal/middleware"
	"github.com/olegiv/innercircle-portal/internal/model"
	"github.com/olegiv/innercircle-portal/internal/render"
	"github.com/olegiv/innercircle-portal/internal/session"
	"github.com/olegiv/innercircle-portal/web"
)

const testToken = "3f2b8c1e-4d5a-4b6c-9e7f-0a1b2c3d4e5f"

var testPolicy = middleware.AdminPolicy{EmailDomain: "paigeinnercircle.com"}

func memberSession() session.Session {
	return session.Session{
		Token: "member-token",
		Member: &model.Member{
			ID:               "m1",
			Email:            "ann@example.com",
			FullName:         "Ann Bee",
			MembershipTier:   model.TierVIP,
			MembershipNumber: "VIP-0042",
			IsActive:         true,
		},
		IsAuthenticated: true,
	}
}

func adminSession() session.Session {
	return session.Session{
		Token: "admin-token",
		Member: &model.Member{
			ID:             "a1",
			Email:          "paige@paigeinnercircle.com",
			FullName:       "Paige Turner",
			MembershipTier: model.TierAdmin,
			IsActive:       true,
		},
		IsAuthenticated: true,
	}
}

// testEnv holds a renderer over the real templates and the scs manager
// that backs its flash messages.
type testEnv struct {
	sm       *scs.SessionManager
	renderer *render.Renderer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sm := scs.New()
	renderer, err := render.New(render.Config{
		TemplatesFS:    web.TemplatesFS(),
		SessionManager: sm,
		IsAdmin:        testPolicy.IsAdmin,
	})
	require.NoError(t, err)
	return &testEnv{sm: sm, renderer: renderer}
}

// serve runs h for req with s as the session snapshot.
func (e *testEnv) serve(h http.HandlerFunc, req *http.Request, s session.Session) *httptest.ResponseRecorder {
	req = req.WithContext(session.WithSession(req.Context(), s))
	rec := httptest.NewRecorder()
	e.sm.LoadAndSave(h).ServeHTTP(rec, req)
	return rec
}

// flash returns the flash message stored by the response in rec.
func (e *testEnv) flash(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	var msg string
	e.sm.LoadAndSave(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		msg = e.sm.PopString(r.Context(), "flash")
	})).ServeHTTP(httptest.NewRecorder(), req)
	return msg
}

func getRequest(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func apiError(kind apiclient.Kind, status int, message string) error {
	return &apiclient.Error{Kind: kind, Status: status, Message: message, Endpoint: "test"}
}

// Fakes

type fakeCatalog struct {
	event   *model.EventTeaser
	methods *model.PaymentMethods
	err     error
}

func (f *fakeCatalog) CurrentEvent(context.Context) (*model.EventTeaser, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.event, f.event != nil, nil
}

func (f *fakeCatalog) PaymentMethods(context.Context) (*model.PaymentMethods, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.methods == nil {
		return &model.PaymentMethods{}, nil
	}
	return f.methods, nil
}

func testEvent() *model.EventTeaser {
	ts, _ := model.ParseTimestamp("2026-12-05T19:30:00")
	return &model.EventTeaser{ID: "ev1", Title: "The Legacy Gala", Subtitle: "An evening of thanks", EventDate: ts, Theme: "Midnight Garden"}
}

func testMethods() *model.PaymentMethods {
	return &model.PaymentMethods{Methods: []model.PaymentMethod{
		{ID: "zelle", Name: "Zelle", Description: "Instant bank transfer", ProcessingTime: "Same day"},
		{ID: "wire_transfer", Name: "Wire Transfer", Description: "Bank wire", ProcessingTime: "1-2 days"},
	}}
}

type fakeSessions struct {
	mu         sync.Mutex
	result     session.LoginResult
	logins     []string
	loggedOut  bool
	member     *model.Member
	refreshErr error
}

func (f *fakeSessions) Login(_ http.ResponseWriter, _ *http.Request, email string) session.LoginResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, email)
	return f.result
}

func (f *fakeSessions) Logout(http.ResponseWriter, *http.Request) {
	f.loggedOut = true
}

func (f *fakeSessions) RefreshMember(http.ResponseWriter, *http.Request) (*model.Member, error) {
	return f.member, f.refreshErr
}

type fakeMemberAPI struct {
	status    *model.RSVPStatus
	statusErr error
	event     *model.EventDetail
	eventErr  error
	eventIDs  []string
	result    *model.RSVPResult
	submitErr error
	submitted []model.RSVPCreate
}

func (f *fakeMemberAPI) MyRSVP(context.Context) (*model.RSVPStatus, bool, error) {
	if f.statusErr != nil {
		return nil, false, f.statusErr
	}
	return f.status, f.status != nil, nil
}

func (f *fakeMemberAPI) Event(_ context.Context, id string) (*model.EventDetail, error) {
	f.eventIDs = append(f.eventIDs, id)
	return f.event, f.eventErr
}

func (f *fakeMemberAPI) SubmitRSVP(_ context.Context, in model.RSVPCreate) (*model.RSVPResult, error) {
	f.submitted = append(f.submitted, in)
	return f.result, f.submitErr
}

type fakePaymentAPI struct {
	status    *model.PaymentStatus
	statusErr error
	result    *model.PaymentContactResult
	err       error
	requests  []model.PaymentContact
}

func (f *fakePaymentAPI) PaymentStatus(context.Context, string) (*model.PaymentStatus, bool, error) {
	if f.statusErr != nil {
		return nil, false, f.statusErr
	}
	return f.status, f.status != nil, nil
}

func (f *fakePaymentAPI) RequestPaymentContact(_ context.Context, in model.PaymentContact) (*model.PaymentContactResult, error) {
	f.requests = append(f.requests, in)
	return f.result, f.err
}

type fakePassAPI struct {
	preview     *model.PassPreview
	previewErr  error
	pass        *model.LegacyPass
	passErr     error
	passCalls   int
	download    *apiclient.Download
	downloadErr error
}

func (f *fakePassAPI) PassPreview(context.Context, string) (*model.PassPreview, error) {
	return f.preview, f.previewErr
}

func (f *fakePassAPI) Pass(context.Context, string) (*model.LegacyPass, error) {
	f.passCalls++
	return f.pass, f.passErr
}

func (f *fakePassAPI) DownloadPass(context.Context, string) (*apiclient.Download, error) {
	return f.download, f.downloadErr
}

type fakeAdminAPI struct {
	mu        sync.Mutex
	dashboard *model.Dashboard
	members   []model.Member
	filters   []apiclient.MemberFilter
	created   *model.Member
	createErr error
	creates   []model.MemberCreate
	rsvps     []model.RSVPRow
	summary   *model.RSVPSummary
	pending   []model.PendingPayment
	all       []model.PaymentRecord
	listErr   error
	verified  []model.PaymentVerify
	verifyErr error
}

func (f *fakeAdminAPI) Dashboard(context.Context) (*model.Dashboard, error) {
	return f.dashboard, f.listErr
}

func (f *fakeAdminAPI) Members(_ context.Context, filter apiclient.MemberFilter) ([]model.Member, error) {
	f.filters = append(f.filters, filter)
	return f.members, f.listErr
}

func (f *fakeAdminAPI) CreateMember(_ context.Context, in model.MemberCreate) (*model.Member, error) {
	f.creates = append(f.creates, in)
	return f.created, f.createErr
}

func (f *fakeAdminAPI) RSVPs(context.Context, string) ([]model.RSVPRow, error) {
	return f.rsvps, f.listErr
}

func (f *fakeAdminAPI) RSVPSummary(context.Context) (*model.RSVPSummary, error) {
	return f.summary, nil
}

func (f *fakeAdminAPI) PendingPayments(context.Context) ([]model.PendingPayment, error) {
	return f.pending, f.listErr
}

func (f *fakeAdminAPI) AllPayments(context.Context, string) ([]model.PaymentRecord, error) {
	return f.all, nil
}

func (f *fakeAdminAPI) VerifyPayment(_ context.Context, in model.PaymentVerify) (*model.PaymentVerifyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, in)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &model.PaymentVerifyResult{Message: "Payment verified successfully", FullPassAccessGranted: true}, nil
}

// nopCloser makes a download body from a string.
func nopCloser(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
