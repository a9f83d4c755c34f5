package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/iliyamo/course-enrollment/internal/handler"
	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/payment"
	"github.com/iliyamo/course-enrollment/internal/repository"
	"github.com/iliyamo/course-enrollment/internal/utils"
)

const secret = "router-test-secret"

// stubUsers resolves roles from a fixed map and records role updates.
type stubUsers struct {
	roles   map[string]model.Role
	updated []string
}

func (s *stubUsers) Create(context.Context, model.User) (repository.InsertResult, bool, error) {
	return repository.InsertResult{Acknowledged: true, InsertedID: "1"}, true, nil
}
func (s *stubUsers) List(context.Context) ([]model.User, error) { return nil, nil }
func (s *stubUsers) RoleByEmail(_ context.Context, email string) (model.Role, error) {
	return s.roles[email], nil
}
func (s *stubUsers) SetRole(_ context.Context, id string, _ model.Role) (repository.UpdateResult, error) {
	s.updated = append(s.updated, id)
	return repository.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

type stubClasses struct{ created int }

func (s *stubClasses) Create(context.Context, model.Class) (repository.InsertResult, error) {
	s.created++
	return repository.InsertResult{Acknowledged: true, InsertedID: "c1"}, nil
}
func (s *stubClasses) List(context.Context) ([]model.Class, error) { return nil, nil }
func (s *stubClasses) ListByStatus(context.Context, model.ClassStatus) ([]model.Class, error) {
	return nil, nil
}
func (s *stubClasses) SetStatus(context.Context, string, model.ClassStatus) (repository.UpdateResult, error) {
	return repository.UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
}

type stubCart struct{}

func (stubCart) Add(context.Context, model.SelectedClass) (repository.InsertResult, error) {
	return repository.InsertResult{Acknowledged: true, InsertedID: "s1"}, nil
}
func (stubCart) ListByEmail(context.Context, string) ([]model.SelectedClass, error) { return nil, nil }
func (stubCart) DeleteOwned(context.Context, string, string) (repository.DeleteResult, error) {
	return repository.DeleteResult{Acknowledged: true}, nil
}

type stubProcessor struct{ calls int }

func (p *stubProcessor) CreateIntent(_ context.Context, amount int64, currency string) (payment.Intent, error) {
	p.calls++
	return payment.Intent{ClientSecret: "secret_1", Amount: amount, Currency: currency}, nil
}

type fixture struct {
	e       *echo.Echo
	users   *stubUsers
	classes *stubClasses
	proc    *stubProcessor
}

func newFixture() *fixture {
	users := &stubUsers{roles: map[string]model.Role{
		"admin@example.com": model.RoleAdmin,
		"inst@example.com":  model.RoleInstructor,
		"stud@example.com":  model.RoleStudent,
	}}
	classes := &stubClasses{}
	proc := &stubProcessor{}
	log, _ := test.NewNullLogger()

	e := echo.New()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	Register(e, Handlers{
		Auth:    handler.NewAuthHandler(secret, time.Hour),
		Users:   handler.NewUserHandler(users, nil, false),
		Classes: handler.NewClassHandler(classes, nil),
		Cart:    handler.NewCartHandler(stubCart{}, nil),
		Payment: handler.NewPaymentHandler(proc, nil),
	}, secret)
	return &fixture{e: e, users: users, classes: classes, proc: proc}
}

func (f *fixture) do(t *testing.T, method, target, body, email string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if email != "" {
		tok, err := utils.NewAccessToken(secret, email, "", time.Hour)
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestGuardedRoutesRequireToken(t *testing.T) {
	f := newFixture()
	routes := [][2]string{
		{http.MethodGet, "/users/a@example.com"},
		{http.MethodPatch, "/users/1?role=admin"},
		{http.MethodPatch, "/users/admin/1?role=admin"},
		{http.MethodPost, "/classes"},
		{http.MethodGet, "/addedClasses"},
		{http.MethodPatch, "/addedClasses/1?status=approve"},
		{http.MethodPost, "/selectedClasses"},
		{http.MethodGet, "/selectedClasses?email=a@example.com"},
		{http.MethodDelete, "/selectedClasses/1"},
		{http.MethodPost, "/create-payment-intent"},
	}
	for _, r := range routes {
		rec := f.do(t, r[0], r[1], "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", r[0], r[1], rec.Code)
			continue
		}
		var body map[string]interface{}
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["message"] != "unauthorized access" {
			t.Errorf("%s %s: unexpected body %s", r[0], r[1], rec.Body)
		}
	}
}

func TestAdminRoutesRejectOtherRoles(t *testing.T) {
	f := newFixture()
	for _, email := range []string{"inst@example.com", "stud@example.com", "new@example.com"} {
		rec := f.do(t, http.MethodPatch, "/users/1?role=admin", "", email)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", email, rec.Code)
		}
	}
	if len(f.users.updated) != 0 {
		t.Fatalf("handler ran behind a failed guard")
	}
	if rec := f.do(t, http.MethodPatch, "/users/admin/1?role=instructor", "", "admin@example.com"); rec.Code != http.StatusOK {
		t.Fatalf("admin alias: expected 200, got %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/addedClasses", "", "admin@example.com"); rec.Code != http.StatusOK {
		t.Fatalf("admin list: expected 200, got %d", rec.Code)
	}
}

func TestInstructorRoute(t *testing.T) {
	f := newFixture()
	body := `{"name":"Yoga","availableSeats":5,"price":10}`
	if rec := f.do(t, http.MethodPost, "/classes", body, "stud@example.com"); rec.Code != http.StatusForbidden {
		t.Fatalf("student creating class: expected 403, got %d", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/classes", body, "inst@example.com"); rec.Code != http.StatusOK {
		t.Fatalf("instructor creating class: expected 200, got %d %s", rec.Code, rec.Body)
	}
	if f.classes.created != 1 {
		t.Fatalf("expected one class, got %d", f.classes.created)
	}
}

func TestStudentRoutesAdmitUnsetRole(t *testing.T) {
	f := newFixture()
	for _, email := range []string{"stud@example.com", "new@example.com"} {
		rec := f.do(t, http.MethodPost, "/create-payment-intent", `{"price":10}`, email)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "secret_1") {
			t.Errorf("%s: expected 200 with secret, got %d %s", email, rec.Code, rec.Body)
		}
	}
	for _, email := range []string{"admin@example.com", "inst@example.com"} {
		if rec := f.do(t, http.MethodPost, "/selectedClasses", `{"classId":"c1"}`, email); rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", email, rec.Code)
		}
	}
	if f.proc.calls != 2 {
		t.Fatalf("expected 2 processor calls, got %d", f.proc.calls)
	}
}

func TestForeignCartIsForbidden(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodGet, "/selectedClasses?email=other@example.com", "", "stud@example.com")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestPublicRoutes(t *testing.T) {
	f := newFixture()
	cases := []struct {
		method, target, body string
		want                 int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/classes", "", http.StatusOK},
		{http.MethodGet, "/users", "", http.StatusOK},
		{http.MethodPost, "/users", `{"email":"n@example.com"}`, http.StatusOK},
		{http.MethodPost, "/jwt", `{"email":"n@example.com"}`, http.StatusOK},
	}
	for _, tc := range cases {
		if rec := f.do(t, tc.method, tc.target, tc.body, ""); rec.Code != tc.want {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.target, tc.want, rec.Code)
		}
	}
}
