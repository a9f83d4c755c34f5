package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/iliyamo/course-enrollment/internal/middleware"
	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/payment"
	"github.com/iliyamo/course-enrollment/internal/queue"
	"github.com/iliyamo/course-enrollment/internal/repository"
)

// memUsers is an in-memory UserStore.  Setting err makes every call fail.
type memUsers struct {
	mu    sync.Mutex
	users []model.User
	err   error
}

func (m *memUsers) Create(_ context.Context, u model.User) (repository.InsertResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return repository.InsertResult{}, false, m.err
	}
	for _, x := range m.users {
		if x.Email == u.Email {
			return repository.InsertResult{}, false, nil
		}
	}
	u.ID = strconv.Itoa(len(m.users) + 1)
	m.users = append(m.users, u)
	return repository.InsertResult{Acknowledged: true, InsertedID: u.ID}, true, nil
}

func (m *memUsers) List(context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.User(nil), m.users...), m.err
}

func (m *memUsers) RoleByEmail(_ context.Context, email string) (model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.RoleUnset, m.err
	}
	for _, x := range m.users {
		if x.Email == email {
			return x.Role, nil
		}
	}
	return model.RoleUnset, nil
}

func (m *memUsers) SetRole(_ context.Context, id string, role model.Role) (repository.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return repository.UpdateResult{}, m.err
	}
	if _, err := strconv.Atoi(id); err != nil {
		return repository.UpdateResult{}, repository.ErrInvalidID
	}
	for i := range m.users {
		if m.users[i].ID == id {
			mod := int64(0)
			if m.users[i].Role != role {
				mod = 1
			}
			m.users[i].Role = role
			return repository.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: mod}, nil
		}
	}
	return repository.UpdateResult{Acknowledged: true}, nil
}

type memClasses struct {
	mu      sync.Mutex
	classes []model.Class
	err     error
}

func (m *memClasses) Create(_ context.Context, c model.Class) (repository.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return repository.InsertResult{}, m.err
	}
	c.ID = strconv.Itoa(len(m.classes) + 1)
	m.classes = append(m.classes, c)
	return repository.InsertResult{Acknowledged: true, InsertedID: c.ID}, nil
}

func (m *memClasses) List(context.Context) ([]model.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Class(nil), m.classes...), m.err
}

func (m *memClasses) ListByStatus(_ context.Context, s model.ClassStatus) ([]model.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Class
	for _, c := range m.classes {
		if c.Status == s {
			out = append(out, c)
		}
	}
	return out, m.err
}

func (m *memClasses) SetStatus(_ context.Context, id string, s model.ClassStatus) (repository.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return repository.UpdateResult{}, m.err
	}
	for i := range m.classes {
		if m.classes[i].ID == id {
			m.classes[i].Status = s
			return repository.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return repository.UpdateResult{Acknowledged: true}, nil
}

type memCart struct {
	mu    sync.Mutex
	items []model.SelectedClass
	err   error
}

func (m *memCart) Add(_ context.Context, sc model.SelectedClass) (repository.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return repository.InsertResult{}, m.err
	}
	sc.ID = strconv.Itoa(len(m.items) + 1)
	m.items = append(m.items, sc)
	return repository.InsertResult{Acknowledged: true, InsertedID: sc.ID}, nil
}

func (m *memCart) ListByEmail(_ context.Context, email string) ([]model.SelectedClass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SelectedClass
	for _, sc := range m.items {
		if sc.Email == email {
			out = append(out, sc)
		}
	}
	return out, m.err
}

func (m *memCart) DeleteOwned(_ context.Context, id, email string) (repository.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return repository.DeleteResult{}, m.err
	}
	for i, sc := range m.items {
		if sc.ID != id {
			continue
		}
		if sc.Email != email {
			return repository.DeleteResult{}, repository.ErrForbidden
		}
		m.items = append(m.items[:i], m.items[i+1:]...)
		return repository.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
	}
	return repository.DeleteResult{Acknowledged: true}, nil
}

// fakeProcessor records the last intent request.
type fakeProcessor struct {
	amount   int64
	currency string
	calls    int
	err      error
}

func (f *fakeProcessor) CreateIntent(_ context.Context, amount int64, currency string) (payment.Intent, error) {
	f.calls++
	f.amount, f.currency = amount, currency
	if f.err != nil {
		return payment.Intent{}, f.err
	}
	return payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret", Amount: amount, Currency: currency}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev queue.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingPublisher) types() []queue.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]queue.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func newEcho() *echo.Echo {
	e := echo.New()
	log, _ := test.NewNullLogger()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(log)
	return e
}

// call runs h as the authenticated email (empty for anonymous) and renders
// any returned error through the echo error handler.
func call(e *echo.Echo, h echo.HandlerFunc, method, target, body, email string, params ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if email != "" {
		c.Set(middleware.ContextEmail, email)
	}
	if len(params) > 0 {
		var names, values []string
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}
