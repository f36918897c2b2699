package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"geofence-attendance/internal/adapter/middleware"
	domainEmployee "geofence-attendance/internal/domain/employee"
	domain "geofence-attendance/internal/domain/geofence"
	"geofence-attendance/internal/domain/uow"
	"geofence-attendance/internal/testutil/employeemock"
	"geofence-attendance/internal/testutil/eventmock"
	"geofence-attendance/internal/testutil/policymock"
	"geofence-attendance/internal/testutil/uowmock"
	ucGeofence "geofence-attendance/internal/usecase/geofence"
	ucPolicy "geofence-attendance/internal/usecase/policy"
	"geofence-attendance/pkg/geo"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const secret = "handler-test-secret"

var clock = time.Date(2025, 9, 8, 10, 0, 0, 0, time.UTC)

// eventStore is a tiny in-memory EventRepository honouring scope filters.
type eventStore struct {
	mu   sync.Mutex
	rows []domain.Event
}

func (s *eventStore) repo() *eventmock.Repo {
	find := func(id string) int {
		for i := range s.rows {
			if s.rows[i].EventID == id {
				return i
			}
		}
		return -1
	}
	return &eventmock.Repo{
		CreateFn: func(_ context.Context, e *domain.Event) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			e.ID = uint64(len(s.rows) + 1)
			s.rows = append(s.rows, *e)
			return nil
		},
		GetByEventIDFn: func(_ context.Context, id string) (*domain.Event, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if i := find(id); i >= 0 {
				e := s.rows[i]
				return &e, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		ListFn: func(_ context.Context, f domain.EventFilter) ([]domain.Event, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []domain.Event
			for _, e := range s.rows {
				switch {
				case f.EventID != "" && e.EventID != f.EventID,
					f.EmployeeID != "" && e.EmployeeID != f.EmployeeID,
					f.DepartmentID != "" && e.DepartmentID != f.DepartmentID,
					f.ApprovalStatus != "" && (e.ApprovalStatus == nil || *e.ApprovalStatus != f.ApprovalStatus):
					continue
				}
				out = append(out, e)
			}
			sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
			if f.Limit > 0 && len(out) > f.Limit {
				out = out[:f.Limit]
			}
			return out, nil
		},
		TransitionApprovalFn: func(_ context.Context, id string, r domain.Review) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			i := find(id)
			if i < 0 || s.rows[i].ApprovalStatus == nil || *s.rows[i].ApprovalStatus != domain.StatusPending {
				return domain.ErrNotPending
			}
			st, by, at := r.Status, r.ReviewedBy, r.ReviewedAt
			s.rows[i].ApprovalStatus, s.rows[i].ApprovalReviewedBy, s.rows[i].ApprovalReviewedAt = &st, &by, &at
			return nil
		},
	}
}

type testServer struct {
	e        *echo.Echo
	store    *eventStore
	policies *policymock.Repo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, nil)
}

// newTestServerWith wires the submit route through the replay middleware
// when idem is non-nil, as cmd/api does.
func newTestServerWith(t *testing.T, idem echo.MiddlewareFunc) *testServer {
	t.Helper()
	store := &eventStore{}
	events := store.repo()
	stored := domain.Policy{
		ID: domain.PolicyID, Enabled: true, Center: geo.Point{}, RadiusMeters: 100,
		WorkStart: 540, WorkEnd: 1080, RequireApproval: true,
	}
	policies := &policymock.Repo{
		GetFn:  func(context.Context) (*domain.Policy, error) { p := stored; return &p, nil },
		SaveFn: func(_ context.Context, p *domain.Policy) error { stored = *p; return nil },
	}
	employees := employeemock.Directory(
		domainEmployee.Employee{EmployeeID: "emp-ana", UserID: "u-ana", DepartmentID: "dep-ops", ReportingManagerID: "emp-mia"},
		domainEmployee.Employee{EmployeeID: "emp-ben", UserID: "u-ben", DepartmentID: "dep-sales"},
		domainEmployee.Employee{EmployeeID: "emp-mia", UserID: "u-mia", DepartmentID: "dep-ops"},
		domainEmployee.Employee{EmployeeID: "emp-sam", UserID: "u-sam", DepartmentID: "dep-sales"},
	)
	tx := uowmock.Passthrough(uow.Repos{Events: events})
	eval := domain.NewEvaluator(time.UTC)
	eval.Now = func() time.Time { return clock }

	e := echo.New()
	e.Validator = NewValidator()
	Router{
		Health:      NewHandler(),
		Geofence:    NewGeofenceHandler(ucGeofence.NewUsecase(events, policies, employees, tx, eval)),
		Policy:      NewPolicyHandler(ucPolicy.NewUsecase(policies)),
		JWTSecret:   secret,
		Idempotency: idem,
	}.Register(e)
	return &testServer{e: e, store: store, policies: policies}
}

func (s *testServer) do(t *testing.T, method, path, uid string, role domain.Role, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("User-Agent", "talio-android/3.1")
	if uid != "" {
		tok, err := middleware.IssueToken(secret, uid, role, time.Hour)
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("bad json %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestSubmitEvent(t *testing.T) {
	tests := []struct {
		name     string
		uid      string
		body     any
		wantCode int
		wantErr  string
		check    func(t *testing.T, res ucGeofence.SubmitResult)
	}{
		{
			name:     "inside",
			uid:      "u-ana",
			body:     map[string]any{"latitude": 0.0001, "longitude": 0, "accuracy": 8},
			wantCode: stdhttp.StatusCreated,
			check: func(t *testing.T, res ucGeofence.SubmitResult) {
				if !res.IsWithinGeofence || res.DistanceMeters != 11 || res.RequiresApproval {
					t.Fatalf("unexpected verdict: %+v", res)
				}
				if res.Event.EventType != "entry" || res.Event.Location.AccuracyMeters == nil {
					t.Fatalf("unexpected event: %+v", res.Event)
				}
			},
		},
		{
			name:     "outside with reason",
			uid:      "u-ana",
			body:     map[string]any{"latitude": 0.01, "longitude": 0, "reason": "client visit"},
			wantCode: stdhttp.StatusCreated,
			check: func(t *testing.T, res ucGeofence.SubmitResult) {
				if res.IsWithinGeofence || !res.RequiresApproval || res.Event.ApprovalRequest == nil {
					t.Fatalf("unexpected verdict: %+v", res)
				}
				if res.Event.ApprovalRequest.Status != domain.StatusPending {
					t.Fatalf("status = %s", res.Event.ApprovalRequest.Status)
				}
			},
		},
		{name: "missing longitude", uid: "u-ana", body: map[string]any{"latitude": 1}, wantCode: stdhttp.StatusUnprocessableEntity, wantErr: "invalid_input"},
		{name: "bad json", uid: "u-ana", body: "not-an-object", wantCode: stdhttp.StatusBadRequest, wantErr: "bad_request"},
		{name: "no employee record", uid: "u-ghost", body: map[string]any{"latitude": 0, "longitude": 0}, wantCode: stdhttp.StatusNotFound, wantErr: "employee_not_found"},
		{name: "unauthenticated", body: map[string]any{"latitude": 0, "longitude": 0}, wantCode: stdhttp.StatusUnauthorized, wantErr: "unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(t, stdhttp.MethodPost, "/api/v1/geofence/events", tt.uid, domain.RoleEmployee, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body=%s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr != "" {
				if got := decode[ErrorResponse](t, rec); got.Code != tt.wantErr {
					t.Fatalf("code = %q, want %q", got.Code, tt.wantErr)
				}
				if len(s.store.rows) != 0 {
					t.Fatalf("nothing must be stored on failure")
				}
				return
			}
			tt.check(t, decode[ucGeofence.SubmitResult](t, rec))
			if ua := s.store.rows[0].UserAgent; ua != "talio-android/3.1" {
				t.Fatalf("user agent = %q", ua)
			}
		})
	}
}

func TestSubmitEvent_PolicyDisabled(t *testing.T) {
	s := newTestServer(t)
	s.policies.GetFn = func(context.Context) (*domain.Policy, error) { return &domain.Policy{ID: domain.PolicyID}, nil }

	rec := s.do(t, stdhttp.MethodPost, "/api/v1/geofence/events", "u-ana", domain.RoleEmployee, map[string]any{"latitude": 0, "longitude": 0})
	if rec.Code != stdhttp.StatusConflict || decode[ErrorResponse](t, rec).Code != "policy_disabled" {
		t.Fatalf("want 409 policy_disabled, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitEvent_StorageDown(t *testing.T) {
	s := newTestServer(t)
	s.policies.GetFn = func(context.Context) (*domain.Policy, error) { return nil, errors.New("dial tcp 10.0.0.5:3306: i/o timeout") }

	rec := s.do(t, stdhttp.MethodPost, "/api/v1/geofence/events", "u-ana", domain.RoleEmployee, map[string]any{"latitude": 0, "longitude": 0})
	if rec.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", rec.Code)
	}
	got := decode[ErrorResponse](t, rec)
	if got.Code != "storage_unavailable" || bytes.Contains(rec.Body.Bytes(), []byte("10.0.0.5")) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func seedEvents(t *testing.T, s *testServer) (anaPending, benPending string) {
	t.Helper()
	rec := s.do(t, stdhttp.MethodPost, "/api/v1/geofence/events", "u-ana", domain.RoleEmployee, map[string]any{"latitude": 0.01, "longitude": 0, "reason": "bank"})
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("seed ana: %d %s", rec.Code, rec.Body.String())
	}
	anaPending = decode[ucGeofence.SubmitResult](t, rec).Event.EventID
	rec = s.do(t, stdhttp.MethodPost, "/api/v1/geofence/events", "u-ben", domain.RoleEmployee, map[string]any{"latitude": 0.01, "longitude": 0, "reason": "lunch"})
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("seed ben: %d %s", rec.Code, rec.Body.String())
	}
	benPending = decode[ucGeofence.SubmitResult](t, rec).Event.EventID
	return anaPending, benPending
}

func TestListEvents_Scope(t *testing.T) {
	s := newTestServer(t)
	ana, ben := seedEvents(t, s)

	tests := []struct {
		name string
		uid  string
		role domain.Role
		path string
		want []string
	}{
		{name: "employee sees only own, even when asking for another", uid: "u-ana", role: domain.RoleEmployee, path: "/api/v1/geofence/events?employee_id=emp-ben", want: []string{ana}},
		{name: "manager sees department", uid: "u-sam", role: domain.RoleManager, path: "/api/v1/geofence/events", want: []string{ben}},
		{name: "hr sees all newest first", uid: "u-hr", role: domain.RoleHR, path: "/api/v1/geofence/events", want: []string{ben, ana}},
		{name: "admin filters by employee", uid: "u-admin", role: domain.RoleAdmin, path: "/api/v1/geofence/events?employee_id=emp-ana&approval_status=pending", want: []string{ana}},
		{name: "limit", uid: "u-admin", role: domain.RoleAdmin, path: "/api/v1/geofence/events?limit=1", want: []string{ben}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, stdhttp.MethodGet, tt.path, tt.uid, tt.role, nil)
			if rec.Code != stdhttp.StatusOK {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
			}
			got := decode[listResponse](t, rec).Data
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].EventID != tt.want[i] {
					t.Fatalf("row %d = %s, want %s", i, got[i].EventID, tt.want[i])
				}
			}
		})
	}

	t.Run("bad limit", func(t *testing.T) {
		rec := s.do(t, stdhttp.MethodGet, "/api/v1/geofence/events?limit=-3", "u-admin", domain.RoleAdmin, nil)
		if rec.Code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("want 422, got %d", rec.Code)
		}
	})
	t.Run("bad status", func(t *testing.T) {
		rec := s.do(t, stdhttp.MethodGet, "/api/v1/geofence/events?approval_status=maybe", "u-admin", domain.RoleAdmin, nil)
		if rec.Code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("want 422, got %d", rec.Code)
		}
	})
}

func TestGetEvent_Scope(t *testing.T) {
	s := newTestServer(t)
	ana, ben := seedEvents(t, s)

	if rec := s.do(t, stdhttp.MethodGet, "/api/v1/geofence/events/"+ana, "u-ana", domain.RoleEmployee, nil); rec.Code != stdhttp.StatusOK {
		t.Fatalf("own event: want 200, got %d", rec.Code)
	}
	if rec := s.do(t, stdhttp.MethodGet, "/api/v1/geofence/events/"+ben, "u-ana", domain.RoleEmployee, nil); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("foreign event: want 404, got %d", rec.Code)
	}
	if rec := s.do(t, stdhttp.MethodGet, "/api/v1/geofence/events/nope", "u-admin", domain.RoleAdmin, nil); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("malformed id: want 404, got %d", rec.Code)
	}
}

func TestReviewEvent(t *testing.T) {
	s := newTestServer(t)
	ana, ben := seedEvents(t, s)
	path := func(id string) string { return "/api/v1/geofence/events/" + id + "/review" }

	rec := s.do(t, stdhttp.MethodPost, path(ana), "u-ana", domain.RoleEmployee, map[string]string{"decision": "approved"})
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("employee review: want 403, got %d", rec.Code)
	}

	rec = s.do(t, stdhttp.MethodPost, path(ben), "u-mia", domain.RoleManager, map[string]string{"decision": "approved"})
	if rec.Code != stdhttp.StatusForbidden || decode[ErrorResponse](t, rec).Code != "forbidden" {
		t.Fatalf("other department: want 403 forbidden, got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, stdhttp.MethodPost, path(ana), "u-mia", domain.RoleManager, map[string]string{"decision": "maybe"})
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("bad decision: want 422, got %d", rec.Code)
	}

	rec = s.do(t, stdhttp.MethodPost, path(ana), "u-mia", domain.RoleManager, map[string]string{"decision": "approved"})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("review: want 200, got %d %s", rec.Code, rec.Body.String())
	}
	dto := decode[ucGeofence.EventDTO](t, rec)
	if dto.ApprovalRequest == nil || dto.ApprovalRequest.Status != domain.StatusApproved || dto.ApprovalRequest.ReviewedBy != "u-mia" {
		t.Fatalf("unexpected approval: %+v", dto.ApprovalRequest)
	}

	rec = s.do(t, stdhttp.MethodPost, path(ana), "u-hr", domain.RoleHR, map[string]string{"decision": "rejected"})
	if rec.Code != stdhttp.StatusConflict || decode[ErrorResponse](t, rec).Code != "not_pending" {
		t.Fatalf("second review: want 409 not_pending, got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, stdhttp.MethodPost, path("ffffffffffffffffffffffffffffffff"), "u-hr", domain.RoleHR, map[string]string{"decision": "rejected"})
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("unknown event: want 404, got %d", rec.Code)
	}
}

func TestReviewEvent_MalformedEventID(t *testing.T) {
	s := newTestServer(t)
	for _, id := range []string{"nope", strings.ToUpper("ffffffffffffffffffffffffffffffff"), "ffffffff-ffff-ffff-ffff-ffffffffffff"} {
		rec := s.do(t, stdhttp.MethodPost, "/api/v1/geofence/events/"+id+"/review", "u-hr", domain.RoleHR, map[string]string{"decision": "approved"})
		if rec.Code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("%s: want 422, got %d %s", id, rec.Code, rec.Body.String())
		}
		resp := decode[ErrorResponse](t, rec)
		if resp.Code != "invalid_input" || !containsFieldMsg(resp.Details, "event_id", "32") {
			t.Fatalf("%s: unexpected error body %+v", id, resp)
		}
	}
}

func TestPendingApprovals(t *testing.T) {
	s := newTestServer(t)
	_, ben := seedEvents(t, s)

	if rec := s.do(t, stdhttp.MethodGet, "/api/v1/geofence/approvals/pending", "u-ana", domain.RoleEmployee, nil); rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("employee: want 403, got %d", rec.Code)
	}
	rec := s.do(t, stdhttp.MethodGet, "/api/v1/geofence/approvals/pending", "u-sam", domain.RoleManager, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("manager: want 200, got %d", rec.Code)
	}
	got := decode[listResponse](t, rec).Data
	if len(got) != 1 || got[0].EventID != ben {
		t.Fatalf("unexpected queue: %+v", got)
	}
}
