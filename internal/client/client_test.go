package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/stats"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(zerolog.Nop(), Options{BaseURL: srv.URL + "/", Token: "tok"})
}

func TestListTasksSendsTokenAndFilters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		q := r.URL.Query()
		if q.Get("workspace_id") != "ws-1" || q.Get("completed") != "false" || q.Get("assignment") != "" {
			t.Errorf("query = %v", q)
		}
		_ = json.NewEncoder(w).Encode([]models.Task{{ID: "t-1", Title: "Read"}})
	})

	completed := false
	tasks, err := c.ListTasks(context.Background(), TaskQuery{WorkspaceID: "ws-1", Completed: &completed})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t-1" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestCreateTaskPostsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body NewTask
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Title != "Essay" || body.Deadline != "2024-03-10" || body.Assignment != "History" {
			t.Errorf("body = %+v", body)
		}
		if body.Timezone == "" {
			t.Error("new tasks should carry the client timezone")
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.Task{ID: "t-2", Title: body.Title, Assignment: body.Assignment})
	})

	deadline := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	task, err := c.CreateTask(context.Background(), NewTaskFrom(models.Task{
		Title:      "Essay",
		Assignment: "History",
		Deadline:   &deadline,
	}))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID != "t-2" {
		t.Errorf("task = %+v", task)
	}
}

func TestSetTaskCompletedPaths(t *testing.T) {
	tests := []struct {
		completed bool
		path      string
	}{
		{true, "/api/tasks/t-1/complete"},
		{false, "/api/tasks/t-1/incomplete"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut || r.URL.Path != tt.path {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				_ = json.NewEncoder(w).Encode(models.Task{ID: "t-1", Completed: tt.completed})
			})
			task, err := c.SetTaskCompleted(context.Background(), "t-1", tt.completed)
			if err != nil {
				t.Fatalf("SetTaskCompleted: %v", err)
			}
			if task.Completed != tt.completed {
				t.Errorf("completed = %v", task.Completed)
			}
		})
	}
}

func TestErrorsMapToSentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusConflict, ErrConflict},
		{http.StatusServiceUnavailable, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			})
			err := c.DeleteTask(context.Background(), "t-1")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Message != "nope" {
				t.Errorf("api error = %+v", apiErr)
			}
		})
	}
}

func TestServerErrorHasNoSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := c.DeleteLap(context.Background(), "l-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("500 must not unwrap to ErrNotFound")
	}
}

func TestLoginKeepsAccessToken(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Path {
		case "/api/auth/login":
			_ = json.NewEncoder(w).Encode(LoginResult{UserID: "u-1", AccessToken: "fresh"})
		case "/api/workspaces":
			if got := r.Header.Get("Authorization"); got != "Bearer fresh" {
				t.Errorf("Authorization = %q", got)
			}
			_ = json.NewEncoder(w).Encode([]models.Workspace{})
		}
	})

	if _, err := c.Login(context.Background(), "a@b.c", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := c.ListWorkspaces(context.Background()); err != nil {
		t.Fatalf("ListWorkspaces: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d", calls)
	}
}

func TestStatsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("window") != "month" || q.Get("offset") != "-1" {
			t.Errorf("query = %v", q)
		}
		_ = json.NewEncoder(w).Encode(stats.Summary{Window: stats.KindMonth, Offset: -1, TotalMinutes: 42})
	})

	summary, err := c.Stats(context.Background(), stats.Window{Kind: stats.KindMonth, Offset: -1}, "")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if summary.TotalMinutes != 42 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestGetPreferencesFallsBackOnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	prefs, err := c.GetPreferences(context.Background(), "ws-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if prefs.WorkspaceID != "ws-1" || prefs.Sort == nil {
		t.Errorf("prefs = %+v", prefs)
	}
}

func TestStreamLapsReadsEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/laps/stream" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event:ready\ndata:{\"user_id\":\"u-1\"}\n\n: comment\n\nevent: lap.created\ndata: {\"id\":\"l-1\"}\n\n"))
	})

	var got []StreamEvent
	err := c.StreamLaps(context.Background(), func(e StreamEvent) {
		got = append(got, e)
	})
	if err != nil {
		t.Fatalf("StreamLaps: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("events = %+v", got)
	}
	if got[0].Name != "ready" || got[1].Name != "lap.created" || string(got[1].Data) != `{"id":"l-1"}` {
		t.Errorf("events = %+v", got)
	}
}

func TestSessions(t *testing.T) {
	var revoked string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/auth/sessions":
			_, _ = w.Write([]byte(`{"sessions":[{"id":"s1","current":true},{"id":"s2"}]}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/auth/sessions/s2":
			revoked = "s2"
			_, _ = w.Write([]byte(`{"id":"s2"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"session not found"}`))
		}
	})

	sessions, err := c.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 || !sessions[0].Current || sessions[1].Current {
		t.Errorf("sessions = %+v", sessions)
	}

	if err := c.RevokeSession(context.Background(), "s2"); err != nil || revoked != "s2" {
		t.Errorf("RevokeSession: err = %v, revoked = %q", err, revoked)
	}
	if err := c.RevokeSession(context.Background(), "s9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RevokeSession missing: err = %v", err)
	}
}
