package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/models"
)

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain array",
			input: `[{"task": "Read chapter 3", "subject": "History"}]`,
			want:  []string{"Read chapter 3"},
		},
		{
			name:  "fenced",
			input: "```json\n[{\"task\": \"Lab report\"}, {\"task\": \"Quiz prep\"}]\n```",
			want:  []string{"Lab report", "Quiz prep"},
		},
		{
			name:  "surrounded by prose",
			input: "Sure! Here you go:\n[{\"task\": \"Essay [draft]\"}]\nGood luck.",
			want:  []string{"Essay [draft]"},
		},
		{
			name:  "smart quotes",
			input: `[{“task”: “Flashcards”, “description”: “Don’t skip verbs”}]`,
			want:  []string{"Flashcards"},
		},
		{
			name:  "single quotes and trailing commas",
			input: `Result: [{'task': 'Problem set 4', 'difficulty': 'hard',},]`,
			want:  []string{"Problem set 4"},
		},
		{
			name:  "wrapped object",
			input: `{"tasks": [{"task": "Revise notes"}]}`,
			want:  []string{"Revise notes"},
		},
		{
			name:  "empty titles dropped",
			input: `[{"task": "  "}, {"task": "Real one"}]`,
			want:  []string{"Real one"},
		},
		{
			name:  "bracketed aside before the list",
			input: "Here are the tasks [as requested]:\n[{\"task\":\"Read ch. 3\",\"subject\":\"Math\"}]",
			want:  []string{"Read ch. 3"},
		},
		{
			name:  "empty list before the real one",
			input: "Previously: []\nNow: [{'task': 'Outline essay',}]",
			want:  []string{"Outline essay"},
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCandidates(tt.input)
			if err != nil {
				t.Fatalf("ParseCandidates() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d candidates, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i].Task != tt.want[i] {
					t.Errorf("candidate %d = %q, want %q", i, got[i].Task, tt.want[i])
				}
			}
		})
	}
}

func TestParseCandidatesUnparseable(t *testing.T) {
	for _, input := range []string{
		"",
		"I can't help with that.",
		"[{\"task\": \"unterminated\"",
		`{"task": "not a list"}`,
	} {
		if _, err := ParseCandidates(input); !errors.Is(err, ErrUnparseable) {
			t.Errorf("ParseCandidates(%q) error = %v, want ErrUnparseable", input, err)
		}
	}
}

func TestRepairJSONKeepsApostrophesInDoubleQuotes(t *testing.T) {
	got := repairJSON(`["it's fine",]`)
	if got != `["it's fine"]` {
		t.Errorf("repairJSON() = %s", got)
	}
}

func TestCandidateToTask(t *testing.T) {
	c := Candidate{
		Task:        " Study for midterm ",
		Description: "Chapters 1-4",
		Date:        "2024-03-10",
		Subject:     "Biology",
		Difficulty:  "Hard",
	}
	task := c.ToTask(time.UTC)

	if task.Title != "Study for midterm" || task.Assignment != "Biology" {
		t.Errorf("task = %+v", task)
	}
	if task.Difficulty != models.DifficultyHard {
		t.Errorf("difficulty = %q", task.Difficulty)
	}
	if task.Deadline == nil || !task.Deadline.Equal(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("deadline = %v", task.Deadline)
	}

	bad := Candidate{Task: "x", Date: "next week", Difficulty: "brutal"}.ToTask(nil)
	if bad.Deadline != nil || bad.Difficulty != "" {
		t.Errorf("invalid fields should be dropped: %+v", bad)
	}
}

func TestLoadPrompts(t *testing.T) {
	p, err := LoadPrompts()
	if err != nil {
		t.Fatalf("LoadPrompts() error = %v", err)
	}
	system, user := p.TaskGeneration.Render(map[string]string{
		"date":     "2024-03-06",
		"timezone": "Europe/Berlin",
		"prompt":   "essay due friday",
	})
	if !strings.Contains(system, "2024-03-06") || !strings.Contains(system, "Europe/Berlin") {
		t.Errorf("system prompt not rendered: %s", system)
	}
	if user != "essay due friday" {
		t.Errorf("user prompt = %q", user)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(zerolog.Nop(), Options{
		APIURL: srv.URL,
		APIKey: "key",
		Model:  "model",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestGenerate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "model" || len(req.Messages) != 1 || req.Messages[0].Content != "two essays" {
			t.Errorf("unexpected request: %+v", req)
		}
		if !strings.Contains(req.System, "2024-03-06") {
			t.Errorf("system prompt lacks the date: %s", req.System)
		}
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "` +
			"```json\\n[{\\\"task\\\": \\\"Essay A\\\"}, {\\\"task\\\": \\\"Essay B\\\"}]\\n```" +
			`"}], "stop_reason": "end_turn"}`))
	})

	now := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC)
	got, err := c.Generate(context.Background(), "two essays", now, time.UTC)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 2 || got[1].Task != "Essay B" {
		t.Errorf("Generate() = %+v", got)
	}
}

func TestGenerateUnparseableReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "no idea"}]}`))
	})

	_, err := c.Generate(context.Background(), "anything", time.Now(), nil)
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("Generate() error = %v, want ErrUnparseable", err)
	}
}

func TestGenerateAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := c.Generate(context.Background(), "anything", time.Now(), nil)
	if err == nil || errors.Is(err, ErrUnparseable) {
		t.Errorf("Generate() error = %v, want an api error", err)
	}
}

func TestGenerateNotConfigured(t *testing.T) {
	c, err := New(zerolog.Nop(), Options{APIURL: "http://example.invalid"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err = c.Generate(context.Background(), "x", time.Now(), nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Generate() error = %v, want ErrNotConfigured", err)
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("api must not be called")
	})
	if _, err := c.Generate(context.Background(), "   ", time.Now(), nil); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("Generate() error = %v, want ErrEmptyPrompt", err)
	}
}
