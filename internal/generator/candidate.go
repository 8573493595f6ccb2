package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/adanyl0v/studyboard/internal/models"
)

// ErrUnparseable is returned when no recovery step yields a task list.
var ErrUnparseable = errors.New("unparseable task suggestions")

// Candidate is a task suggested by the model. It is never stored
// until the user confirms it.
type Candidate struct {
	Task        string `json:"task"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Subject     string `json:"subject"`
	Difficulty  string `json:"difficulty"`
}

// ToTask maps the candidate onto a task draft. A date that does not
// parse as YYYY-MM-DD and an unknown difficulty are dropped.
func (c Candidate) ToTask(loc *time.Location) models.Task {
	if loc == nil {
		loc = time.UTC
	}

	task := models.Task{
		Title:       strings.TrimSpace(c.Task),
		Description: strings.TrimSpace(c.Description),
		Assignment:  strings.TrimSpace(c.Subject),
	}
	if d, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(c.Date), loc); err == nil {
		task.Deadline = &d
	}
	if d, err := models.ParseDifficulty(c.Difficulty); err == nil {
		task.Difficulty = d
	}
	return task
}

// ParseCandidates decodes a model reply, repairing it progressively:
// the raw text, then without markdown fences, then each balanced JSON
// array in turn, then those arrays with quotes and trailing commas
// fixed. An empty list is returned only when no attempt yields tasks.
func ParseCandidates(text string) ([]Candidate, error) {
	text = strings.TrimSpace(text)
	stripped := stripFences(text)
	arrays := extractArrays(stripped)

	attempts := []string{text, stripped}
	attempts = append(attempts, arrays...)
	for _, array := range arrays {
		attempts = append(attempts, repairJSON(array))
	}
	if len(arrays) == 0 {
		attempts = append(attempts, repairJSON(stripped))
	}

	var empty []Candidate
	for _, attempt := range attempts {
		candidates, err := decodeCandidates(attempt)
		if err != nil {
			continue
		}
		if len(candidates) > 0 {
			return candidates, nil
		}
		if empty == nil {
			empty = candidates
		}
	}
	if empty != nil {
		return empty, nil
	}
	return nil, ErrUnparseable
}

func decodeCandidates(s string) ([]Candidate, error) {
	var raw []Candidate
	dec := json.NewDecoder(strings.NewReader(s))
	err := dec.Decode(&raw)
	if err != nil {
		// Some replies wrap the list: {"tasks": [...]}.
		var wrapped struct {
			Tasks []Candidate `json:"tasks"`
		}
		if werr := json.Unmarshal([]byte(s), &wrapped); werr != nil || wrapped.Tasks == nil {
			return nil, err
		}
		raw = wrapped.Tasks
	} else if dec.More() {
		return nil, errors.New("trailing data after array")
	}

	out := make([]Candidate, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c.Task) == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	body := s[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// extractArrays returns every balanced [...] span of s in the order
// of its opening bracket, skipping brackets inside double-quoted
// strings.
func extractArrays(s string) []string {
	var spans []string
	for start := 0; start < len(s); start++ {
		if s[start] != '[' {
			continue
		}
		if end, ok := matchBracket(s, start); ok {
			spans = append(spans, s[start:end+1])
		}
	}
	return spans
}

// matchBracket returns the index of the ']' closing the '[' at start.
func matchBracket(s string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '[':
			depth++
		case ch == ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
	"‘", "'", "’", "'",
)

// repairJSON turns smart quotes into ASCII ones, single-quoted strings
// into double-quoted ones and drops commas before a closing bracket.
func repairJSON(s string) string {
	s = smartQuotes.Replace(s)

	var b bytes.Buffer
	b.Grow(len(s))

	var quote byte
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
				if quote == '\'' && ch == '\'' {
					b.Truncate(b.Len() - 1)
				}
				b.WriteByte(ch)
			case ch == '\\':
				escaped = true
				b.WriteByte(ch)
			case ch == quote:
				quote = 0
				b.WriteByte('"')
			case quote == '\'' && ch == '"':
				b.WriteString(`\"`)
			default:
				b.WriteByte(ch)
			}
			continue
		}

		switch ch {
		case '"', '\'':
			quote = ch
			b.WriteByte('"')
		case ',':
			j := i + 1
			for j < len(s) && strings.IndexByte(" \t\r\n", s[j]) >= 0 {
				j++
			}
			if j < len(s) && (s[j] == ']' || s[j] == '}') {
				continue
			}
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
