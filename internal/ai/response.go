package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
)

// Intent is the resolved model result. It is either an UpdateIntent or a
// CreateIntent.
type Intent interface {
	Action() Action
}

// UpdateIntent augments an open task that the model matched by id.
type UpdateIntent struct {
	MatchedTaskID string
	Roadmap       string
	Suggestion    string
}

func (UpdateIntent) Action() Action { return ActionUpdate }

// CreateIntent describes a brand-new task. Priority and DueDate are passed
// through as the model wrote them; the caller normalizes them.
type CreateIntent struct {
	Title       string
	Description string
	Priority    string
	DueDate     string
	Suggestion  string
	Roadmap     string
}

func (CreateIntent) Action() Action { return ActionCreate }

var ErrMalformedOutput = errors.New("malformed model output")

// MalformedOutputError keeps the raw completion for server-side diagnosis.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return "malformed model output: " + e.Err.Error()
}

func (e *MalformedOutputError) Unwrap() []error {
	return []error{ErrMalformedOutput, e.Err}
}

type rawIntent struct {
	Action        string  `json:"action"`
	MatchedTaskID string  `json:"matchedTaskId"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Priority      string  `json:"priority"`
	DueDate       *string `json:"dueDate"`
	Suggestion    string  `json:"suggestion"`
	Roadmap       string  `json:"roadmap"`
}

// StripCodeFence removes a leading ``` or ```json marker and a trailing ```
// around the payload. Text without fences is returned trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseIntent validates a raw completion and resolves it to an Intent.
// An UPDATE without a matchedTaskId, a missing action, or any unrecognized
// action resolves to CREATE. A CREATE without a title is malformed.
func ParseIntent(raw string) (Intent, error) {
	payload := StripCodeFence(raw)

	var r rawIntent
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		// tolerate prose around a single object
		obj, ok := outermostObject(payload)
		if !ok {
			return nil, &MalformedOutputError{Raw: raw, Err: err}
		}
		if err := json.Unmarshal([]byte(obj), &r); err != nil {
			return nil, &MalformedOutputError{Raw: raw, Err: err}
		}
	}

	action := Action(strings.ToUpper(strings.TrimSpace(r.Action)))
	matched := strings.TrimSpace(r.MatchedTaskID)

	if action == ActionUpdate && matched != "" {
		return UpdateIntent{
			MatchedTaskID: matched,
			Roadmap:       strings.TrimSpace(r.Roadmap),
			Suggestion:    strings.TrimSpace(r.Suggestion),
		}, nil
	}

	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil, &MalformedOutputError{Raw: raw, Err: errors.New("create result has no title")}
	}

	c := CreateIntent{
		Title:       title,
		Description: strings.TrimSpace(r.Description),
		Priority:    strings.TrimSpace(r.Priority),
		Suggestion:  strings.TrimSpace(r.Suggestion),
		Roadmap:     strings.TrimSpace(r.Roadmap),
	}
	if r.DueDate != nil {
		c.DueDate = strings.TrimSpace(*r.DueDate)
	}
	return c, nil
}

func outermostObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
