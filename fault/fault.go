package fault

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Fault is a structured dispatch error.
//
// Code is a stable machine-readable identifier ("timeout", "no-handler");
// two Faults compare equal under errors.Is when their codes match. Details
// hold free-form context for the operator-facing rendering.
type Fault struct {
	Code    string
	Message string
	Plugin  string
	Details map[string]any
	cause   error
}

// New creates a Fault with the given code and message.
func New(code, msg string) *Fault {
	return &Fault{Code: code, Message: msg}
}

// Newf creates a Fault with a formatted message.
func Newf(code, format string, args ...any) *Fault {
	return &Fault{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a Fault around an underlying error. The cause participates in
// errors.Is/errors.As chains via Unwrap.
func Wrap(err error, code, msg string) *Fault {
	return &Fault{Code: code, Message: msg, cause: err}
}

// WithPlugin records the plugin key the fault originated in.
func (f *Fault) WithPlugin(key string) *Fault {
	f.Plugin = key
	return f
}

// WithDetail attaches one key/value pair of context.
func (f *Fault) WithDetail(key string, value any) *Fault {
	if f.Details == nil {
		f.Details = make(map[string]any)
	}
	f.Details[key] = value
	return f
}

func (f *Fault) Error() string {
	s := f.Code + ": " + f.Message
	if f.cause != nil {
		s += ": " + f.cause.Error()
	}
	return s
}

func (f *Fault) Unwrap() error { return f.cause }

// Is matches any *Fault with the same code, so callers can test against a
// sentinel like fault.New("timeout", "") without comparing messages.
func (f *Fault) Is(target error) bool {
	var t *Fault
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == f.Code
}

// MarshalJSON renders the fault for transport surfaces. The cause is
// flattened to its message.
func (f *Fault) MarshalJSON() ([]byte, error) {
	out := struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Plugin  string         `json:"plugin,omitempty"`
		Details map[string]any `json:"details,omitempty"`
		Cause   string         `json:"cause,omitempty"`
	}{
		Code:    f.Code,
		Message: f.Message,
		Plugin:  f.Plugin,
		Details: f.Details,
	}
	if f.cause != nil {
		out.Cause = f.cause.Error()
	}
	return json.Marshal(out)
}

// Format renders err as a single operator-facing line. Faults render as
// "code: message (plugin key=value ...)" with details sorted by key; other
// errors fall back to their Error string. A nil err renders empty.
func Format(err error) string {
	if err == nil {
		return ""
	}

	var f *Fault
	if !errors.As(err, &f) {
		return err.Error()
	}

	var b strings.Builder
	b.WriteString(f.Error())

	var parts []string
	if f.Plugin != "" {
		parts = append(parts, "plugin="+f.Plugin)
	}
	keys := make([]string, 0, len(f.Details))
	for k := range f.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, f.Details[k]))
	}

	if len(parts) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, " "))
		b.WriteString(")")
	}
	return b.String()
}
