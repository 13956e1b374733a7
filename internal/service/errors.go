package service

import (
	"errors"
	"fmt"
	"strings"
)

// OpError names the pipeline step that failed and keeps its cause.
type OpError struct {
	Desc string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s failed", e.Desc)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// DanglingRecordError marks a submission that started a record on the
// server but could not finish it. The record stays there in its started
// state; there is no rollback call in the protocol.
type DanglingRecordError struct {
	RecordID string
	Err      error
}

func (e *DanglingRecordError) Error() string {
	return fmt.Sprintf("record '%s' was started but not finished", e.RecordID)
}

func (e *DanglingRecordError) Unwrap() error {
	return e.Err
}

// hinter is implemented by errors that carry a user-facing suggestion
// beyond their own message.
type hinter interface {
	Hint() string
}

// Explain renders an error chain as a single human-readable sentence:
// "uploading exercise record failed, because checking token failed,
// because ...". Hints attached anywhere in the chain are appended in
// parentheses.
func Explain(err error) string {
	if err == nil {
		return ""
	}

	var parts []string
	var hints []string
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		msg := cur.Error()
		if next := errors.Unwrap(cur); next != nil {
			// fmt.Errorf wrapping repeats the cause's text; strip it so
			// each link contributes only its own words
			msg = strings.TrimSuffix(msg, next.Error())
			msg = strings.TrimSuffix(strings.TrimSpace(msg), ":")
		}
		if msg != "" {
			parts = append(parts, msg)
		}
		if h, ok := cur.(hinter); ok {
			if hint := h.Hint(); hint != "" {
				hints = append(hints, hint)
			}
		}
	}

	out := strings.Join(parts, ", because ")
	if len(hints) > 0 {
		out += " (" + strings.Join(hints, "; ") + ")"
	}
	return out
}
