package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport layer can pick a status code
// without inspecting error text.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindAmbiguous
	KindConflict
	KindInvalid
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAmbiguous:
		return "ambiguous"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid_argument"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Candidate is one printing offered back to the caller when a card name
// resolves to more than one printing.
type Candidate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SetCode  string `json:"set_code"`
	ImageURL string `json:"image_url,omitempty"`
}

type Error struct {
	Kind       Kind
	Msg        string
	Candidates []Candidate
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalid, Msg: fmt.Sprintf(format, args...)}
}

// Ambiguous reports a name that matched several printings. The candidate
// list lets the caller retry with a set qualifier.
func Ambiguous(msg string, candidates []Candidate) *Error {
	return &Error{Kind: KindAmbiguous, Msg: msg, Candidates: candidates}
}

func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf returns the kind carried by err, or KindInternal for errors that
// did not come out of this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool  { return KindOf(err) == KindNotFound }
func IsAmbiguous(err error) bool { return KindOf(err) == KindAmbiguous }
func IsConflict(err error) bool  { return KindOf(err) == KindConflict }

// CandidatesOf returns the candidate printings attached to an ambiguous
// resolution, or nil.
func CandidatesOf(err error) []Candidate {
	var e *Error
	if errors.As(err, &e) {
		return e.Candidates
	}
	return nil
}
