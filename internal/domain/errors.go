package domain

import "errors"

// Code is a machine-readable error code surfaced verbatim in acknowledgments.
type Code string

const (
	// Authorization errors
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeNotHost         Code = "NOT_HOST"
	CodeMissingPassword Code = "MISSING_PASSWORD"
	CodeInvalidPassword Code = "INVALID_PASSWORD"

	// Not-found errors
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"
	CodeNoSession       Code = "NO_SESSION"

	// Precondition errors
	CodeNoGame             Code = "NO_GAME"
	CodeQuestionInProgress Code = "QUESTION_IN_PROGRESS"
	CodeNoMoreQuestions    Code = "NO_MORE_QUESTIONS"
	CodeNoActiveQuestion   Code = "NO_ACTIVE_QUESTION"
	CodeAlreadyAnswered    Code = "ALREADY_ANSWERED"
	CodeNotAllowed         Code = "NOT_ALLOWED"
	CodeNotAvailable       Code = "NOT_AVAILABLE"
	CodeNoPlayer           Code = "NO_PLAYER"
	CodeRoomFull           Code = "ROOM_FULL"
	CodeInvalidState       Code = "INVALID_STATE"

	// Validation errors
	CodeInvalidGame    Code = "INVALID_GAME"
	CodeInvalidPayload Code = "INVALID_PAYLOAD"
	CodeUnknownType    Code = "UNKNOWN_TYPE"

	CodeInternal Code = "INTERNAL"
)

// Error is the engine error type carrying a code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates an error with a code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError creates an error with a code that wraps cause.
func WrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code of err; errors without a code map to INTERNAL.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

var (
	ErrUnauthorized       = NewError(CodeUnauthorized, "connection is not an authorized host")
	ErrNotHost            = NewError(CodeNotHost, "connection does not host this session")
	ErrMissingPassword    = NewError(CodeMissingPassword, "host secret missing")
	ErrInvalidPassword    = NewError(CodeInvalidPassword, "host secret rejected")
	ErrSessionNotFound    = NewError(CodeSessionNotFound, "quiz session not found")
	ErrNoSession          = NewError(CodeNoSession, "no session with that code")
	ErrNoGame             = NewError(CodeNoGame, "no quiz attached")
	ErrQuestionInProgress = NewError(CodeQuestionInProgress, "a question is already open")
	ErrNoMoreQuestions    = NewError(CodeNoMoreQuestions, "no more questions")
	ErrNoActiveQuestion   = NewError(CodeNoActiveQuestion, "no question is open")
	ErrAlreadyAnswered    = NewError(CodeAlreadyAnswered, "answer already recorded for this question")
	ErrNotAllowed         = NewError(CodeNotAllowed, "question is not the open one")
	ErrNotAvailable       = NewError(CodeNotAvailable, "answers are not being accepted")
	ErrNoPlayer           = NewError(CodeNoPlayer, "participant not found in session")
	ErrRoomFull           = NewError(CodeRoomFull, "session is full")
	ErrInvalidState       = NewError(CodeInvalidState, "operation not allowed in current phase")
	ErrInvalidGame        = NewError(CodeInvalidGame, "quiz is malformed")
)
