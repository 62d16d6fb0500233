package domain

import "errors"

// Error kinds. Every error returned by the services wraps exactly one of
// these so transports can classify it with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInternal         = errors.New("internal server error")
)

// Error is a user-facing failure of a known kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Validation returns a new ErrValidation carrying msg.
func Validation(msg string) error {
	return &Error{kind: ErrValidation, msg: msg}
}

// PermissionDenied returns a new ErrPermissionDenied carrying msg.
func PermissionDenied(msg string) error {
	return &Error{kind: ErrPermissionDenied, msg: msg}
}

// NotFound returns a new ErrNotFound carrying msg.
func NotFound(msg string) error {
	return &Error{kind: ErrNotFound, msg: msg}
}

// Unauthenticated returns a new ErrUnauthenticated carrying msg.
func Unauthenticated(msg string) error {
	return &Error{kind: ErrUnauthenticated, msg: msg}
}

var (
	ErrQuestionNotFound = NotFound("question not found")
	ErrChoiceNotFound   = NotFound("choice not found")
	ErrUserNotFound     = NotFound("user not found")
	ErrVoteNotFound     = NotFound("you have not voted on this question")

	ErrAlreadyVoted         = Validation("You can only vote once per question.")
	ErrDidNotVote           = Validation("You didn't vote for this choice.")
	ErrChoiceNotInQuestion  = Validation("Choice is not related to question.")
	ErrDuplicateChoices     = Validation("The choices must be different.")
	ErrTooFewChoices        = Validation("Too few choices, minimum 2 required.")
	ErrTooManyChoices       = Validation("Too many choices, maximum 10 allowed.")
	ErrCannotDeleteChoice   = Validation("You cannot delete this answer option, otherwise there will be too few of them.")
	ErrUsernameTaken        = Validation("A user with that username already exists.")
	ErrEmailTaken           = Validation("A user with that email address already exists.")
	ErrInvalidCredentials   = Unauthenticated("invalid email or password")
	ErrInvalidToken         = Unauthenticated("invalid or expired token")
	ErrCannotEditQuestion   = PermissionDenied("You can't edit this question.")
	ErrCannotDeleteQuestion = PermissionDenied("You can't delete this question.")
)
