package idmsa

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind enumerates every way an authentication attempt can fail. The
// set is closed; callers map each kind to user-facing behaviour and decide
// whether to restart from Unauthenticated or re-enter a specific step.
type ErrorKind int

const (
	ErrorInvalidSession ErrorKind = iota
	ErrorInvalidHashcash
	ErrorInvalidUsernameOrPassword
	ErrorIncorrectSecurityCode
	ErrorUnexpectedSignInResponse
	ErrorPrivacyAcknowledgementRequired
	ErrorTwoStepAuthentication
	ErrorUnknownAuthenticationKind
	ErrorAccountLocked
	ErrorBadStatusCode
	ErrorNotDeveloperAppleID
	ErrorNotAuthorized
	ErrorInvalidResult
	ErrorInvalidSRPPublicKey
	ErrorUserCancelledSecurityKey
	ErrorMissingSessionHeaders
)

// AuthError is a typed authentication failure. Kind is always set; the
// remaining fields carry the diagnostics relevant to that kind.
type AuthError struct {
	Kind       ErrorKind
	Username   string
	Message    string
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case ErrorInvalidSession:
		return "your authentication session is invalid, try signing in again"
	case ErrorInvalidHashcash:
		return "could not create a hashcash for the session"
	case ErrorInvalidUsernameOrPassword:
		return fmt.Sprintf("invalid username and password combination for %q", e.Username)
	case ErrorIncorrectSecurityCode:
		return "the code that was entered is incorrect"
	case ErrorUnexpectedSignInResponse:
		if e.Message != "" {
			return fmt.Sprintf("received an unexpected sign in response (status %d): %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("received an unexpected sign in response (status %d)", e.StatusCode)
	case ErrorPrivacyAcknowledgementRequired:
		return "you must sign in to https://appstoreconnect.apple.com and acknowledge the Apple ID & Privacy agreement"
	case ErrorTwoStepAuthentication:
		return "this account has two-step authentication enabled; only two-factor authentication is supported"
	case ErrorUnknownAuthenticationKind:
		if e.Message != "" {
			return fmt.Sprintf("this account requires an authentication kind that is not supported: %s", e.Message)
		}
		return "this account requires an authentication kind that is not supported"
	case ErrorAccountLocked:
		return e.Message
	case ErrorBadStatusCode:
		return fmt.Sprintf("received an unexpected status code: %d", e.StatusCode)
	case ErrorNotDeveloperAppleID:
		return "you are not registered as an Apple Developer, visit https://developer.apple.com/register/"
	case ErrorNotAuthorized:
		return "you are not authorized, sign in with your Apple ID first"
	case ErrorInvalidResult:
		if e.Message != "" {
			return e.Message
		}
		return "received a result payload that could not be parsed"
	case ErrorInvalidSRPPublicKey:
		return "invalid SRP public key"
	case ErrorUserCancelledSecurityKey:
		return "user cancelled security key authorization"
	case ErrorMissingSessionHeaders:
		return "sign in response did not carry the session correlation headers"
	default:
		return fmt.Sprintf("authentication error (kind %d)", e.Kind)
	}
}

// AuthErrorKind extracts the kind of err; ok is false when err is not an
// AuthError.
func AuthErrorKind(err error) (ErrorKind, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind, true
	}
	return 0, false
}
