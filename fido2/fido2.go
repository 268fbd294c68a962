// Package fido2 bridges a single hardware security-key assertion into the
// authentication flow. The device transport itself (USB/NFC/BLE) is supplied
// by the caller through the Device interface; this package adds the
// cancellation semantics the login flow needs.
package fido2

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-webauthn/webauthn/protocol"
)

// ErrCanceledByUser reports that Cancel was called while an assertion was
// outstanding.
var ErrCanceledByUser = errors.New("fido2: canceled by user")

// ErrNoDevice reports that no security-key device transport was configured.
var ErrNoDevice = errors.New("fido2: no security key device configured")

// ChallengeArgs carries everything the authenticator needs to sign one
// server challenge.
type ChallengeArgs struct {
	RPID             string
	ValidCredentials []string
	PIN              string
	// Challenge is standard base64; see Base64URLToBase64.
	Challenge string
	Origin    string
}

// Device is the hardware transport collaborator. Assert blocks until the
// authenticator produces an assertion or the cancel channel fires; once
// cancel fires the return values are discarded.
type Device interface {
	Assert(args ChallengeArgs, cancel <-chan struct{}) (*protocol.CredentialAssertionResponse, error)
}

// Bridge runs one cancellable assertion against a Device. A Bridge is
// single-use: RespondToChallenge may be called once, and Cancel aborts it
// from another goroutine.
type Bridge struct {
	device Device

	once   sync.Once
	cancel chan struct{}
}

func NewBridge(device Device) *Bridge {
	return &Bridge{device: device, cancel: make(chan struct{})}
}

// RespondToChallenge asks the device to sign the challenge. It fails with
// ErrCanceledByUser when Cancel is called first, and with ErrNoDevice when
// the bridge has no device; device failures pass through unchanged.
func (b *Bridge) RespondToChallenge(args ChallengeArgs) (*protocol.CredentialAssertionResponse, error) {
	if b.device == nil {
		return nil, ErrNoDevice
	}

	type assertResult struct {
		response *protocol.CredentialAssertionResponse
		err      error
	}
	done := make(chan assertResult, 1)
	go func() {
		response, err := b.device.Assert(args, b.cancel)
		done <- assertResult{response, err}
	}()

	select {
	case <-b.cancel:
		return nil, ErrCanceledByUser
	case result := <-done:
		return result.response, result.err
	}
}

// Cancel aborts the outstanding assertion, if any. Safe to call more than
// once and from any goroutine.
func (b *Bridge) Cancel() {
	b.once.Do(func() { close(b.cancel) })
}

// Base64URLToBase64 rewrites a URL-safe base64 string (the encoding idmsa
// uses for the challenge) into standard base64 with padding.
func Base64URLToBase64(base64url string) string {
	s := strings.ReplaceAll(base64url, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	return s
}
