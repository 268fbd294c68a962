// Package idmsa signs an Apple ID in against idmsa.apple.com: SRP password
// verification with a hashcash proof-of-work, followed by whichever second
// factor the account demands (trusted-device code, SMS code, or a hardware
// security key).
package idmsa

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"github.com/XcodesOrg/XcodesLoginKit/fido2"
	"github.com/XcodesOrg/XcodesLoginKit/hashcash"
	"github.com/XcodesOrg/XcodesLoginKit/network"
	"github.com/XcodesOrg/XcodesLoginKit/srp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// authTypes that gate the privacy-acknowledgement branch of a 412.
var privacyAuthTypes = []string{"sa", "hsa", "non-sa", "hsa2"}

const (
	securityKeyRPID   = "apple.com"
	securityKeyOrigin = "https://idmsa.apple.com"
)

// SRPClient is the password-proof collaborator; *srp.Client is the
// production implementation.
type SRPClient interface {
	GenerateKeys() srp.KeyPair
	CalculateSharedSecret(password, salt []byte, clientKeys srp.KeyPair, serverPublicKey []byte) ([]byte, error)
	CalculateClientProof(username string, salt, clientPublicKey, serverPublicKey, sharedSecret []byte) []byte
	CalculateServerProof(clientPublicKey, clientProof, sharedSecret []byte) []byte
}

// Client drives the authentication flow. Every step returns the next
// AuthenticationState; a WaitingForSecondFactor state carries the
// AppleSessionData that the follow-up call must echo.
//
// A Client is safe for use from multiple goroutines, though a single
// account's flow is inherently sequential.
type Client struct {
	service   network.Service
	srp       SRPClient
	minter    hashcash.Minter
	device    fido2.Device
	endpoints Endpoints

	mu     sync.Mutex
	bridge *fido2.Bridge
}

type Option func(*Client)

func WithNetworkService(s network.Service) Option { return func(c *Client) { c.service = s } }
func WithSRPClient(s SRPClient) Option            { return func(c *Client) { c.srp = s } }
func WithMinter(m hashcash.Minter) Option         { return func(c *Client) { c.minter = m } }
func WithSecurityKeyDevice(d fido2.Device) Option { return func(c *Client) { c.device = d } }
func WithEndpoints(e Endpoints) Option            { return func(c *Client) { c.endpoints = e } }

func NewClient(opts ...Option) *Client {
	c := &Client{
		srp:       srp.NewClient(srp.GetParams(srp.N_LEN_2048)),
		minter:    hashcash.New(),
		endpoints: DefaultEndpoints(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.service == nil {
		c.service = network.NewHTTPService()
	}
	return c
}

// SignIn performs the password step. On success the returned state is
// either Authenticated or WaitingForSecondFactor.
func (c *Client) SignIn(username, password string) (AuthenticationState, error) {
	account := strings.ToLower(username)

	serviceKey, err := c.loadServiceKey()
	if err != nil {
		return nil, err
	}

	hc, err := c.loadHashcash(serviceKey, account)
	if err != nil {
		return nil, err
	}

	keys := c.srp.GenerateKeys()
	initResp, err := network.RequestObject[serverSRPInitResponse](c.service,
		c.endpoints.srpInitRequest(serviceKey, account, base64.StdEncoding.EncodeToString(keys.Public)))
	if err != nil {
		return nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(initResp.Salt)
	if err != nil {
		return nil, &AuthError{Kind: ErrorInvalidSRPPublicKey}
	}
	serverPublic, err := base64.StdEncoding.DecodeString(initResp.B)
	if err != nil {
		return nil, &AuthError{Kind: ErrorInvalidSRPPublicKey}
	}

	derived, err := srp.DerivePassword(password, salt, initResp.Iteration, srp.Protocol(initResp.Protocol))
	if err != nil {
		return nil, &AuthError{Kind: ErrorInvalidSRPPublicKey}
	}

	sharedSecret, err := c.srp.CalculateSharedSecret(derived, salt, keys, serverPublic)
	if err != nil {
		return nil, &AuthError{Kind: ErrorInvalidSRPPublicKey}
	}
	m1 := c.srp.CalculateClientProof(account, salt, keys.Public, serverPublic, sharedSecret)
	m2 := c.srp.CalculateServerProof(keys.Public, m1, sharedSecret)

	body := map[string]any{
		"accountName": account,
		"c":           initResp.C,
		"m1":          base64.StdEncoding.EncodeToString(m1),
		"m2":          base64.StdEncoding.EncodeToString(m2),
		"rememberMe":  true,
	}
	data, resp, err := c.service.RequestData(c.endpoints.srpCompleteRequest(serviceKey, hc, body))
	if err != nil {
		return nil, err
	}

	var signIn signInResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &signIn); err != nil {
			return nil, &AuthError{Kind: ErrorInvalidResult, Message: "sign in response could not be parsed"}
		}
	}

	log.WithFields(log.Fields{"status": resp.StatusCode, "authType": signIn.AuthType}).
		Debug("sign in completed")

	switch {
	case resp.StatusCode == 401:
		return nil, &AuthError{Kind: ErrorInvalidUsernameOrPassword, Username: account}
	case resp.StatusCode == 403:
		return nil, &AuthError{Kind: ErrorAccountLocked, Message: lockedMessage(signIn.ServiceErrors)}
	case resp.StatusCode == 409:
		return c.handleTwoStepOrFactor(serviceKey, resp, data)
	case resp.StatusCode == 412 && contains(privacyAuthTypes, signIn.AuthType):
		return nil, &AuthError{Kind: ErrorPrivacyAcknowledgementRequired}
	case resp.StatusCode == 200:
		return c.loadSession(serviceKey)
	default:
		return nil, &AuthError{
			Kind:       ErrorUnexpectedSignInResponse,
			StatusCode: resp.StatusCode,
			Message:    joinServiceErrors(signIn.ServiceErrors),
		}
	}
}

func (c *Client) loadServiceKey() (string, error) {
	resp, err := network.RequestObject[serviceKeyResponse](c.service, c.endpoints.serviceKeyRequest())
	if err != nil {
		return "", err
	}
	return resp.AuthServiceKey, nil
}

// loadHashcash runs the federate request and mints the proof-of-work the
// sign-in completion must carry.
func (c *Client) loadHashcash(serviceKey, account string) (string, error) {
	_, resp, err := c.service.RequestData(c.endpoints.federateRequest(serviceKey, account))
	if err != nil {
		return "", err
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == 400, resp.StatusCode == 401:
		return "", &AuthError{Kind: ErrorInvalidHashcash}
	default:
		return "", &AuthError{Kind: ErrorBadStatusCode, StatusCode: resp.StatusCode, Header: resp.Header}
	}

	bits, err := strconv.ParseUint(resp.Header.Get(HeaderXAppleHCBits), 10, 32)
	if err != nil {
		return "", &AuthError{Kind: ErrorInvalidHashcash}
	}
	challenge := resp.Header.Get(HeaderXAppleHCChallenge)
	if challenge == "" {
		return "", &AuthError{Kind: ErrorInvalidHashcash}
	}
	token, ok := c.minter.Mint(challenge, uint(bits))
	if !ok {
		return "", &AuthError{Kind: ErrorInvalidHashcash}
	}
	return token, nil
}

// handleTwoStepOrFactor resolves a 409 into the pending second factor.
func (c *Client) handleTwoStepOrFactor(serviceKey string, resp *network.Response, body []byte) (AuthenticationState, error) {
	sessionID := resp.Header.Get(HeaderXAppleIDSession)
	scnt := resp.Header.Get(HeaderScnt)
	if sessionID == "" || scnt == "" {
		return nil, &AuthError{Kind: ErrorMissingSessionHeaders}
	}
	session := AppleSessionData{ServiceKey: serviceKey, SessionID: sessionID, SCNT: scnt}

	options, err := network.RequestObject[AuthOptionsResponse](c.service, c.endpoints.authOptionsRequest(session))
	if err != nil {
		return nil, err
	}

	switch kind := options.Kind(); kind {
	case KindTwoStep:
		return nil, &AuthError{Kind: ErrorTwoStepAuthentication}
	case KindTwoFactor, KindSecurityKey:
		log.WithField("kind", kind.String()).Debug("second factor required")
	default:
		return nil, &AuthError{
			Kind:    ErrorUnknownAuthenticationKind,
			Message: string(body),
			Body:    body,
		}
	}

	return WaitingForSecondFactor{
		Option:      chooseOption(options),
		AuthOptions: options,
		SessionData: session,
	}, nil
}

// chooseOption picks the second-factor path in fixed priority order: an SMS
// the server already sent, the SMS fallback choice, a security-key
// challenge, and finally a trusted-device code.
func chooseOption(options AuthOptionsResponse) TwoFactorOption {
	switch {
	case options.SMSAutomaticallySent():
		return SMSSent{Phone: options.TrustedPhoneNumbers[0]}
	case options.CanFallBackToSMS():
		return SMSPendingChoice{}
	case options.FSAChallenge != nil:
		return SecurityKey{}
	default:
		return CodeSent{}
	}
}

// SubmitSecurityCode verifies a trusted-device or SMS code and, on success,
// trusts the session and fetches the authenticated session record.
func (c *Client) SubmitSecurityCode(session AppleSessionData, code SecurityCode) (AuthenticationState, error) {
	data, resp, err := c.service.RequestData(c.endpoints.submitSecurityCodeRequest(session, code))
	if err != nil {
		return nil, err
	}
	return c.finishVerification(session, resp, data)
}

// RequestSMSSecurityCode asks the server to text a code to phone. The
// endpoint answers with no usable body, so the call reports transport
// failures only.
func (c *Client) RequestSMSSecurityCode(state WaitingForSecondFactor, phone TrustedPhoneNumber) (AuthenticationState, error) {
	if err := c.service.RequestVoid(c.endpoints.requestSecurityCodeRequest(state.SessionData, phone.ID)); err != nil {
		return nil, err
	}
	return WaitingForSecondFactor{
		Option:      SMSSent{Phone: phone},
		AuthOptions: state.AuthOptions,
		SessionData: state.SessionData,
	}, nil
}

// SubmitSecurityKeyPinCode runs the hardware security-key assertion for the
// challenge carried by state and submits the result. It blocks until the
// authenticator answers or CancelSecurityKeyAssertionRequest is called.
func (c *Client) SubmitSecurityKeyPinCode(state WaitingForSecondFactor, pinCode string) (AuthenticationState, error) {
	fsa := state.AuthOptions.FSAChallenge
	if fsa == nil {
		return nil, &AuthError{
			Kind:    ErrorUnexpectedSignInResponse,
			Message: "no security key challenge is pending",
		}
	}

	bridge := fido2.NewBridge(c.device)
	c.mu.Lock()
	c.bridge = bridge
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.bridge = nil
		c.mu.Unlock()
	}()

	assertion, err := bridge.RespondToChallenge(fido2.ChallengeArgs{
		RPID:             securityKeyRPID,
		ValidCredentials: strings.Split(fsa.AllowedCredentials, ","),
		PIN:              pinCode,
		Challenge:        fido2.Base64URLToBase64(fsa.Challenge),
		Origin:           securityKeyOrigin,
	})
	if err != nil {
		if errors.Is(err, fido2.ErrCanceledByUser) {
			return nil, &AuthError{Kind: ErrorUserCancelledSecurityKey}
		}
		return nil, err
	}

	payload, err := json.Marshal(assertion)
	if err != nil {
		return nil, &AuthError{Kind: ErrorInvalidResult, Message: "security key assertion could not be encoded"}
	}
	return c.SubmitChallenge(state.SessionData, payload)
}

// SubmitChallenge posts a pre-built security-key assertion payload.
func (c *Client) SubmitChallenge(session AppleSessionData, assertion []byte) (AuthenticationState, error) {
	data, resp, err := c.service.RequestData(c.endpoints.submitChallengeRequest(session, assertion))
	if err != nil {
		return nil, err
	}
	return c.finishVerification(session, resp, data)
}

// CancelSecurityKeyAssertionRequest aborts an in-flight security-key
// assertion. Calling it with no assertion pending is a no-op.
func (c *Client) CancelSecurityKeyAssertionRequest() {
	c.mu.Lock()
	bridge := c.bridge
	c.mu.Unlock()
	if bridge != nil {
		bridge.Cancel()
	}
}

// SignOut forgets the authenticated session held by the transport.
func (c *Client) SignOut() {
	if s, ok := c.service.(interface{ ClearCookies() }); ok {
		s.ClearCookies()
	}
}

// finishVerification maps the status of a code or challenge submission.
func (c *Client) finishVerification(session AppleSessionData, resp *network.Response, body []byte) (AuthenticationState, error) {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return c.updateSession(session)
	case resp.StatusCode == 400, resp.StatusCode == 401:
		return nil, &AuthError{Kind: ErrorIncorrectSecurityCode}
	case resp.StatusCode == 412:
		return nil, &AuthError{Kind: ErrorPrivacyAcknowledgementRequired}
	default:
		return nil, &AuthError{
			Kind:       ErrorBadStatusCode,
			StatusCode: resp.StatusCode,
			Body:       body,
			Header:     resp.Header,
		}
	}
}

// updateSession marks the session trusted, then fetches the olympus session
// record.
func (c *Client) updateSession(session AppleSessionData) (AuthenticationState, error) {
	if err := c.service.RequestVoid(c.endpoints.trustRequest(session)); err != nil {
		return nil, err
	}
	return c.loadSession(session.ServiceKey)
}

func (c *Client) loadSession(serviceKey string) (AuthenticationState, error) {
	session, err := network.RequestObject[AppleSession](c.service, c.endpoints.sessionRequest(serviceKey))
	if err != nil {
		return nil, err
	}
	return Authenticated{Session: session}, nil
}

// lockedMessage extracts the user-facing text of an account-locked
// response. The server prefixes the message with its own error code.
func lockedMessage(serviceErrors []ServiceError) string {
	if len(serviceErrors) == 0 {
		return "this account is locked"
	}
	return strings.ReplaceAll(serviceErrors[0].Description(), "-20209: ", "")
}

func joinServiceErrors(serviceErrors []ServiceError) string {
	descriptions := make([]string, 0, len(serviceErrors))
	for _, e := range serviceErrors {
		descriptions = append(descriptions, e.Description())
	}
	return strings.Join(descriptions, ", ")
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
