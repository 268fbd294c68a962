package idmsa

// AuthenticationState is the outcome of one authentication step. It is a
// closed set: Unauthenticated, WaitingForSecondFactor, Authenticated and
// NotAppleDeveloper. Authenticated and NotAppleDeveloper are terminal;
// WaitingForSecondFactor expects a follow-up call carrying its SessionData.
type AuthenticationState interface {
	isAuthenticationState()
}

// Unauthenticated is the initial state and the fallback after any failure.
type Unauthenticated struct{}

// WaitingForSecondFactor reports that the password was accepted and a second
// factor is pending. SessionData must be passed back verbatim on every
// subsequent call of the same attempt.
type WaitingForSecondFactor struct {
	Option      TwoFactorOption
	AuthOptions AuthOptionsResponse
	SessionData AppleSessionData
}

// Authenticated is the terminal success state.
type Authenticated struct {
	Session AppleSession
}

// NotAppleDeveloper reports an Apple ID that is not enrolled in the
// developer program.
type NotAppleDeveloper struct{}

func (Unauthenticated) isAuthenticationState()        {}
func (WaitingForSecondFactor) isAuthenticationState() {}
func (Authenticated) isAuthenticationState()          {}
func (NotAppleDeveloper) isAuthenticationState()      {}

// TwoFactorOption describes which second factor the server has put in play.
type TwoFactorOption interface {
	isTwoFactorOption()
}

// SMSSent: a code was (or is being) sent to the one trusted phone number.
type SMSSent struct {
	Phone TrustedPhoneNumber
}

// CodeSent: a code is displayed on the account's trusted devices.
type CodeSent struct{}

// SMSPendingChoice: the user must pick which trusted phone receives the code.
type SMSPendingChoice struct{}

// SecurityKey: the server demands a hardware security-key assertion.
type SecurityKey struct{}

func (SMSSent) isTwoFactorOption()          {}
func (CodeSent) isTwoFactorOption()         {}
func (SMSPendingChoice) isTwoFactorOption() {}
func (SecurityKey) isTwoFactorOption()      {}

// SecurityCode is a second-factor code entered by the user. The wire path of
// the verification endpoint is derived from the variant alone.
type SecurityCode interface {
	URLPathComponent() string
	isSecurityCode()
}

// DeviceSecurityCode is a code shown on a trusted device.
type DeviceSecurityCode struct {
	Code string
}

// SMSSecurityCode is a code sent by SMS to a trusted phone number.
type SMSSecurityCode struct {
	Code          string
	PhoneNumberID int
}

func (DeviceSecurityCode) URLPathComponent() string { return "trusteddevice" }
func (SMSSecurityCode) URLPathComponent() string    { return "phone" }

func (DeviceSecurityCode) isSecurityCode() {}
func (SMSSecurityCode) isSecurityCode()    {}

// AppleSessionData correlates every request of one pending second-factor
// sequence. The three tokens are opaque and must be echoed unchanged.
type AppleSessionData struct {
	ServiceKey string
	SessionID  string
	SCNT       string
}

// ID identifies the pending sequence.
func (d AppleSessionData) ID() string { return d.SessionID }

// AuthOptionsKind classifies an AuthOptionsResponse.
type AuthOptionsKind int

const (
	KindTwoStep AuthOptionsKind = iota
	KindTwoFactor
	KindSecurityKey
	KindUnknown
)

func (k AuthOptionsKind) String() string {
	switch k {
	case KindTwoStep:
		return "twoStep"
	case KindTwoFactor:
		return "twoFactor"
	case KindSecurityKey:
		return "securityKey"
	default:
		return "unknown"
	}
}

// AuthOptionsResponse is the body of the auth-options fetch that follows a
// 409 from signin/complete. Absent lists stay nil; the nil/non-nil
// distinction drives Kind.
type AuthOptionsResponse struct {
	TrustedPhoneNumbers []TrustedPhoneNumber `json:"trustedPhoneNumbers"`
	TrustedDevices      []TrustedDevice      `json:"trustedDevices"`
	SecurityCode        *SecurityCodeInfo    `json:"securityCode,omitempty"`
	NoTrustedDevices    bool                 `json:"noTrustedDevices,omitempty"`
	ServiceErrors       []ServiceError       `json:"serviceErrors,omitempty"`
	FSAChallenge        *FSAChallenge        `json:"fsaChallenge,omitempty"`
}

// Kind classifies the response. The priority order is fixed: trusted
// devices, then trusted phone numbers, then a security-key challenge.
func (r AuthOptionsResponse) Kind() AuthOptionsKind {
	switch {
	case r.TrustedDevices != nil:
		return KindTwoStep
	case r.TrustedPhoneNumbers != nil:
		return KindTwoFactor
	case r.FSAChallenge != nil:
		return KindSecurityKey
	default:
		return KindUnknown
	}
}

// CanFallBackToSMS reports whether the account may receive the code by SMS.
// Accounts without trusted devices occasionally return a missing
// noTrustedDevices flag; that case resolves itself server-side and is not
// special-cased here.
func (r AuthOptionsResponse) CanFallBackToSMS() bool {
	return r.NoTrustedDevices
}

// SMSAutomaticallySent reports whether the server already sent an SMS: true
// exactly when there is a single trusted phone number to fall back to.
func (r AuthOptionsResponse) SMSAutomaticallySent() bool {
	return len(r.TrustedPhoneNumbers) == 1 && r.CanFallBackToSMS()
}

// TrustedPhoneNumber is one phone number enrolled for SMS codes; identified
// by ID.
type TrustedPhoneNumber struct {
	ID                 int    `json:"id"`
	NumberWithDialCode string `json:"numberWithDialCode"`
}

type TrustedDevice struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ModelName string `json:"modelName"`
}

type SecurityCodeInfo struct {
	Length                int  `json:"length"`
	TooManyCodesSent      bool `json:"tooManyCodesSent"`
	TooManyCodesValidated bool `json:"tooManyCodesValidated"`
	SecurityCodeLocked    bool `json:"securityCodeLocked"`
	SecurityCodeCooldown  bool `json:"securityCodeCooldown"`
}

// FSAChallenge is the hardware security-key challenge payload. Challenge is
// URL-safe base64; AllowedCredentials is a comma-separated credential-id
// list.
type FSAChallenge struct {
	Challenge          string   `json:"challenge"`
	KeyHandles         []string `json:"keyHandles"`
	AllowedCredentials string   `json:"allowedCredentials"`
}

type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ServiceError) Description() string {
	return e.Code + ": " + e.Message
}

// AppleSession is the authenticated olympus session record.
type AppleSession struct {
	User AppleSessionUser `json:"user"`
}

type AppleSessionUser struct {
	FullName string `json:"fullName,omitempty"`
}

type serviceKeyResponse struct {
	AuthServiceKey string `json:"authServiceKey"`
}

type signInResponse struct {
	AuthType      string         `json:"authType,omitempty"`
	ServiceErrors []ServiceError `json:"serviceErrors,omitempty"`
}

type serverSRPInitResponse struct {
	Iteration int    `json:"iteration"`
	Salt      string `json:"salt"`
	B         string `json:"b"`
	C         string `json:"c"`
	Protocol  string `json:"protocol"`
}
