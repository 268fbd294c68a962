package idmsa

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/XcodesOrg/XcodesLoginKit/network"
)

const (
	HeaderScnt              = "scnt"
	HeaderXAppleIDSession   = "X-Apple-ID-Session-Id"
	HeaderXAppleWidgetKey   = "X-Apple-Widget-Key"
	HeaderXAppleFrameID     = "X-Apple-Frame-Id"
	HeaderXAppleHC          = "X-Apple-HC"
	HeaderXAppleHCBits      = "X-Apple-HC-Bits"
	HeaderXAppleHCChallenge = "X-Apple-HC-Challenge"
)

// Endpoints carries the base URLs and the per-process frame id attached to
// every idmsa request. Tests swap them for an httptest server.
type Endpoints struct {
	IdmsaURL         string
	ItunesConnectURL string
	FrameID          string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		IdmsaURL:         "https://idmsa.apple.com/appleauth",
		ItunesConnectURL: "https://appstoreconnect.apple.com",
		FrameID:          "auth-" + uuid.NewString(),
	}
}

func (e Endpoints) baseHeaders(serviceKey string) map[string]string {
	return map[string]string{
		"Content-Type":        "application/json",
		"Accept":              "application/json",
		"X-Requested-With":    "XMLHttpRequest",
		HeaderXAppleWidgetKey: serviceKey,
		HeaderXAppleFrameID:   e.FrameID,
	}
}

func (e Endpoints) sessionHeaders(session AppleSessionData) map[string]string {
	h := e.baseHeaders(session.ServiceKey)
	h[HeaderXAppleIDSession] = session.SessionID
	h[HeaderScnt] = session.SCNT
	return h
}

func (e Endpoints) serviceKeyRequest() network.Request {
	return network.Request{
		Method: "GET",
		URL:    e.ItunesConnectURL + "/olympus/v1/app/config?hostname=itunesconnect.apple.com",
	}
}

func (e Endpoints) federateRequest(serviceKey, accountName string) network.Request {
	return network.Request{
		Method:  "POST",
		URL:     e.IdmsaURL + "/auth/federate?isRememberMeEnabled=true",
		Headers: e.baseHeaders(serviceKey),
		Body: map[string]any{
			"accountName": accountName,
			"rememberMe":  true,
		},
	}
}

func (e Endpoints) srpInitRequest(serviceKey, accountName, clientPublicKey string) network.Request {
	return network.Request{
		Method:  "POST",
		URL:     e.IdmsaURL + "/auth/signin/init",
		Headers: e.baseHeaders(serviceKey),
		Body: map[string]any{
			"a":           clientPublicKey,
			"accountName": accountName,
			"protocols":   []string{"s2k", "s2k_fo"},
		},
	}
}

func (e Endpoints) srpCompleteRequest(serviceKey, hashcash string, body map[string]any) network.Request {
	headers := e.baseHeaders(serviceKey)
	headers[HeaderXAppleHC] = hashcash
	return network.Request{
		Method:  "POST",
		URL:     e.IdmsaURL + "/auth/signin/complete?isRememberMeEnabled=true",
		Headers: headers,
		Body:    body,
	}
}

func (e Endpoints) authOptionsRequest(session AppleSessionData) network.Request {
	return network.Request{
		Method:  "GET",
		URL:     e.IdmsaURL + "/auth",
		Headers: e.sessionHeaders(session),
	}
}

func (e Endpoints) requestSecurityCodeRequest(session AppleSessionData, phoneID int) network.Request {
	return network.Request{
		Method:  "PUT",
		URL:     e.IdmsaURL + "/auth/verify/phone",
		Headers: e.sessionHeaders(session),
		Body: map[string]any{
			"phoneNumber": map[string]any{"id": phoneID},
			"mode":        "sms",
		},
	}
}

func (e Endpoints) submitSecurityCodeRequest(session AppleSessionData, code SecurityCode) network.Request {
	var body map[string]any
	switch c := code.(type) {
	case DeviceSecurityCode:
		body = map[string]any{
			"securityCode": map[string]any{"code": c.Code},
		}
	case SMSSecurityCode:
		body = map[string]any{
			"securityCode": map[string]any{"code": c.Code},
			"phoneNumber":  map[string]any{"id": c.PhoneNumberID},
			"mode":         "sms",
		}
	}
	return network.Request{
		Method:  "POST",
		URL:     fmt.Sprintf("%s/auth/verify/%s/securitycode", e.IdmsaURL, code.URLPathComponent()),
		Headers: e.sessionHeaders(session),
		Body:    body,
	}
}

func (e Endpoints) submitChallengeRequest(session AppleSessionData, assertion []byte) network.Request {
	return network.Request{
		Method:  "POST",
		URL:     e.IdmsaURL + "/auth/verify/security/key",
		Headers: e.sessionHeaders(session),
		Body:    string(assertion),
	}
}

func (e Endpoints) trustRequest(session AppleSessionData) network.Request {
	return network.Request{
		Method:  "GET",
		URL:     e.IdmsaURL + "/auth/2sv/trust",
		Headers: e.sessionHeaders(session),
	}
}

func (e Endpoints) sessionRequest(serviceKey string) network.Request {
	return network.Request{
		Method:  "GET",
		URL:     e.ItunesConnectURL + "/olympus/v1/session",
		Headers: e.baseHeaders(serviceKey),
	}
}
