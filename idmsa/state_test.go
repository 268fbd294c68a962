package idmsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthOptionsKind(t *testing.T) {
	tests := []struct {
		name    string
		options AuthOptionsResponse
		want    AuthOptionsKind
	}{
		{
			name:    "trusted devices win over everything",
			options: AuthOptionsResponse{TrustedDevices: []TrustedDevice{{ID: "d1"}}, TrustedPhoneNumbers: []TrustedPhoneNumber{{ID: 1}}, FSAChallenge: &FSAChallenge{}},
			want:    KindTwoStep,
		},
		{
			name:    "empty device list still means two step",
			options: AuthOptionsResponse{TrustedDevices: []TrustedDevice{}},
			want:    KindTwoStep,
		},
		{
			name:    "phone numbers mean two factor",
			options: AuthOptionsResponse{TrustedPhoneNumbers: []TrustedPhoneNumber{{ID: 1}}},
			want:    KindTwoFactor,
		},
		{
			name:    "phone numbers win over security key",
			options: AuthOptionsResponse{TrustedPhoneNumbers: []TrustedPhoneNumber{}, FSAChallenge: &FSAChallenge{}},
			want:    KindTwoFactor,
		},
		{
			name:    "challenge alone means security key",
			options: AuthOptionsResponse{FSAChallenge: &FSAChallenge{Challenge: "Y2g"}},
			want:    KindSecurityKey,
		},
		{
			name:    "nothing recognisable",
			options: AuthOptionsResponse{},
			want:    KindUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.options.Kind())
		})
	}
}

func TestSMSAutomaticallySent(t *testing.T) {
	one := []TrustedPhoneNumber{{ID: 1}}
	two := []TrustedPhoneNumber{{ID: 1}, {ID: 2}}

	assert.True(t, AuthOptionsResponse{TrustedPhoneNumbers: one, NoTrustedDevices: true}.SMSAutomaticallySent())
	assert.False(t, AuthOptionsResponse{TrustedPhoneNumbers: two, NoTrustedDevices: true}.SMSAutomaticallySent())
	assert.False(t, AuthOptionsResponse{TrustedPhoneNumbers: one}.SMSAutomaticallySent())
	assert.False(t, AuthOptionsResponse{NoTrustedDevices: true}.SMSAutomaticallySent())
}

func TestSecurityCodePaths(t *testing.T) {
	assert.Equal(t, "trusteddevice", DeviceSecurityCode{Code: "123456"}.URLPathComponent())
	assert.Equal(t, "phone", SMSSecurityCode{Code: "123456", PhoneNumberID: 1}.URLPathComponent())
}

func TestServiceErrorDescription(t *testing.T) {
	e := ServiceError{Code: "-20101", Message: "Your Apple ID or password was incorrect."}
	assert.Equal(t, "-20101: Your Apple ID or password was incorrect.", e.Description())
}

func TestSessionDataID(t *testing.T) {
	session := AppleSessionData{ServiceKey: "key", SessionID: "sess", SCNT: "scnt"}
	assert.Equal(t, "sess", session.ID())
}
