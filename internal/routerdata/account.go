package routerdata

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akylbek/payment-system/payment-core/internal/models"
)

// ConnectorAccount is a merchant's configured account with one connector.
type ConnectorAccount struct {
	MerchantID              string          `json:"merchant_id"`
	MerchantConnectorID     string          `json:"merchant_connector_id"`
	ConnectorName           string          `json:"connector_name"`
	ProfileID               *string         `json:"profile_id,omitempty"`
	Disabled                bool            `json:"disabled"`
	TestMode                *bool           `json:"test_mode,omitempty"`
	ConnectorAccountDetails json.RawMessage `json:"connector_account_details"`
	Metadata                json.RawMessage `json:"metadata,omitempty"`
	ConnectorWalletsDetails json.RawMessage `json:"connector_wallets_details,omitempty"`
}

type AuthKind string

const (
	AuthHeaderKey       AuthKind = "HeaderKey"
	AuthBodyKey         AuthKind = "BodyKey"
	AuthSignatureKey    AuthKind = "SignatureKey"
	AuthMultiAuthKey    AuthKind = "MultiAuthKey"
	AuthCurrencyAuthKey AuthKind = "CurrencyAuthKey"
	AuthCertificateAuth AuthKind = "CertificateAuth"
	AuthTemporaryAuth   AuthKind = "TemporaryAuth"
	AuthNoKey           AuthKind = "NoKey"
)

// AuthType holds the credentials a connector call is signed with. Which
// fields are set depends on Kind.
type AuthType struct {
	Kind        AuthKind                   `json:"auth_type"`
	APIKey      string                     `json:"api_key,omitempty"`
	Key1        string                     `json:"key1,omitempty"`
	Key2        string                     `json:"key2,omitempty"`
	APISecret   string                     `json:"api_secret,omitempty"`
	Certificate string                     `json:"certificate,omitempty"`
	PrivateKey  string                     `json:"private_key,omitempty"`
	AuthKeyMap  map[string]json.RawMessage `json:"auth_key_map,omitempty"`
}

// String hides the credentials.
func (a AuthType) String() string {
	return fmt.Sprintf("AuthType{%s}", a.Kind)
}

// ParseAuthType decodes and validates connector account details.
func ParseAuthType(raw json.RawMessage) (AuthType, error) {
	if !models.Present(raw) {
		return AuthType{}, errors.New("connector account details are empty")
	}
	var a AuthType
	if err := json.Unmarshal(raw, &a); err != nil {
		return AuthType{}, err
	}
	missing := func(names ...string) error {
		return fmt.Errorf("%s auth requires %v", a.Kind, names)
	}
	switch a.Kind {
	case AuthHeaderKey:
		if a.APIKey == "" {
			return AuthType{}, missing("api_key")
		}
	case AuthBodyKey:
		if a.APIKey == "" || a.Key1 == "" {
			return AuthType{}, missing("api_key", "key1")
		}
	case AuthSignatureKey:
		if a.APIKey == "" || a.Key1 == "" || a.APISecret == "" {
			return AuthType{}, missing("api_key", "key1", "api_secret")
		}
	case AuthMultiAuthKey:
		if a.APIKey == "" || a.Key1 == "" || a.APISecret == "" || a.Key2 == "" {
			return AuthType{}, missing("api_key", "key1", "api_secret", "key2")
		}
	case AuthCurrencyAuthKey:
		if len(a.AuthKeyMap) == 0 {
			return AuthType{}, missing("auth_key_map")
		}
	case AuthCertificateAuth:
		if a.Certificate == "" || a.PrivateKey == "" {
			return AuthType{}, missing("certificate", "private_key")
		}
	case AuthTemporaryAuth, AuthNoKey:
	default:
		return AuthType{}, fmt.Errorf("unknown auth_type %q", a.Kind)
	}
	return a, nil
}
