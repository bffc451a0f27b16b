package models

import (
	"strconv"
	"strings"
)

// Authentication is the external (3DS) authentication record of a payment.
type Authentication struct {
	AuthenticationID           string               `json:"authentication_id"`
	AuthenticationStatus       AuthenticationStatus `json:"authentication_status"`
	AuthenticationFlow         *string              `json:"authentication_flow,omitempty"`
	CAVV                       *string              `json:"cavv,omitempty"`
	ECI                        *string              `json:"eci,omitempty"`
	ThreeDSServerTransactionID *string              `json:"threeds_server_transaction_id,omitempty"`
	DSTransID                  *string              `json:"ds_trans_id,omitempty"`
	ThreeDSMethodURL           *string              `json:"three_ds_method_url,omitempty"`
	ThreeDSMethodData          *string              `json:"three_ds_method_data,omitempty"`
	MessageVersion             *string              `json:"message_version,omitempty"`
	MaximumSupportedVersion    *string              `json:"maximum_supported_version,omitempty"`
	DirectoryServerID          *string              `json:"directory_server_id,omitempty"`
	ErrorCode                  *string              `json:"error_code,omitempty"`
	ErrorMessage               *string              `json:"error_message,omitempty"`
}

// IsSeparateAuthnRequired is true when the card supports 3DS 2.x, which runs
// authentication as its own step before authorization.
func (a *Authentication) IsSeparateAuthnRequired() bool {
	if a == nil || a.MaximumSupportedVersion == nil {
		return false
	}
	major, _, _ := strings.Cut(*a.MaximumSupportedVersion, ".")
	v, err := strconv.Atoi(major)
	return err == nil && v == 2
}

type PollConfig struct {
	DelayInSecs int8 `json:"delay_in_secs"`
	Frequency   int8 `json:"frequency"`
}

// DefaultPollConfig is used when no poll configuration was found for the connector.
func DefaultPollConfig() PollConfig {
	return PollConfig{DelayInSecs: 2, Frequency: 5}
}
