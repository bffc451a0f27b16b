package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
)

type RedirectFormKind string

const (
	RedirectFormPost                 RedirectFormKind = "Form"
	RedirectFormHTML                 RedirectFormKind = "Html"
	RedirectFormBlueSnap             RedirectFormKind = "BlueSnap"
	RedirectFormCybersourceAuthSetup RedirectFormKind = "CybersourceAuthSetup"
	RedirectFormBraintree            RedirectFormKind = "Braintree"
	RedirectFormMifinity             RedirectFormKind = "Mifinity"
)

// RedirectForm is the connector redirection payload stored as the attempt's
// authentication data. On the wire it is a single-key object naming the variant.
type RedirectForm struct {
	Kind   RedirectFormKind
	Fields json.RawMessage
}

func (f RedirectForm) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[RedirectFormKind]json.RawMessage{f.Kind: f.Fields})
}

func (f *RedirectForm) UnmarshalJSON(data []byte) error {
	var m map[RedirectFormKind]json.RawMessage
	if err := decodeObject(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return errors.New("redirect form must have exactly one variant")
	}
	for kind, fields := range m {
		switch kind {
		case RedirectFormPost:
			var form struct {
				Endpoint   *string           `json:"endpoint"`
				Method     *string           `json:"method"`
				FormFields map[string]string `json:"form_fields"`
			}
			if err := decodeObject(fields, &form); err != nil {
				return fmt.Errorf("redirect form %s: %w", kind, err)
			}
			if form.Endpoint == nil || form.Method == nil {
				return fmt.Errorf("redirect form %s: endpoint and method are required", kind)
			}
		case RedirectFormHTML, RedirectFormBlueSnap, RedirectFormCybersourceAuthSetup,
			RedirectFormBraintree, RedirectFormMifinity:
			var obj map[string]json.RawMessage
			if err := decodeObject(fields, &obj); err != nil {
				return fmt.Errorf("redirect form %s: %w", kind, err)
			}
		default:
			return fmt.Errorf("unknown redirect form %q", kind)
		}
		f.Kind, f.Fields = kind, fields
	}
	return nil
}

// ParseRedirectForm decodes the attempt's authentication data.
func ParseRedirectForm(raw json.RawMessage) (RedirectForm, error) {
	var f RedirectForm
	err := json.Unmarshal(raw, &f)
	return f, err
}
