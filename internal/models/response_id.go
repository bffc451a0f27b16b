package models

type ResponseIDKind string

const (
	ResponseIDConnectorTransactionID ResponseIDKind = "connector_transaction_id"
	ResponseIDEncodedData            ResponseIDKind = "encoded_data"
	ResponseIDNoResponseID           ResponseIDKind = "no_response_id"
)

// ResponseID identifies a connector-side resource.
type ResponseID struct {
	Kind ResponseIDKind `json:"kind"`
	ID   string         `json:"id,omitempty"`
}

// ResponseIDFromTransaction is the connector transaction id when set, else NoResponseId.
func ResponseIDFromTransaction(id *string) ResponseID {
	if id == nil {
		return ResponseID{Kind: ResponseIDNoResponseID}
	}
	return ResponseID{Kind: ResponseIDConnectorTransactionID, ID: *id}
}
