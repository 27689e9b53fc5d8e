package types

import "encoding/json"

// PaymentResult is the audit snapshot of the latest gateway interaction on an
// order. Stored as jsonb; every callback overwrites it, success or not.
type PaymentResult struct {
	Provider    string          `json:"provider,omitempty"`
	SessionID   string          `json:"sessionId,omitempty"`
	ReferenceID string          `json:"referenceId,omitempty"`
	TxStatus    string          `json:"txStatus,omitempty"`
	TxMessage   string          `json:"txMessage,omitempty"`
	OrderAmount string          `json:"orderAmount,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}
