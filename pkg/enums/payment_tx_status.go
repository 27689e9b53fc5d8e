package enums

// PaymentTxStatus is the transaction status reported by the payment gateway
// callback. Unknown values are persisted verbatim for audit but only the
// canonical set drives state changes.
type PaymentTxStatus string

const (
	PaymentTxSuccess  PaymentTxStatus = "SUCCESS"
	PaymentTxFailed   PaymentTxStatus = "FAILED"
	PaymentTxPending  PaymentTxStatus = "PENDING"
	PaymentTxUserDrop PaymentTxStatus = "USER_DROPPED"
)

// IsSuccess reports whether the status marks the payment as settled.
func (p PaymentTxStatus) IsSuccess() bool {
	return p == PaymentTxSuccess
}
