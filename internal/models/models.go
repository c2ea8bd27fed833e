package models

import "time"

// Domain constants for transaction records. Every row written by this
// service is a transfer that the store either accepted whole or rejected
// whole, so action and result carry fixed codes.
const (
	ActionTransfer = 1
	ResultSuccess  = 1
	NoError        = "No error"

	// SystemAccount is the actor recorded when no authenticated caller
	// identity is present on the request.
	SystemAccount = "system"
)

// Transaction is a single financial transfer record between two accounts.
// The id is assigned by the store on insert and immutable afterwards.
type Transaction struct {
	ID             int64     `json:"id"`
	Owner          string    `json:"owner"`
	Account        string    `json:"account"`
	ToAccount      string    `json:"toAccount"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	Action         int       `json:"action"`
	TransactAt     time.Time `json:"transactAt"`
	Result         int       `json:"result"`
	Error          string    `json:"error"`
	CreatedBy      string    `json:"createdBy"`
	LastModifiedBy string    `json:"lastModifiedBy"`
}
