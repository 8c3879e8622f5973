// Package exchange provides a client for the exchange account-history API.
package exchange

import "encoding/json"

const (
	// DepositStatusPending indicates a deposit awaiting confirmation.
	DepositStatusPending = 0

	// DepositStatusSuccess indicates a fully credited deposit.
	DepositStatusSuccess = 1

	// DepositStatusCredited indicates a deposit credited but locked.
	DepositStatusCredited = 6
)

const (
	// TransferTypeExternal marks an on-chain movement.
	TransferTypeExternal = 0

	// TransferTypeInternal marks an internal transfer between accounts.
	TransferTypeInternal = 1
)

// Deposit represents one deposit record from the exchange.
type Deposit struct {
	// Address is the receiving address.
	Address string `json:"address"`

	// AddressTag is the memo or tag for assets that require one.
	AddressTag string `json:"addressTag"`

	// Amount is the deposited amount as a decimal string.
	Amount string `json:"amount"`

	// Asset is the asset symbol.
	Asset string `json:"coin"`

	// InsertTime is when the deposit was credited, in Unix milliseconds.
	// Records are returned ascending by this field.
	InsertTime int64 `json:"insertTime"`

	// Network is the chain the deposit arrived on.
	Network string `json:"network"`

	// Raw is the record as received from the API.
	Raw json.RawMessage `json:"-"`

	// Status is the deposit status code.
	Status int `json:"status"`

	// TransferType distinguishes on-chain from internal movements.
	TransferType int `json:"transferType"`

	// TxID is the on-chain transaction identifier.
	TxID string `json:"txId"`
}

// Timestamp returns the record's ordering timestamp in Unix milliseconds.
func (d Deposit) Timestamp() int64 {
	return d.InsertTime
}

// Withdrawal represents one withdrawal record from the exchange.
type Withdrawal struct {
	// Address is the destination address.
	Address string `json:"address"`

	// Amount is the withdrawn amount as a positive decimal string.
	Amount string `json:"amount"`

	// ApplyTime is when the withdrawal was applied, in Unix milliseconds.
	// Records are returned ascending by this field.
	ApplyTime int64 `json:"applyTime"`

	// Asset is the asset symbol.
	Asset string `json:"coin"`

	// ID is the exchange's withdrawal identifier.
	ID string `json:"id"`

	// Network is the chain the withdrawal was sent on.
	Network string `json:"network"`

	// Raw is the record as received from the API.
	Raw json.RawMessage `json:"-"`

	// Status is the withdrawal status code.
	Status int `json:"status"`

	// TransactionFee is the network fee as a decimal string.
	TransactionFee string `json:"transactionFee"`

	// TransferType distinguishes on-chain from internal movements.
	TransferType int `json:"transferType"`

	// TxID is the on-chain transaction identifier.
	TxID string `json:"txId"`
}

// Timestamp returns the record's ordering timestamp in Unix milliseconds.
func (w Withdrawal) Timestamp() int64 {
	return w.ApplyTime
}
