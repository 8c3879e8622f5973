package exchange

import (
	"fmt"
	"strings"

	"github.com/openledgerhq/txbridge/internal/ledger"
)

// remarkSeparator joins the human-readable remark fields.
const remarkSeparator = " | "

// TransformError indicates a single upstream record could not be mapped to a
// canonical transaction. It is collected per record and never aborts a batch.
type TransformError struct {
	// Reason describes the missing field or violated precondition.
	Reason string
}

// Error returns the error message.
func (e *TransformError) Error() string {
	return "transforming record: " + e.Reason
}

// ToTransaction converts a deposit to its canonical ledger representation.
// Only success-status deposits are accepted; every other status fails with a
// TransformError so the caller counts it rather than silently dropping it.
func (d Deposit) ToTransaction(externalUserID string) (ledger.Transaction, error) {
	if d.Status != DepositStatusSuccess {
		return ledger.Transaction{}, &TransformError{
			Reason: fmt.Sprintf("deposit status %d is not success", d.Status),
		}
	}
	if d.Amount == "" {
		return ledger.Transaction{}, &TransformError{Reason: "deposit has no amount"}
	}
	if d.Asset == "" {
		return ledger.Transaction{}, &TransformError{Reason: "deposit has no asset"}
	}
	if d.InsertTime <= 0 {
		return ledger.Transaction{}, &TransformError{Reason: "deposit has no insert time"}
	}

	return ledger.Transaction{
		Account:        accountBucket(d.TransferType),
		Asset:          d.Asset,
		ChangeAmount:   positiveAmount(d.Amount),
		ExternalUserID: externalUserID,
		OccurredAt:     d.InsertTime,
		Operation:      ledger.OperationDeposit,
		RawPayload:     d.Raw,
		Remark:         composeRemark(d.Address, d.TxID, ""),
	}, nil
}

// ToTransaction converts a withdrawal to its canonical ledger representation.
// The amount is negated here, once, so downstream consumers never re-derive
// sign from the operation type.
func (w Withdrawal) ToTransaction(externalUserID string) (ledger.Transaction, error) {
	if w.Amount == "" {
		return ledger.Transaction{}, &TransformError{Reason: "withdrawal has no amount"}
	}
	if w.Asset == "" {
		return ledger.Transaction{}, &TransformError{Reason: "withdrawal has no asset"}
	}
	if w.ApplyTime <= 0 {
		return ledger.Transaction{}, &TransformError{Reason: "withdrawal has no apply time"}
	}

	return ledger.Transaction{
		Account:        accountBucket(w.TransferType),
		Asset:          w.Asset,
		ChangeAmount:   negativeAmount(w.Amount),
		ExternalUserID: externalUserID,
		OccurredAt:     w.ApplyTime,
		Operation:      ledger.OperationWithdraw,
		RawPayload:     w.Raw,
		Remark:         composeRemark(w.Address, w.TxID, w.TransactionFee),
	}, nil
}

// accountBucket selects the canonical account for a transfer type.
func accountBucket(transferType int) string {
	if transferType == TransferTypeInternal {
		return ledger.AccountFunding
	}
	return ledger.AccountPrimary
}

// composeRemark joins the available remark fields, omitting absent ones.
func composeRemark(address string, txID string, fee string) string {
	parts := make([]string, 0, 3)
	if address != "" {
		parts = append(parts, address)
	}
	if txID != "" {
		parts = append(parts, txID)
	}
	if fee != "" {
		parts = append(parts, "fee "+fee)
	}
	return strings.Join(parts, remarkSeparator)
}

// negativeAmount returns the amount with a negative sign, preserving the
// decimal string exactly. Amounts are never run through floating point.
func negativeAmount(amount string) string {
	amount = positiveAmount(amount)
	if strings.HasPrefix(amount, "-") {
		return amount
	}
	return "-" + amount
}

// positiveAmount strips an explicit leading plus sign.
func positiveAmount(amount string) string {
	return strings.TrimPrefix(amount, "+")
}
