package exchange

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openledgerhq/txbridge/internal/ledger"
)

func TestDeposit_ToTransaction(t *testing.T) {
	t.Parallel()

	valid := Deposit{
		Address:      "0xabc",
		Amount:       "0.25000000",
		Asset:        "BTC",
		InsertTime:   1_700_000_000_000,
		Raw:          json.RawMessage(`{"coin":"BTC"}`),
		Status:       DepositStatusSuccess,
		TransferType: TransferTypeExternal,
		TxID:         "tx-1",
	}

	t.Run("maps a successful deposit", func(t *testing.T) {
		t.Parallel()

		tx, err := valid.ToTransaction("user-42")

		require.NoError(t, err)
		require.Equal(t, ledger.Transaction{
			Account:        ledger.AccountPrimary,
			Asset:          "BTC",
			ChangeAmount:   "0.25000000",
			ExternalUserID: "user-42",
			OccurredAt:     1_700_000_000_000,
			Operation:      ledger.OperationDeposit,
			RawPayload:     json.RawMessage(`{"coin":"BTC"}`),
			Remark:         "0xabc | tx-1",
		}, tx)
	})

	t.Run("internal transfer goes to the funding account", func(t *testing.T) {
		t.Parallel()

		d := valid
		d.TransferType = TransferTypeInternal

		tx, err := d.ToTransaction("user-42")

		require.NoError(t, err)
		require.Equal(t, ledger.AccountFunding, tx.Account)
	})

	t.Run("non-success statuses fail with TransformError", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{DepositStatusPending, DepositStatusCredited} {
			d := valid
			d.Status = status

			_, err := d.ToTransaction("user-42")

			var transformErr *TransformError
			require.ErrorAs(t, err, &transformErr)
			require.Contains(t, transformErr.Reason, "not success")
		}
	})

	t.Run("missing required fields fail with TransformError", func(t *testing.T) {
		t.Parallel()

		tests := map[string]func(*Deposit){
			"no amount":      func(d *Deposit) { d.Amount = "" },
			"no asset":       func(d *Deposit) { d.Asset = "" },
			"no insert time": func(d *Deposit) { d.InsertTime = 0 },
		}

		for name, mutate := range tests {
			d := valid
			mutate(&d)

			_, err := d.ToTransaction("user-42")

			var transformErr *TransformError
			require.ErrorAs(t, err, &transformErr, name)
		}
	})
}

func TestWithdrawal_ToTransaction(t *testing.T) {
	t.Parallel()

	valid := Withdrawal{
		Address:        "0xdef",
		Amount:         "5.00000000",
		ApplyTime:      1_700_000_100_000,
		Asset:          "ETH",
		TransactionFee: "0.0005",
		TransferType:   TransferTypeExternal,
		TxID:           "tx-9",
	}

	t.Run("negates the amount exactly", func(t *testing.T) {
		t.Parallel()

		tx, err := valid.ToTransaction("user-42")

		require.NoError(t, err)
		require.Equal(t, "-5.00000000", tx.ChangeAmount)
		require.Equal(t, ledger.OperationWithdraw, tx.Operation)
		require.Equal(t, int64(1_700_000_100_000), tx.OccurredAt)
	})

	t.Run("composes the remark from address, tx ID, and fee", func(t *testing.T) {
		t.Parallel()

		tx, err := valid.ToTransaction("user-42")

		require.NoError(t, err)
		require.Equal(t, "0xdef | tx-9 | fee 0.0005", tx.Remark)
	})

	t.Run("absent remark fields are omitted, not rendered empty", func(t *testing.T) {
		t.Parallel()

		w := valid
		w.Address = ""
		w.TransactionFee = ""

		tx, err := w.ToTransaction("user-42")

		require.NoError(t, err)
		require.Equal(t, "tx-9", tx.Remark)
	})

	t.Run("missing required fields fail with TransformError", func(t *testing.T) {
		t.Parallel()

		tests := map[string]func(*Withdrawal){
			"no amount":     func(w *Withdrawal) { w.Amount = "" },
			"no asset":      func(w *Withdrawal) { w.Asset = "" },
			"no apply time": func(w *Withdrawal) { w.ApplyTime = 0 },
		}

		for name, mutate := range tests {
			w := valid
			mutate(&w)

			_, err := w.ToTransaction("user-42")

			var transformErr *TransformError
			require.ErrorAs(t, err, &transformErr, name)
		}
	})
}

func TestAmountNormalization(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0.25", positiveAmount("+0.25"))
	require.Equal(t, "0.25", positiveAmount("0.25"))
	require.Equal(t, "-5.00000000", negativeAmount("5.00000000"))
	require.Equal(t, "-5.00000000", negativeAmount("+5.00000000"))
	require.Equal(t, "-5.00000000", negativeAmount("-5.00000000"))
}
