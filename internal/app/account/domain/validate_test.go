package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		wantErr error
	}{
		{name: "positive", amount: 200, wantErr: nil},
		{name: "zero", amount: 0, wantErr: ErrInvalidRequest},
		{name: "negative", amount: -200, wantErr: ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateAmount(tt.amount), tt.wantErr)
		})
	}
}

func TestValidateUseBalance(t *testing.T) {
	pobi := &AccountUser{ID: 12, Name: "Pobi"}
	harry := &AccountUser{ID: 13, Name: "Harry"}

	account := func(ownerID int64, status AccountStatus, balance int64) *Account {
		return &Account{
			ID:            1,
			OwnerID:       ownerID,
			AccountNumber: "1000000012",
			Status:        status,
			Balance:       balance,
		}
	}

	tests := []struct {
		name    string
		user    *AccountUser
		account *Account
		amount  int64
		wantErr error
	}{
		{
			name:    "ok",
			user:    pobi,
			account: account(12, AccountStatusInUse, 10000),
			amount:  200,
		},
		{
			name:    "owner mismatch",
			user:    harry,
			account: account(12, AccountStatusInUse, 10000),
			amount:  200,
			wantErr: ErrUserAccountUnMatch,
		},
		{
			name:    "account unregistered",
			user:    pobi,
			account: account(12, AccountStatusUnregistered, 10000),
			amount:  200,
			wantErr: ErrAccountAlreadyUnregistered,
		},
		{
			name:    "amount exceeds balance",
			user:    pobi,
			account: account(12, AccountStatusInUse, 100),
			amount:  1000,
			wantErr: ErrAmountExceedBalance,
		},
		{
			name:    "amount equals balance",
			user:    pobi,
			account: account(12, AccountStatusInUse, 200),
			amount:  200,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUseBalance(tt.user, tt.account, tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateCancelBalance(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	account := &Account{ID: 1, AccountNumber: "1000000012", Status: AccountStatusInUse, Balance: 10000}

	tran := func(accountID, amount int64, transactedAt time.Time) *Transaction {
		return &Transaction{
			ID:            7,
			AccountID:     accountID,
			AccountNumber: "1000000012",
			Type:          TransactionTypeUse,
			Result:        TransactionResultSuccess,
			Amount:        amount,
			TransactedAt:  transactedAt,
		}
	}

	tests := []struct {
		name    string
		tran    *Transaction
		amount  int64
		wantErr error
	}{
		{
			name:   "ok",
			tran:   tran(1, 200, now.Add(-time.Hour)),
			amount: 200,
		},
		{
			name:    "transaction belongs to another account",
			tran:    tran(2, 200, now.Add(-time.Hour)),
			amount:  200,
			wantErr: ErrTransactionAccountUnMatch,
		},
		{
			name:    "partial cancel rejected",
			tran:    tran(1, 200, now.Add(-time.Hour)),
			amount:  100,
			wantErr: ErrCancelMustFully,
		},
		{
			name:    "over one year old",
			tran:    tran(1, 200, now.AddDate(-1, 0, -1)),
			amount:  200,
			wantErr: ErrTooOldOrderToCancel,
		},
		{
			// 剛好滿一年還能取消，超過才拒絕
			name:   "exactly one year old",
			tran:   tran(1, 200, now.AddDate(-1, 0, 0)),
			amount: 200,
		},
		{
			name:   "one year minus one day",
			tran:   tran(1, 200, now.AddDate(-1, 0, 1)),
			amount: 200,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCancelBalance(tt.tran, account, tt.amount, now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
