package domain

import "time"

// 驗證規則都是純函式：只看輸入，不碰儲存層

// ValidateAmount 任何請求的金額都必須為正數
// 在查詢任何資料之前先檢查，失敗不留交易紀錄
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidRequest
	}
	return nil
}

// ValidateUseBalance 扣款前的檢查
// 依序檢查：持有人相符 -> 帳戶使用中 -> 餘額足夠
func ValidateUseBalance(user *AccountUser, account *Account, amount int64) error {
	if user.ID != account.OwnerID {
		return ErrUserAccountUnMatch
	}
	if account.Status != AccountStatusInUse {
		return ErrAccountAlreadyUnregistered
	}
	if amount > account.Balance {
		return ErrAmountExceedBalance
	}
	return nil
}

// ValidateCancelBalance 取消扣款前的檢查
// 依序檢查：交易屬於該帳戶 -> 全額取消 -> 一年內
// 剛好滿一年仍然可以取消，超過一年才拒絕
func ValidateCancelBalance(tran *Transaction, account *Account, amount int64, now time.Time) error {
	if tran.AccountID != account.ID {
		return ErrTransactionAccountUnMatch
	}
	if tran.Amount != amount {
		return ErrCancelMustFully
	}
	if tran.TransactedAt.Before(now.AddDate(-1, 0, 0)) {
		return ErrTooOldOrderToCancel
	}
	return nil
}
