package domain

// AccountUser 帳戶持有人
// 一個使用者可以持有多個帳戶
type AccountUser struct {
	ID   int64
	Name string
}

// AccountStatus 帳戶狀態
// 為了節省記憶體，使用 uint8
type AccountStatus uint8

const (
	// 使用中
	AccountStatusInUse AccountStatus = 1
	// 已解約
	AccountStatusUnregistered AccountStatus = 2
)

// String 回傳對外顯示用的狀態名稱
func (s AccountStatus) String() string {
	switch s {
	case AccountStatusInUse:
		return "IN_USE"
	case AccountStatusUnregistered:
		return "UNREGISTERED"
	default:
		return "UNKNOWN"
	}
}

// Account 帳戶
// Balance 為整數最小幣值單位（分），不得因扣款變為負數
type Account struct {
	ID            int64
	OwnerID       int64
	AccountNumber string
	Status        AccountStatus
	Balance       int64
}

// UseBalance 扣款
// 呼叫前應先通過 ValidateUseBalance，這裡再做最後一道餘額檢查
func (a *Account) UseBalance(amount int64) error {
	if amount > a.Balance {
		return ErrAmountExceedBalance
	}
	a.Balance -= amount
	return nil
}

// CancelBalance 回補款項（取消先前的扣款）
func (a *Account) CancelBalance(amount int64) error {
	if amount < 0 {
		return ErrInvalidRequest
	}
	a.Balance += amount
	return nil
}
