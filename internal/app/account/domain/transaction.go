package domain

import "time"

// TransactionType 交易類型
type TransactionType uint8

const (
	// 扣款
	TransactionTypeUse TransactionType = 1
	// 取消扣款
	TransactionTypeCancel TransactionType = 2
)

// String 回傳對外顯示用的交易類型名稱
func (t TransactionType) String() string {
	switch t {
	case TransactionTypeUse:
		return "USE"
	case TransactionTypeCancel:
		return "CANCEL"
	default:
		return "UNKNOWN"
	}
}

// TransactionResult 交易結果
type TransactionResult uint8

const (
	TransactionResultSuccess TransactionResult = 1
	TransactionResultFail    TransactionResult = 2
)

// String 回傳對外顯示用的交易結果名稱
func (r TransactionResult) String() string {
	switch r {
	case TransactionResultSuccess:
		return "SUCCESS"
	case TransactionResultFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// Transaction 交易紀錄
// 每一次扣款/取消的嘗試（不論成功或失敗）都會留下一筆，只增不改不刪
type Transaction struct {
	// ID: 儲存層內部流水號
	ID int64
	// AccountID, AccountNumber: 這筆交易作用的帳戶
	AccountID     int64
	AccountNumber string
	// Amount: 交易金額；失敗紀錄可能帶原始請求的帶號數值
	Amount int64
	// BalanceSnapshot: 交易生效後的帳戶餘額快照
	// 失敗紀錄則是未被改動的當下餘額
	BalanceSnapshot int64
	// TransactionID: 外部追蹤號 (UUID)，取消與查詢都用它
	TransactionID string
	// TransactedAt: 交易時間
	TransactedAt time.Time
	Type         TransactionType
	Result       TransactionResult
}
