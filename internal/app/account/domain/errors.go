package domain

import "errors"

var (
	// ErrUserNotFound 找不到使用者
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrUserAccountUnMatch 帳戶持有人與請求的使用者不符
	ErrUserAccountUnMatch = errors.New("user and account do not match")

	// ErrAccountAlreadyUnregistered 帳戶已解約
	ErrAccountAlreadyUnregistered = errors.New("account already unregistered")

	// ErrAmountExceedBalance 餘額不足
	ErrAmountExceedBalance = errors.New("use amount exceeds balance")

	// ErrTransactionNotFound 找不到交易
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTransactionAccountUnMatch 交易所屬帳戶與請求的帳戶不符
	ErrTransactionAccountUnMatch = errors.New("transaction and account do not match")

	// ErrCancelMustFully 只允許全額取消
	ErrCancelMustFully = errors.New("cancel must be fully")

	// ErrTooOldOrderToCancel 超過一年的交易不可取消
	ErrTooOldOrderToCancel = errors.New("too old order to cancel")

	// ErrInvalidRequest 不合法的請求（例如金額非正數）
	ErrInvalidRequest = errors.New("invalid request")
)

// ErrorCode 回傳錯誤對應的穩定代碼，供 API 層輸出
// 非本系統定義的錯誤一律視為 INTERNAL_ERROR
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "USER_NOT_FOUND"
	case errors.Is(err, ErrAccountNotFound):
		return "ACCOUNT_NOT_FOUND"
	case errors.Is(err, ErrUserAccountUnMatch):
		return "USER_ACCOUNT_UN_MATCH"
	case errors.Is(err, ErrAccountAlreadyUnregistered):
		return "ACCOUNT_ALREADY_UNREGISTERED"
	case errors.Is(err, ErrAmountExceedBalance):
		return "AMOUNT_EXCEED_BALANCE"
	case errors.Is(err, ErrTransactionNotFound):
		return "TRANSACTION_NOT_FOUND"
	case errors.Is(err, ErrTransactionAccountUnMatch):
		return "TRANSACTION_ACCOUNT_UN_MATCH"
	case errors.Is(err, ErrCancelMustFully):
		return "CANCEL_MUST_FULLY"
	case errors.Is(err, ErrTooOldOrderToCancel):
		return "TOO_OLD_ORDER_TO_CANCEL"
	case errors.Is(err, ErrInvalidRequest):
		return "INVALID_REQUEST"
	default:
		return "INTERNAL_ERROR"
	}
}
