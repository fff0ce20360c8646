package usecase

import (
	"context"

	"github.com/JoeShih716/go-balance-service/internal/app/account/domain"
)

// AccountStore 帳戶儲存介面
// 查無資料時回傳 (nil, nil)，由上層轉成對應的業務錯誤
type AccountStore interface {
	FindUserByID(ctx context.Context, id int64) (*domain.AccountUser, error)
	FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error)
	SaveAccount(ctx context.Context, account *domain.Account) error
}

// TransactionStore 交易紀錄儲存介面
type TransactionStore interface {
	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	// SaveTransaction 回傳寫入後的紀錄（含儲存層配發的欄位）
	SaveTransaction(ctx context.Context, tran *domain.Transaction) (*domain.Transaction, error)
}

// Transactor 單一工作單元
// fn 內的所有讀寫要嘛全部生效，要嘛全部不生效
type Transactor interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}
