package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-balance-service/internal/app/account/domain"
)

// TransactionResult 交易結果 DTO，回傳給呼叫端（API 層）
type TransactionResult struct {
	AccountNumber   string
	TransactionType domain.TransactionType
	Result          domain.TransactionResult
	TransactionID   string
	Amount          int64
	BalanceSnapshot int64
	TransactedAt    time.Time
}

// TransactionService 是扣款/取消的核心協調者
// 流程固定為：查資料 -> 純驗證 -> 改餘額 -> 寫交易紀錄
type TransactionService struct {
	accounts     AccountStore
	transactions TransactionStore
	tx           Transactor

	// newID, now 可注入，方便測試控制交易號與時間邊界
	newID func() string
	now   func() time.Time
}

// Option 定義 TransactionService 的配置選項函數
type Option func(*TransactionService)

// WithIDGenerator 替換交易號產生器（測試用）
func WithIDGenerator(fn func() string) Option {
	return func(s *TransactionService) {
		s.newID = fn
	}
}

// WithClock 替換時鐘（測試一年取消期限的邊界用）
func WithClock(fn func() time.Time) Option {
	return func(s *TransactionService) {
		s.now = fn
	}
}

// NewTransactionService 建立 TransactionService
func NewTransactionService(accounts AccountStore, transactions TransactionStore, tx Transactor, opts ...Option) *TransactionService {
	s := &TransactionService{
		accounts:     accounts,
		transactions: transactions,
		tx:           tx,
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UseBalance 扣款
//
// 參數:
//
//	ctx: 上下文
//	userID: 請求扣款的使用者 ID
//	accountNumber: 帳號
//	amount: 扣款金額（最小幣值單位）
//
// 回傳:
//
//	*TransactionResult: 成功時的交易結果
//	error: 業務錯誤（見 domain/errors.go）或儲存層錯誤
func (s *TransactionService) UseBalance(ctx context.Context, userID int64, accountNumber string, amount int64) (*TransactionResult, error) {
	// 金額檢查最先做，這個階段失敗不留任何紀錄
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var result *TransactionResult
	err := s.tx.Atomic(ctx, func(ctx context.Context) error {
		user, err := s.accounts.FindUserByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}

		account, err := s.accounts.FindAccountByNumber(ctx, accountNumber)
		if err != nil {
			return err
		}
		if account == nil {
			return domain.ErrAccountNotFound
		}

		if err := domain.ValidateUseBalance(user, account, amount); err != nil {
			return err
		}

		if err := account.UseBalance(amount); err != nil {
			return err
		}
		if err := s.accounts.SaveAccount(ctx, account); err != nil {
			return err
		}

		saved, err := s.transactions.SaveTransaction(ctx, &domain.Transaction{
			AccountID:       account.ID,
			AccountNumber:   account.AccountNumber,
			Type:            domain.TransactionTypeUse,
			Result:          domain.TransactionResultSuccess,
			Amount:          amount,
			BalanceSnapshot: account.Balance,
			TransactionID:   s.newID(),
			TransactedAt:    s.now(),
		})
		if err != nil {
			return err
		}
		result = resultFrom(saved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SaveFailedUseTransaction 留下扣款失敗的稽核紀錄
// 由呼叫端在扣款流程出錯後補呼叫；餘額不會被改動
func (s *TransactionService) SaveFailedUseTransaction(ctx context.Context, accountNumber string, amount int64) error {
	return s.saveFailedTransaction(ctx, domain.TransactionTypeUse, accountNumber, amount)
}

// CancelBalance 取消先前的扣款，全額回補
//
// 參數:
//
//	ctx: 上下文
//	transactionID: 原扣款交易的外部追蹤號
//	accountNumber: 帳號
//	amount: 取消金額，必須等於原交易金額
//
// 回傳:
//
//	*TransactionResult: 成功時的交易結果
//	error: 業務錯誤或儲存層錯誤
func (s *TransactionService) CancelBalance(ctx context.Context, transactionID string, accountNumber string, amount int64) (*TransactionResult, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var result *TransactionResult
	err := s.tx.Atomic(ctx, func(ctx context.Context) error {
		tran, err := s.transactions.FindByTransactionID(ctx, transactionID)
		if err != nil {
			return err
		}
		if tran == nil {
			return domain.ErrTransactionNotFound
		}

		account, err := s.accounts.FindAccountByNumber(ctx, accountNumber)
		if err != nil {
			return err
		}
		if account == nil {
			return domain.ErrAccountNotFound
		}

		if err := domain.ValidateCancelBalance(tran, account, amount, s.now()); err != nil {
			return err
		}

		if err := account.CancelBalance(amount); err != nil {
			return err
		}
		if err := s.accounts.SaveAccount(ctx, account); err != nil {
			return err
		}

		// 取消是獨立的一筆新紀錄，不回頭改原交易
		saved, err := s.transactions.SaveTransaction(ctx, &domain.Transaction{
			AccountID:       account.ID,
			AccountNumber:   account.AccountNumber,
			Type:            domain.TransactionTypeCancel,
			Result:          domain.TransactionResultSuccess,
			Amount:          amount,
			BalanceSnapshot: account.Balance,
			TransactionID:   s.newID(),
			TransactedAt:    s.now(),
		})
		if err != nil {
			return err
		}
		result = resultFrom(saved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SaveFailedCancelTransaction 留下取消失敗的稽核紀錄
func (s *TransactionService) SaveFailedCancelTransaction(ctx context.Context, accountNumber string, amount int64) error {
	return s.saveFailedTransaction(ctx, domain.TransactionTypeCancel, accountNumber, amount)
}

// QueryTransaction 以外部追蹤號查詢交易
func (s *TransactionService) QueryTransaction(ctx context.Context, transactionID string) (*TransactionResult, error) {
	tran, err := s.transactions.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tran == nil {
		return nil, domain.ErrTransactionNotFound
	}
	return resultFrom(tran), nil
}

// saveFailedTransaction 寫入失敗紀錄
// 帳戶必須存在（找不到帳戶的失敗本來就不留紀錄），快照為未改動的當下餘額
func (s *TransactionService) saveFailedTransaction(ctx context.Context, tranType domain.TransactionType, accountNumber string, amount int64) error {
	account, err := s.accounts.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return err
	}
	if account == nil {
		return domain.ErrAccountNotFound
	}

	_, err = s.transactions.SaveTransaction(ctx, &domain.Transaction{
		AccountID:       account.ID,
		AccountNumber:   account.AccountNumber,
		Type:            tranType,
		Result:          domain.TransactionResultFail,
		Amount:          amount,
		BalanceSnapshot: account.Balance,
		TransactionID:   s.newID(),
		TransactedAt:    s.now(),
	})
	return err
}

func resultFrom(tran *domain.Transaction) *TransactionResult {
	return &TransactionResult{
		AccountNumber:   tran.AccountNumber,
		TransactionType: tran.Type,
		Result:          tran.Result,
		TransactionID:   tran.TransactionID,
		Amount:          tran.Amount,
		BalanceSnapshot: tran.BalanceSnapshot,
		TransactedAt:    tran.TransactedAt,
	}
}
