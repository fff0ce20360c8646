package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/JoeShih716/go-balance-service/internal/app/account/domain"
	"github.com/JoeShih716/go-balance-service/internal/app/account/usecase"
	"github.com/JoeShih716/go-balance-service/pkg/wal"
)

// txKey 標記 ctx 已在 Atomic 區段內，避免重複上鎖
type txKey struct{}

// Store 是記憶體版的帳戶/交易儲存
// 供測試與單機執行使用；成功寫入的交易會記到 WAL，重啟時重放復原
//
// 結構:
//
//	users: 使用者資料 Map
//	accounts: 帳號對應帳戶資料 Map
//	transactions: 外部追蹤號對應交易紀錄 Map
//	wal: Write-Ahead Log 實例（可為 nil，測試時不落地）
type Store struct {
	mu sync.Mutex

	users        map[int64]*domain.AccountUser
	accounts     map[string]*domain.Account
	transactions map[string]*domain.Transaction

	nextAccountID     int64
	nextTransactionID int64

	wal *wal.WAL
}

// NewStore 建立記憶體儲存並從 WAL 重放歷史交易
//
// 參數:
//
//	users: 初始使用者資料 Map
//	accounts: 初始帳戶資料 Map（帳號 -> 帳戶）
//	w: WAL 實例，可為 nil
//
// 回傳:
//
//	*Store: Store 實例
//	error: WAL 重放失敗
func NewStore(users map[int64]*domain.AccountUser, accounts map[string]*domain.Account, w *wal.WAL) (*Store, error) {
	s := &Store{
		users:        make(map[int64]*domain.AccountUser, len(users)),
		accounts:     make(map[string]*domain.Account, len(accounts)),
		transactions: make(map[string]*domain.Transaction),
		wal:          w,
	}
	for id, u := range users {
		s.users[id] = cloneUser(u)
	}
	for number, a := range accounts {
		account := cloneAccount(a)
		if account.ID == 0 {
			s.nextAccountID++
			account.ID = s.nextAccountID
		} else if account.ID > s.nextAccountID {
			s.nextAccountID = account.ID
		}
		s.accounts[number] = account
	}
	if err := s.recoverFromWAL(); err != nil {
		return nil, err
	}
	return s, nil
}

// recoverFromWAL 重放 WAL 中的交易，還原交易紀錄與帳戶餘額
// 只有 NewStore 呼叫，無需上鎖（單執行緒）
func (s *Store) recoverFromWAL() error {
	if s.wal == nil {
		return nil
	}
	return s.wal.ReadAll(func(raw []byte) error {
		var tran domain.Transaction
		if err := json.Unmarshal(raw, &tran); err != nil {
			return err
		}
		s.applyRecovered(&tran)
		return nil
	})
}

// applyRecovered 套用一筆重放的交易（不再寫回 WAL）
// 成功交易的 BalanceSnapshot 就是生效後餘額，直接覆蓋即可
func (s *Store) applyRecovered(tran *domain.Transaction) {
	if tran.ID > s.nextTransactionID {
		s.nextTransactionID = tran.ID
	}
	s.transactions[tran.TransactionID] = tran
	if tran.Result != domain.TransactionResultSuccess {
		return
	}
	if account, ok := s.accounts[tran.AccountNumber]; ok {
		account.Balance = tran.BalanceSnapshot
	}
}

// Atomic 以單一 Mutex 實現工作單元：fn 執行期間獨占整個 Store
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

// lock 取得鎖；若 ctx 已在 Atomic 區段內則不重複上鎖
func (s *Store) lock(ctx context.Context) (unlock func()) {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// FindUserByID 以 ID 查使用者，查無回傳 (nil, nil)
func (s *Store) FindUserByID(ctx context.Context, id int64) (*domain.AccountUser, error) {
	defer s.lock(ctx)()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

// FindAccountByNumber 以帳號查帳戶，查無回傳 (nil, nil)
func (s *Store) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	defer s.lock(ctx)()
	account, ok := s.accounts[number]
	if !ok {
		return nil, nil
	}
	return cloneAccount(account), nil
}

// SaveAccount 寫回帳戶
func (s *Store) SaveAccount(ctx context.Context, account *domain.Account) error {
	defer s.lock(ctx)()
	saved := cloneAccount(account)
	if saved.ID == 0 {
		s.nextAccountID++
		saved.ID = s.nextAccountID
		account.ID = saved.ID
	}
	s.accounts[saved.AccountNumber] = saved
	return nil
}

// FindByTransactionID 以外部追蹤號查交易，查無回傳 (nil, nil)
func (s *Store) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	defer s.lock(ctx)()
	tran, ok := s.transactions[transactionID]
	if !ok {
		return nil, nil
	}
	return cloneTransaction(tran), nil
}

// SaveTransaction 寫入一筆交易紀錄並追加到 WAL
func (s *Store) SaveTransaction(ctx context.Context, tran *domain.Transaction) (*domain.Transaction, error) {
	defer s.lock(ctx)()
	saved := cloneTransaction(tran)
	s.nextTransactionID++
	saved.ID = s.nextTransactionID

	if s.wal != nil {
		if err := s.wal.Write(saved); err != nil {
			return nil, err
		}
	}
	s.transactions[saved.TransactionID] = saved
	return cloneTransaction(saved), nil
}

func cloneUser(u *domain.AccountUser) *domain.AccountUser {
	c := *u
	return &c
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func cloneTransaction(t *domain.Transaction) *domain.Transaction {
	c := *t
	return &c
}

var (
	_ usecase.AccountStore     = (*Store)(nil)
	_ usecase.TransactionStore = (*Store)(nil)
	_ usecase.Transactor       = (*Store)(nil)
)
