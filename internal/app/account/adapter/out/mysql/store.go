package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-balance-service/internal/app/account/domain"
	"github.com/JoeShih716/go-balance-service/internal/app/account/usecase"
	"github.com/JoeShih716/go-balance-service/pkg/mysql"
)

// accountUserRow 對應資料庫的 account_users 表
type accountUserRow struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	UpdatedAt int64 `gorm:"autoUpdateTime:milli"`
}

func (*accountUserRow) TableName() string {
	return "account_users"
}

// accountRow 對應資料庫的 accounts 表
type accountRow struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	OwnerID       int64  `gorm:"index"`
	AccountNumber string `gorm:"uniqueIndex;size:32"`
	Status        uint8
	Balance       int64
	UpdatedAt     int64 `gorm:"autoUpdateTime:milli"`
}

func (*accountRow) TableName() string {
	return "accounts"
}

// transactionRow 對應資料庫的 transactions 表
// 只增不改：每次嘗試都 Create 一筆新的
type transactionRow struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	AccountID       int64  `gorm:"index"`
	AccountNumber   string `gorm:"index;size:32"`
	Type            uint8
	Result          uint8
	Amount          int64
	BalanceSnapshot int64
	TransactionID   string `gorm:"uniqueIndex;size:36"` // 外部追蹤號 (UUID)
	TransactedAt    time.Time
	CreatedAt       int64 `gorm:"autoCreateTime:milli"`
}

func (*transactionRow) TableName() string {
	return "transactions"
}

// txKey 用來在 ctx 中攜帶進行中的 gorm 交易
type txKey struct{}

// Store 是 MySQL 版的帳戶/交易儲存 (GORM)
type Store struct {
	client *mysql.Client
}

func NewStore(client *mysql.Client) *Store {
	return &Store{
		client: client,
	}
}

// AutoMigrate 建立或更新資料表結構
func (s *Store) AutoMigrate() error {
	return s.client.DB().AutoMigrate(&accountUserRow{}, &accountRow{}, &transactionRow{})
}

// Atomic 將 fn 內的所有讀寫包進同一個資料庫交易
// fn 收到的 ctx 帶有交易控制代碼，Store 的其他方法會優先使用它
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// db 回傳目前應使用的資料庫控制代碼：交易中優先用 ctx 內的 tx
func (s *Store) db(ctx context.Context) (*gorm.DB, bool) {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx, true
	}
	return s.client.DB().WithContext(ctx), false
}

// FindUserByID 以 ID 查使用者，查無回傳 (nil, nil)
func (s *Store) FindUserByID(ctx context.Context, id int64) (*domain.AccountUser, error) {
	db, _ := s.db(ctx)
	var row accountUserRow
	err := db.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.AccountUser{
		ID:   row.ID,
		Name: row.Name,
	}, nil
}

// FindAccountByNumber 以帳號查帳戶，查無回傳 (nil, nil)
// 在 Atomic 區段內會加悲觀鎖 (SELECT ... FOR UPDATE)，
// 同一帳戶的並行請求在儲存層這裡被序列化
func (s *Store) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	db, inTx := s.db(ctx)
	if inTx {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row accountRow
	err := db.Where("account_number = ?", number).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return accountToDomain(&row), nil
}

// SaveAccount 寫回帳戶
func (s *Store) SaveAccount(ctx context.Context, account *domain.Account) error {
	db, _ := s.db(ctx)
	row := accountRow{
		ID:            account.ID,
		OwnerID:       account.OwnerID,
		AccountNumber: account.AccountNumber,
		Status:        uint8(account.Status),
		Balance:       account.Balance,
	}
	if err := db.Save(&row).Error; err != nil {
		return err
	}
	account.ID = row.ID
	return nil
}

// FindByTransactionID 以外部追蹤號查交易，查無回傳 (nil, nil)
func (s *Store) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	db, _ := s.db(ctx)
	var row transactionRow
	err := db.Where("transaction_id = ?", transactionID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return transactionToDomain(&row), nil
}

// SaveTransaction 寫入一筆交易紀錄，回傳含流水號的結果
func (s *Store) SaveTransaction(ctx context.Context, tran *domain.Transaction) (*domain.Transaction, error) {
	db, _ := s.db(ctx)
	row := transactionRow{
		AccountID:       tran.AccountID,
		AccountNumber:   tran.AccountNumber,
		Type:            uint8(tran.Type),
		Result:          uint8(tran.Result),
		Amount:          tran.Amount,
		BalanceSnapshot: tran.BalanceSnapshot,
		TransactionID:   tran.TransactionID,
		TransactedAt:    tran.TransactedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return nil, err
	}
	return transactionToDomain(&row), nil
}

func accountToDomain(row *accountRow) *domain.Account {
	return &domain.Account{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		AccountNumber: row.AccountNumber,
		Status:        domain.AccountStatus(row.Status),
		Balance:       row.Balance,
	}
}

func transactionToDomain(row *transactionRow) *domain.Transaction {
	return &domain.Transaction{
		ID:              row.ID,
		AccountID:       row.AccountID,
		AccountNumber:   row.AccountNumber,
		Type:            domain.TransactionType(row.Type),
		Result:          domain.TransactionResult(row.Result),
		Amount:          row.Amount,
		BalanceSnapshot: row.BalanceSnapshot,
		TransactionID:   row.TransactionID,
		TransactedAt:    row.TransactedAt,
	}
}

var (
	_ usecase.AccountStore     = (*Store)(nil)
	_ usecase.TransactionStore = (*Store)(nil)
	_ usecase.Transactor       = (*Store)(nil)
)
