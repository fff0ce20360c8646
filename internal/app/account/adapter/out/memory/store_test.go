package memory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-balance-service/internal/app/account/domain"
	"github.com/JoeShih716/go-balance-service/pkg/wal"
)

func seedMaps(balance int64) (map[int64]*domain.AccountUser, map[string]*domain.Account) {
	users := map[int64]*domain.AccountUser{
		12: {ID: 12, Name: "Pobi"},
	}
	accounts := map[string]*domain.Account{
		"1000000012": {
			OwnerID:       12,
			AccountNumber: "1000000012",
			Status:        domain.AccountStatusInUse,
			Balance:       balance,
		},
	}
	return users, accounts
}

func TestStore_FindAndSave(t *testing.T) {
	users, accounts := seedMaps(10000)
	store, err := NewStore(users, accounts, nil)
	require.NoError(t, err)
	ctx := context.Background()

	user, err := store.FindUserByID(ctx, 12)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Pobi", user.Name)

	missing, err := store.FindUserByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	account, err := store.FindAccountByNumber(ctx, "1000000012")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.NotZero(t, account.ID)

	// 取出的物件是副本，改了不寫回就不會影響儲存的資料
	account.Balance = 1
	again, err := store.FindAccountByNumber(ctx, "1000000012")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), again.Balance)

	account.Balance = 9800
	require.NoError(t, store.SaveAccount(ctx, account))
	saved, err := store.FindAccountByNumber(ctx, "1000000012")
	require.NoError(t, err)
	assert.Equal(t, int64(9800), saved.Balance)
}

func TestStore_SaveTransactionAssignsID(t *testing.T) {
	users, accounts := seedMaps(10000)
	store, err := NewStore(users, accounts, nil)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := store.SaveTransaction(ctx, &domain.Transaction{TransactionID: "t1"})
	require.NoError(t, err)
	second, err := store.SaveTransaction(ctx, &domain.Transaction{TransactionID: "t2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func TestStore_AtomicReentrantLookups(t *testing.T) {
	users, accounts := seedMaps(10000)
	store, err := NewStore(users, accounts, nil)
	require.NoError(t, err)

	// Atomic 區段內的讀寫不可跟外層的鎖互相卡死
	err = store.Atomic(context.Background(), func(ctx context.Context) error {
		account, err := store.FindAccountByNumber(ctx, "1000000012")
		if err != nil {
			return err
		}
		account.Balance -= 200
		return store.SaveAccount(ctx, account)
	})
	require.NoError(t, err)

	account, err := store.FindAccountByNumber(context.Background(), "1000000012")
	require.NoError(t, err)
	assert.Equal(t, int64(9800), account.Balance)
}

func TestStore_RecoverFromWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.log")
	transactedAt := time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)

	// 第一次啟動：扣款 200 成功、再留一筆失敗紀錄
	w, err := wal.NewWAL(path)
	require.NoError(t, err)
	users, accounts := seedMaps(10000)
	store, err := NewStore(users, accounts, w)
	require.NoError(t, err)
	ctx := context.Background()

	account, err := store.FindAccountByNumber(ctx, "1000000012")
	require.NoError(t, err)
	account.Balance -= 200
	require.NoError(t, store.SaveAccount(ctx, account))
	_, err = store.SaveTransaction(ctx, &domain.Transaction{
		AccountID:       account.ID,
		AccountNumber:   account.AccountNumber,
		Type:            domain.TransactionTypeUse,
		Result:          domain.TransactionResultSuccess,
		Amount:          200,
		BalanceSnapshot: 9800,
		TransactionID:   "t1",
		TransactedAt:    transactedAt,
	})
	require.NoError(t, err)
	_, err = store.SaveTransaction(ctx, &domain.Transaction{
		AccountID:       account.ID,
		AccountNumber:   account.AccountNumber,
		Type:            domain.TransactionTypeUse,
		Result:          domain.TransactionResultFail,
		Amount:          20000,
		BalanceSnapshot: 9800,
		TransactionID:   "t2",
		TransactedAt:    transactedAt,
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// 重啟：同樣的初始資料 + WAL 重放，餘額與紀錄都要回來
	w2, err := wal.NewWAL(path)
	require.NoError(t, err)
	defer w2.Close()
	users2, accounts2 := seedMaps(10000)
	restored, err := NewStore(users2, accounts2, w2)
	require.NoError(t, err)

	account, err = restored.FindAccountByNumber(ctx, "1000000012")
	require.NoError(t, err)
	assert.Equal(t, int64(9800), account.Balance)

	tran, err := restored.FindByTransactionID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, tran)
	assert.Equal(t, domain.TransactionTypeUse, tran.Type)
	assert.Equal(t, int64(200), tran.Amount)
	assert.True(t, tran.TransactedAt.Equal(transactedAt))

	failed, err := restored.FindByTransactionID(ctx, "t2")
	require.NoError(t, err)
	require.NotNil(t, failed)
	assert.Equal(t, domain.TransactionResultFail, failed.Result)

	// 之後的新交易流水號要接在重放的後面
	next, err := restored.SaveTransaction(ctx, &domain.Transaction{TransactionID: "t3"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), next.ID)
}
