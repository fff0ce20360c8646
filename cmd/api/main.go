package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	http_adapter "github.com/JoeShih716/go-balance-service/internal/app/account/adapter/in/http"
	memory_adapter "github.com/JoeShih716/go-balance-service/internal/app/account/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-balance-service/internal/app/account/adapter/out/mysql"
	"github.com/JoeShih716/go-balance-service/internal/app/account/domain"
	"github.com/JoeShih716/go-balance-service/internal/app/account/usecase"
	"github.com/JoeShih716/go-balance-service/pkg/mysql"
	"github.com/JoeShih716/go-balance-service/pkg/wal"
)

// SeedAccount 記憶體後端的初始帳戶（帳戶開立不在本服務範圍內）
type SeedAccount struct {
	UserID        int64  `yaml:"user_id"`
	UserName      string `yaml:"user_name"`
	AccountNumber string `yaml:"account_number"`
	Balance       int64  `yaml:"balance"`
}

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Storage struct {
		// Backend: "mysql" 或 "memory"
		Backend string `yaml:"backend"`
		// WALPath: memory 後端的交易日誌檔
		WALPath string `yaml:"wal_path"`
	} `yaml:"storage"`
	MySQL mysql.Config  `yaml:"mysql"`
	Seed  []SeedAccount `yaml:"seed"`
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// 1. 載入設定
	cfg := loadConfig(logger)

	// 2. 依設定選擇儲存後端
	var (
		accounts     usecase.AccountStore
		transactions usecase.TransactionStore
		transactor   usecase.Transactor
	)
	switch cfg.Storage.Backend {
	case "mysql":
		client, err := mysql.NewClient(cfg.MySQL)
		if err != nil {
			logger.Fatal("connect to mysql", zap.Error(err))
		}
		defer client.Close()

		store := mysql_adapter.NewStore(client)
		if err := store.AutoMigrate(); err != nil {
			logger.Fatal("migrate schema", zap.Error(err))
		}
		accounts, transactions, transactor = store, store, store
		logger.Info("using mysql storage", zap.String("host", cfg.MySQL.Host))

	case "memory":
		walFile, err := wal.NewWAL(cfg.Storage.WALPath)
		if err != nil {
			logger.Fatal("open wal", zap.Error(err))
		}
		defer walFile.Close()

		users, seedAccounts := buildSeed(cfg.Seed)
		store, err := memory_adapter.NewStore(users, seedAccounts, walFile)
		if err != nil {
			logger.Fatal("recover memory store from wal", zap.Error(err))
		}
		accounts, transactions, transactor = store, store, store
		logger.Info("using memory storage",
			zap.String("wal", cfg.Storage.WALPath),
			zap.Int("seed_accounts", len(seedAccounts)))

	default:
		logger.Fatal("invalid storage backend", zap.String("backend", cfg.Storage.Backend))
	}

	// 3. 組裝核心服務與 API Server
	service := usecase.NewTransactionService(accounts, transactions, transactor)
	server := http_adapter.NewServer(service, logger)

	go func() {
		logger.Info("starting api server", zap.String("addr", cfg.Server.Addr))
		if err := server.Listen(cfg.Server.Addr); err != nil {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	// 4. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	if err := server.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func loadConfig(logger *zap.Logger) Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	cfgData, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("read config file", zap.Error(err))
	}
	var cfg Config
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		logger.Fatal("parse config", zap.Error(err))
	}

	// 補全預設配置（yaml 沒寫時）
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Storage.WALPath == "" {
		cfg.Storage.WALPath = "transactions.log"
	}
	if cfg.MySQL.MaxOpenConns == 0 {
		cfg.MySQL.MaxOpenConns = 100
	}
	if cfg.MySQL.MaxIdleConns == 0 {
		cfg.MySQL.MaxIdleConns = 10
	}
	if cfg.MySQL.ConnMaxLifetime == 0 {
		cfg.MySQL.ConnMaxLifetime = 30 * time.Minute
	}
	return cfg
}

// buildSeed 把設定檔的初始資料轉成記憶體儲存的輸入
func buildSeed(seed []SeedAccount) (map[int64]*domain.AccountUser, map[string]*domain.Account) {
	users := make(map[int64]*domain.AccountUser, len(seed))
	accounts := make(map[string]*domain.Account, len(seed))
	for _, s := range seed {
		users[s.UserID] = &domain.AccountUser{
			ID:   s.UserID,
			Name: s.UserName,
		}
		accounts[s.AccountNumber] = &domain.Account{
			OwnerID:       s.UserID,
			AccountNumber: s.AccountNumber,
			Status:        domain.AccountStatusInUse,
			Balance:       s.Balance,
		}
	}
	return users, accounts
}
