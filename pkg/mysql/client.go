package mysql

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 資料庫還沒就緒時的重試參數（容器環境常見）
const (
	connectMaxRetries    = 10
	connectRetryInterval = 2 * time.Second
)

// Client 封裝 GORM DB 實例
type Client struct {
	db *gorm.DB
}

// NewClient 建立並回傳一個新的 MySQL 客戶端實例 (GORM)
//
// 參數:
//
//	cfg: Config - MySQL 連線配置
//
// 回傳值:
//
//	*Client: 封裝後的 MySQL 客戶端
//	error: 若連線失敗則回傳錯誤
func NewClient(cfg Config) (*Client, error) {
	gormConfig := &gorm.Config{
		// 預設不包隱式事務；需要原子性的流程都會走明確的 Transaction
		SkipDefaultTransaction: true,
		Logger:                 newLogger(cfg.LogLevel),
	}

	db, err := connect(cfg, gormConfig)
	if err != nil {
		return nil, err
	}

	// 取得底層 sql.DB 物件以設定連線池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &Client{db: db}, nil
}

// connect 嘗試連線，失敗時間隔重試
func connect(cfg Config, gormConfig *gorm.Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < connectMaxRetries; i++ {
		db, err = gorm.Open(mysql.Open(cfg.DSN()), gormConfig)
		if err == nil {
			// 確認連線真的活著
			rawDB, dbErr := db.DB()
			if dbErr == nil {
				if err = rawDB.Ping(); err == nil {
					return db, nil
				}
			} else {
				err = dbErr
			}
		}
		if i < connectMaxRetries-1 {
			fmt.Printf("failed to connect to mysql (attempt %d/%d): %v, retrying in %v\n",
				i+1, connectMaxRetries, err, connectRetryInterval)
			time.Sleep(connectRetryInterval)
		}
	}
	return nil, fmt.Errorf("failed to connect to mysql after %d attempts: %w", connectMaxRetries, err)
}

// DB 回傳底層的 *gorm.DB 實例，供 adapter 層使用
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close 關閉資料庫連線
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newLogger 根據配置建立 GORM Logger
func newLogger(level string) logger.Interface {
	var logLevel logger.LogLevel
	switch level {
	case "info":
		logLevel = logger.Info
	case "warn":
		logLevel = logger.Warn
	case "silent":
		logLevel = logger.Silent
	default:
		// 預設只記錄錯誤
		logLevel = logger.Error
	}
	return logger.Default.LogMode(logLevel)
}
