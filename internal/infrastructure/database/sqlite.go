package database

import (
	"strings"
	"time"

	"bankdemo/internal/config"
	"bankdemo/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN 进程内 SQLite，连接关闭即丢弃
const MemoryDSN = "file::memory:"

// OpenSQLite 打开 outbox 使用的 SQLite 并迁移表结构。
// 内存库只存在于单个连接上，所以连接池固定为一个常驻连接。
func OpenSQLite(cfg *config.DatabaseConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", dsn)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}

	// 连接池配置
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	// 自动迁移表结构
	if err := db.AutoMigrate(&model.Notification{}); err != nil {
		return nil, errors.Wrap(err, "migrate notification_outbox")
	}

	return db, nil
}

// OpenMemory 使用默认配置打开一个全新的内存库
func OpenMemory(log logrus.FieldLogger) (*gorm.DB, error) {
	return OpenSQLite(&config.DatabaseConfig{DSN: MemoryDSN, LogLevel: "silent"}, log)
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
