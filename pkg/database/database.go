package database

import (
	"fmt"
	"log"

	"learnpath_backend/internal/config"
	"learnpath_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ShouldAutoMigrate release 模式默认跳过启动迁移，--migrate / --migrate-only 可强制开启
func ShouldAutoMigrate(mode string, force bool) bool {
	return mode != "release" || force
}

func InitDB(cfg *config.DatabaseConfig, autoMigrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// 唯一键冲突统一转换为 gorm.ErrDuplicatedKey
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if autoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}

// Migrate 执行表结构迁移，测试中也会对 sqlite 内存库调用
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.LearningPath{},
		&model.Resource{},
		&model.Progress{},
	)
}
