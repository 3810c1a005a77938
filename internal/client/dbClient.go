package client

import (
	"strings"
	"time"

	"digimarket/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the database from a DSN. DSNs with an @tcp host go to mysql,
// anything else is treated as a sqlite path (local dev, tests).
func InitDB(databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.Contains(databaseURL, "@tcp(") {
		dialector = mysql.Open(databaseURL)
	} else {
		dialector = sqlite.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true, // duplicate-key errors surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Plan{},
		&model.Product{},
		&model.Coupon{},
		&model.Sale{},
		&model.AffiliateRelation{},
		&model.Withdrawal{},
		&model.PaymentEvent{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
