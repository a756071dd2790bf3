package configs

import (
	"fmt"
	"log"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	dbMaxRetries = 10
	dbRetryDelay = 5 * time.Second
)

func dsn(env ENV) string {
	cfg := mysqldriver.NewConfig()
	cfg.User = env.DBUser
	cfg.Passwd = env.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = env.DBHost + ":" + env.DBPort
	cfg.DBName = env.DBName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// OpenConnection keeps retrying while the database container starts up.
// TranslateError is on so unique index violations surface as
// gorm.ErrDuplicatedKey.
func OpenConnection(env ENV) (*gorm.DB, error) {
	for i := 0; i < dbMaxRetries; i++ {
		log.Printf("Attempting to connect to database %s@%s:%s/%s (Attempt %d/%d)", env.DBUser, env.DBHost, env.DBPort, env.DBName, i+1, dbMaxRetries)
		db, err := gorm.Open(mysql.Open(dsn(env)), &gorm.Config{TranslateError: true})
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					sqlDB.SetMaxOpenConns(25)
					sqlDB.SetMaxIdleConns(10)
					sqlDB.SetConnMaxLifetime(30 * time.Minute)
					log.Println("✅ Database connection successful!")
					return db, nil
				}
			}
			log.Printf("❌ Failed to ping database: %v. Retrying in %v...", pingErr, dbRetryDelay)
		} else {
			log.Printf("❌ Failed to open GORM connection: %v. Retrying in %v...", err, dbRetryDelay)
		}

		time.Sleep(dbRetryDelay)
	}

	return nil, fmt.Errorf("failed to connect to the database after %d retries", dbMaxRetries)
}
