package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"licensepanel/logger"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Initialize.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Initialize 데이터베이스 연결 및 스키마 생성
// driver: "sqlite" 또는 "mysql"
// dsn: SQLite 파일 경로 또는 MySQL DSN
func Initialize(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if dsn == "" && driver == DriverSQLite {
		dsn = "./licensepanel.db"
	}

	if driver == DriverMySQL {
		// UPDATE가 값이 같아도 매칭된 행 수를 돌려주도록 설정 (없는 레코드 판별용)
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ClientFoundRows = true
		dsn = cfg.FormatDSN()
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite는 단일 writer. 메모리 DB는 연결마다 별도 DB가 되므로 반드시 1개로 제한
		db.SetMaxOpenConns(1)
	}

	// 연결 테스트
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info("Database initialized successfully (%s)", driver)
	return db, nil
}

// Migrate creates the tables used by the SQL stores if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	statements := sqliteSchema
	if driver == DriverMySQL {
		statements = mysqlSchema
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			// MySQL은 CREATE INDEX IF NOT EXISTS 미지원이라 인덱스는 테이블 정의에 포함
			if strings.Contains(err.Error(), "already exists") {
				continue
			}
			return fmt.Errorf("failed to execute SQL: %w", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	// 라이선스 테이블 (licenses/{autoId})
	`CREATE TABLE IF NOT EXISTS licenses (
		id VARCHAR(50) PRIMARY KEY,
		license_id VARCHAR(255) NOT NULL UNIQUE,
		expiry_date VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at VARCHAR(50) NOT NULL DEFAULT '',
		last_updated VARCHAR(50) NOT NULL DEFAULT ''
	)`,

	// 디바이스 카운터 (license_devices_count/{licenseId})
	`CREATE TABLE IF NOT EXISTS license_devices_count (
		license_id VARCHAR(255) PRIMARY KEY,
		device_count INTEGER NOT NULL DEFAULT 0,
		device_limit INTEGER NOT NULL DEFAULT 1,
		last_updated VARCHAR(50) NOT NULL DEFAULT ''
	)`,

	// 디바이스 등록 (license_device_mapping/{autoId})
	`CREATE TABLE IF NOT EXISTS license_device_mapping (
		id VARCHAR(50) PRIMARY KEY,
		license_id VARCHAR(255) NOT NULL,
		device_id VARCHAR(255) NOT NULL,
		hostname VARCHAR(255) NOT NULL DEFAULT '',
		device_info TEXT NOT NULL DEFAULT '{}',
		registered_at VARCHAR(50) NOT NULL DEFAULT '',
		last_accessed VARCHAR(50) NOT NULL DEFAULT '',
		UNIQUE (license_id, device_id)
	)`,

	// 감사 로그 (activity_logs/{autoId})
	`CREATE TABLE IF NOT EXISTS activity_logs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id VARCHAR(50) NOT NULL UNIQUE,
		action VARCHAR(20) NOT NULL,
		license_id VARCHAR(255) NOT NULL DEFAULT '',
		logged_at VARCHAR(50) NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		actor VARCHAR(255) NOT NULL DEFAULT ''
	)`,

	// 사용자 프로필 (user_profiles/{userId})
	`CREATE TABLE IF NOT EXISTS user_profiles (
		id VARCHAR(255) PRIMARY KEY,
		username VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		first_name VARCHAR(255) NOT NULL DEFAULT '',
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		avatar_url TEXT NOT NULL DEFAULT '',
		preferences TEXT NOT NULL DEFAULT '{}',
		created_at VARCHAR(50) NOT NULL DEFAULT '',
		last_login VARCHAR(50) NOT NULL DEFAULT '',
		last_updated VARCHAR(50) NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_devices_license ON license_device_mapping(license_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_logged ON activity_logs(logged_at)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_license ON activity_logs(license_id)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS licenses (
		id VARCHAR(50) PRIMARY KEY,
		license_id VARCHAR(255) NOT NULL UNIQUE,
		expiry_date VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT '',
		notes TEXT,
		created_at VARCHAR(50) NOT NULL DEFAULT '',
		last_updated VARCHAR(50) NOT NULL DEFAULT ''
	) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin`,

	`CREATE TABLE IF NOT EXISTS license_devices_count (
		license_id VARCHAR(255) PRIMARY KEY,
		device_count INT NOT NULL DEFAULT 0,
		device_limit INT NOT NULL DEFAULT 1,
		last_updated VARCHAR(50) NOT NULL DEFAULT ''
	) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin`,

	`CREATE TABLE IF NOT EXISTS license_device_mapping (
		id VARCHAR(50) PRIMARY KEY,
		license_id VARCHAR(255) NOT NULL,
		device_id VARCHAR(255) NOT NULL,
		hostname VARCHAR(255) NOT NULL DEFAULT '',
		device_info LONGTEXT,
		registered_at VARCHAR(50) NOT NULL DEFAULT '',
		last_accessed VARCHAR(50) NOT NULL DEFAULT '',
		UNIQUE KEY unique_device (license_id, device_id),
		INDEX idx_devices_license (license_id)
	) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin`,

	`CREATE TABLE IF NOT EXISTS activity_logs (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id VARCHAR(50) NOT NULL UNIQUE,
		action VARCHAR(20) NOT NULL,
		license_id VARCHAR(255) NOT NULL DEFAULT '',
		logged_at VARCHAR(50) NOT NULL,
		details LONGTEXT,
		actor VARCHAR(255) NOT NULL DEFAULT '',
		INDEX idx_activity_logged (logged_at),
		INDEX idx_activity_license (license_id)
	) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		id VARCHAR(255) PRIMARY KEY,
		username VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		first_name VARCHAR(255) NOT NULL DEFAULT '',
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		avatar_url TEXT,
		preferences TEXT,
		created_at VARCHAR(50) NOT NULL DEFAULT '',
		last_login VARCHAR(50) NOT NULL DEFAULT '',
		last_updated VARCHAR(50) NOT NULL DEFAULT ''
	) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci`,
}

// Close 데이터베이스 연결 종료
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
