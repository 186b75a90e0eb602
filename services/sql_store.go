package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Dialect selects the SQL flavour for statements that differ between drivers.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// Stores bundles one implementation of every store.
type Stores struct {
	Licenses LicenseStore
	Quotas   QuotaStore
	Devices  DeviceStore
	Activity ActivityStore
	Profiles ProfileStore
}

// NewSQLStores는 하나의 SQLExecutor를 공유하는 저장소 구현체들을 생성합니다.
func NewSQLStores(db SQLExecutor, dialect Dialect) Stores {
	return Stores{
		Licenses: NewSQLLicenseStore(db),
		Quotas:   NewSQLQuotaStore(db, dialect),
		Devices:  NewSQLDeviceStore(db),
		Activity: NewSQLActivityStore(db),
		Profiles: NewSQLProfileStore(db, dialect),
	}
}

// isDuplicateKeyError는 UNIQUE/PRIMARY KEY 제약 위반 여부를 판별합니다.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: PRIMARY KEY")
}

func nullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// prefixUpperBound closes a licenseId range so that
// id >= prefix AND id <= prefixUpperBound(prefix) selects the prefix.
func prefixUpperBound(prefix string) string {
	return prefix + "\uf8ff"
}
