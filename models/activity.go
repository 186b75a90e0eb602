package models

// ActivityLogEntry 감사 로그 (activity_logs/{autoId}), 기록 후 변경 불가
type ActivityLogEntry struct {
	ID        string `json:"id,omitempty"`
	Action    string `json:"action"`
	LicenseID string `json:"licenseId"`
	Timestamp string `json:"timestamp"`
	Details   string `json:"details"`
	User      string `json:"user,omitempty"`
}

// 활동 액션 상수
const (
	ActivityActionCreate = "create"
	ActivityActionUpdate = "update"
	ActivityActionDelete = "delete"
	ActivityActionImport = "import"
	ActivityActionExport = "export"
)

// DefaultActivityLimit is the page size used when the caller gives none.
const DefaultActivityLimit = 100
