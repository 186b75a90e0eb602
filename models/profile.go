package models

// UserProfile 관리자 패널 사용자 프로필 (user_profiles/{userId})
type UserProfile struct {
	ID          string          `json:"id,omitempty"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Role        string          `json:"role"`
	AvatarURL   string          `json:"avatarUrl"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	LastLogin   string          `json:"lastLogin,omitempty"`
	LastUpdated string          `json:"lastUpdated,omitempty"`
	Preferences UserPreferences `json:"preferences"`
}

// UserPreferences UI 환경설정
type UserPreferences struct {
	DarkMode             bool `json:"darkMode"`
	NotificationsEnabled bool `json:"notificationsEnabled"`
	EmailAlerts          bool `json:"emailAlerts"`
}

// 사용자 역할 상수
const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleViewer = "viewer"
)

// IsValidRole reports whether role is one of the known profile roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleUser, RoleViewer:
		return true
	}
	return false
}
