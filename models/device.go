package models

// DeviceInfo 클라이언트가 전달하는 디바이스 정보
type DeviceInfo struct {
	Hostname string `json:"hostname"`
	System   string `json:"system"`
	Release  string `json:"release"`
	Machine  string `json:"machine"`
	IP       string `json:"ip"`
}

// DeviceRegistration 라이선스에 등록된 디바이스 (license_device_mapping/{autoId})
type DeviceRegistration struct {
	ID           string     `json:"id"`
	LicenseID    string     `json:"licenseId"`
	DeviceID     string     `json:"deviceId"`
	Hostname     string     `json:"hostname"`
	DeviceInfo   DeviceInfo `json:"deviceInfo"`
	RegisteredAt string     `json:"registeredAt"`
	LastAccessed string     `json:"lastAccessed"`
}

// DeviceIdentity 등록 요청에 포함되는 디바이스 식별 정보
type DeviceIdentity struct {
	DeviceID   string     `json:"deviceId"`
	Hostname   string     `json:"hostname"`
	DeviceInfo DeviceInfo `json:"deviceInfo"`
}

// RegisterDeviceRequest 관리자 디바이스 등록 요청
type RegisterDeviceRequest struct {
	LicenseID string         `json:"licenseId"`
	Device    DeviceIdentity `json:"device"`
}

// RevokeDeviceRequest 디바이스 해지 요청
type RevokeDeviceRequest struct {
	RegistrationID string `json:"registrationId"`
	LicenseID      string `json:"licenseId"`
}

// ActivateRequest 라이선스 활성화 + 디바이스 등록 요청
type ActivateRequest struct {
	LicenseKey string         `json:"licenseKey"`
	Device     DeviceIdentity `json:"device"`
}
