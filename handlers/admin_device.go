package handlers

import (
	"context"
	"net/http"
	"strings"

	"licensepanel/logger"
	"licensepanel/middleware"
	"licensepanel/models"
	"licensepanel/services"
)

// DeviceHandler는 디바이스 등록 정보와 라이선스별 디바이스 카운터 요청을 처리한다.
type DeviceHandler struct {
	service services.DeviceService
}

// NewDeviceHandler는 디바이스 핸들러를 생성한다.
func NewDeviceHandler(service services.DeviceService) *DeviceHandler {
	return &DeviceHandler{service: service}
}

func actorFields(r *http.Request, licenseID string) map[string]interface{} {
	return map[string]interface{}{
		"request_id": middleware.RequestIDFromContext(r.Context()),
		"user":       middleware.UserFromContext(r.Context()),
		"license_id": licenseID,
	}
}

// ListDevices 라이선스 디바이스 목록 조회
// @Summary 라이선스 디바이스 목록 조회
// @Description 라이선스에 등록된 디바이스 목록을 등록 순으로 조회합니다
// @Tags 관리자 - 디바이스
// @Produce json
// @Security BearerAuth
// @Param licenseId query string true "라이선스 ID"
// @Success 200 {object} models.APIResponse{data=[]models.DeviceRegistration} "조회 성공"
// @Failure 400 {object} models.APIResponse "라이선스 ID 누락"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/devices [get]
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	licenseID := r.URL.Query().Get("licenseId")
	devices, err := h.service.ListDevices(r.Context(), licenseID)
	if err != nil {
		writeServiceError(w, err, "Failed to query devices", actorFields(r, licenseID))
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Devices retrieved", devices))
}

// RegisterDevice 디바이스 등록 (관리자)
// @Summary 디바이스 등록 (관리자)
// @Description 라이선스에 디바이스를 직접 등록합니다. 카운터는 변경되지 않습니다
// @Tags 관리자 - 디바이스
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RegisterDeviceRequest true "등록 정보"
// @Success 201 {object} models.APIResponse{data=models.DeviceRegistration} "등록 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 409 {object} models.APIResponse "이미 등록된 디바이스"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/devices/register [post]
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req models.RegisterDeviceRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse("Invalid request body", err))
		return
	}

	reg, err := h.service.RegisterDevice(r.Context(), req.LicenseID, req.Device)
	if err != nil {
		writeServiceError(w, err, "Failed to register device", actorFields(r, req.LicenseID))
		return
	}

	fields := actorFields(r, reg.LicenseID)
	fields["device_id"] = reg.DeviceID
	logger.WithFields(fields).Info("Device registered by admin")
	writeJSON(w, http.StatusCreated, models.SuccessResponse("Device registered successfully", reg))
}

// RevokeDevice 디바이스 해지
// @Summary 디바이스 해지
// @Description 디바이스 등록을 삭제한 뒤 카운터를 1 감소시킵니다 (0 미만으로 내려가지 않음)
// @Tags 관리자 - 디바이스
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RevokeDeviceRequest true "해지할 등록 정보"
// @Success 200 {object} models.APIResponse "해지 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 404 {object} models.APIResponse "등록 정보 없음"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/devices/revoke [post]
func (h *DeviceHandler) RevokeDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req models.RevokeDeviceRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse("Invalid request body", err))
		return
	}
	if strings.TrimSpace(req.RegistrationID) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse("registrationId is required"))
		return
	}

	if err := h.service.RevokeDevice(r.Context(), req.RegistrationID, req.LicenseID); err != nil {
		writeServiceError(w, err, "Failed to revoke device", actorFields(r, req.LicenseID))
		return
	}

	fields := actorFields(r, req.LicenseID)
	fields["registration_id"] = req.RegistrationID
	logger.WithFields(fields).Info("Device revoked")
	writeJSON(w, http.StatusOK, models.SuccessResponse("Device revoked successfully", nil))
}

// GetQuota 디바이스 카운터 조회
// @Summary 디바이스 카운터 조회
// @Description 라이선스의 현재 디바이스 수와 한도를 조회합니다. limit -1은 무제한입니다
// @Tags 관리자 - 디바이스 한도
// @Produce json
// @Security BearerAuth
// @Param licenseId query string true "라이선스 ID"
// @Success 200 {object} models.APIResponse{data=models.DeviceQuota} "조회 성공"
// @Failure 400 {object} models.APIResponse "라이선스 ID 누락"
// @Failure 404 {object} models.APIResponse "카운터 없음 (아직 활성화되지 않음)"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/quota [get]
func (h *DeviceHandler) GetQuota(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	licenseID := r.URL.Query().Get("licenseId")
	quota, err := h.service.GetQuota(r.Context(), licenseID)
	if err != nil {
		writeServiceError(w, err, "Failed to get device quota", actorFields(r, licenseID))
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Device quota retrieved", quota))
}

// ResetQuota 디바이스 카운터 초기화
// @Summary 디바이스 카운터 초기화
// @Description 카운터를 0으로 초기화합니다. 등록된 디바이스는 유지되므로 이후 reconcile로 맞출 수 있습니다
// @Tags 관리자 - 디바이스 한도
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.QuotaRequest true "라이선스 ID"
// @Success 200 {object} models.APIResponse{data=models.DeviceQuota} "초기화 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/quota/reset [post]
func (h *DeviceHandler) ResetQuota(w http.ResponseWriter, r *http.Request) {
	h.quotaAction(w, r, "Device count reset", h.service.ResetQuota)
}

// ReconcileQuota 디바이스 카운터 재계산
// @Summary 디바이스 카운터 재계산
// @Description 실제 등록된 디바이스 수로 카운터를 덮어씁니다. 여러 번 호출해도 결과가 같습니다
// @Tags 관리자 - 디바이스 한도
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.QuotaRequest true "라이선스 ID"
// @Success 200 {object} models.APIResponse{data=models.DeviceQuota} "재계산 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/quota/reconcile [post]
func (h *DeviceHandler) ReconcileQuota(w http.ResponseWriter, r *http.Request) {
	h.quotaAction(w, r, "Device count reconciled", h.service.ReconcileQuota)
}

func (h *DeviceHandler) quotaAction(w http.ResponseWriter, r *http.Request, done string, action func(ctx context.Context, licenseID string) (models.DeviceQuota, error)) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req models.QuotaRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse("Invalid request body", err))
		return
	}

	quota, err := action(r.Context(), req.LicenseID)
	if err != nil {
		writeServiceError(w, err, "Failed to update device quota", actorFields(r, req.LicenseID))
		return
	}

	fields := actorFields(r, quota.LicenseID)
	fields["count"] = quota.Count
	logger.WithFields(fields).Info("%s", done)
	writeJSON(w, http.StatusOK, models.SuccessResponse(done, quota))
}

// SetLimit 디바이스 한도 변경
// @Summary 디바이스 한도 변경
// @Description 라이선스의 디바이스 한도를 변경합니다. -1은 무제한, 그 외에는 1 이상이어야 합니다. 현재 카운트는 유지됩니다
// @Tags 관리자 - 디바이스 한도
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SetLimitRequest true "한도 정보"
// @Success 200 {object} models.APIResponse{data=models.DeviceQuota} "변경 성공"
// @Failure 400 {object} models.APIResponse "잘못된 한도"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/quota/limit [post]
func (h *DeviceHandler) SetLimit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}

	var req models.SetLimitRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse("Invalid request body", err))
		return
	}

	quota, err := h.service.SetLimit(r.Context(), req.LicenseID, req.Limit)
	if err != nil {
		writeServiceError(w, err, "Failed to set device limit", actorFields(r, req.LicenseID))
		return
	}

	fields := actorFields(r, quota.LicenseID)
	fields["limit"] = quota.Limit.String()
	logger.WithFields(fields).Info("Device limit changed")
	writeJSON(w, http.StatusOK, models.SuccessResponse("Device limit updated", quota))
}

// AuditQuotas 디바이스 카운터 점검
// @Summary 디바이스 카운터 점검
// @Description 등록된 디바이스 수와 카운터가 다른 라이선스를 보고합니다. 상태는 변경하지 않습니다
// @Tags 관리자 - 디바이스 한도
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.QuotaDrift} "점검 결과"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/quota/audit [get]
func (h *DeviceHandler) AuditQuotas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	drifts, err := h.service.AuditQuotas(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to audit device quotas", nil)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Device quota audit completed", drifts))
}
