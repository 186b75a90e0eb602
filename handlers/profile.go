package handlers

import (
	"net/http"

	"licensepanel/logger"
	"licensepanel/middleware"
	"licensepanel/models"
	"licensepanel/services"
)

const (
	profileDetailPrefix = "/api/admin/profiles/"
	// profileSelf는 현재 토큰 사용자의 프로필을 가리킨다.
	profileSelf = "me"
)

// ProfileHandler는 관리자 패널 사용자 프로필 요청을 처리한다.
type ProfileHandler struct {
	service services.ProfileService
}

// NewProfileHandler는 프로필 핸들러를 생성한다.
func NewProfileHandler(service services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func callerRole(r *http.Request) string {
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		return claims.Role
	}
	return ""
}

// Detail 프로필 조회/수정 라우터. /api/admin/profiles/me는 요청자 본인이다.
func (h *ProfileHandler) Detail(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, profileDetailPrefix)
	if !ok || userID == "" {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse(services.ErrProfileNotFound.Error()))
		return
	}
	caller := middleware.UserFromContext(r.Context())
	if userID == profileSelf {
		userID = caller
	}

	switch r.Method {
	case http.MethodGet:
		h.Get(w, r, userID)
	case http.MethodPut:
		h.Update(w, r, userID, caller)
	default:
		methodNotAllowed(w)
	}
}

// Get 사용자 프로필 조회
// @Summary 사용자 프로필 조회
// @Description 사용자 프로필을 조회합니다. userId에 me를 주면 본인 프로필입니다
// @Tags 관리자 - 프로필
// @Produce json
// @Security BearerAuth
// @Param userId path string true "사용자 ID 또는 me"
// @Success 200 {object} models.APIResponse{data=models.UserProfile} "조회 성공"
// @Failure 404 {object} models.APIResponse "프로필 없음"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/profiles/{userId} [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request, userID string) {
	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to get profile", map[string]interface{}{"user_id": userID})
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Profile retrieved", profile))
}

// Update 사용자 프로필 저장
// @Summary 사용자 프로필 저장
// @Description 프로필을 생성하거나 수정합니다. 다른 사용자의 프로필과 역할은 admin만 변경할 수 있습니다
// @Tags 관리자 - 프로필
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "사용자 ID 또는 me"
// @Param request body models.UserProfile true "프로필 정보"
// @Success 200 {object} models.APIResponse{data=models.UserProfile} "저장 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 403 {object} models.APIResponse "권한 없음"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/profiles/{userId} [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request, userID, caller string) {
	var req models.UserProfile
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse("Invalid request body", err))
		return
	}

	if callerRole(r) != models.RoleAdmin && (userID != caller || req.Role != "") {
		logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"caller":  caller,
		}).Warn("Profile update denied")
		writeJSON(w, http.StatusForbidden, models.ErrorResponse("Insufficient permissions"))
		return
	}

	profile, err := h.service.Upsert(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err, "Failed to save profile", map[string]interface{}{"user_id": userID})
		return
	}

	logger.WithFields(map[string]interface{}{"user_id": userID, "caller": caller}).Info("Profile saved")
	writeJSON(w, http.StatusOK, models.SuccessResponse("Profile saved", profile))
}
