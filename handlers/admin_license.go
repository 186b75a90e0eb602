package handlers

import (
	"net/http"
	"strings"

	"licensepanel/logger"
	"licensepanel/middleware"
	"licensepanel/models"
	"licensepanel/services"
)

const licenseDetailPrefix = "/api/admin/licenses/"

// LicenseHandler는 관리자 라이선스 레코드 요청을 처리한다.
type LicenseHandler struct {
	service services.LicenseService
}

// NewLicenseHandler는 라이선스 핸들러를 생성한다.
func NewLicenseHandler(service services.LicenseService) *LicenseHandler {
	return &LicenseHandler{service: service}
}

// Collection 라이선스 목록/검색/생성 라우터
func (h *LicenseHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("field") != "" {
			h.Search(w, r)
			return
		}
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		methodNotAllowed(w)
	}
}

// Detail 라이선스 상세/수정/삭제 라우터
func (h *LicenseHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, licenseDetailPrefix)
	if !ok || id == "" {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse(services.ErrLicenseNotFound.Error()))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.Get(w, r, id)
	case http.MethodPut:
		h.Update(w, r, id)
	case http.MethodDelete:
		h.Delete(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

// Create 라이선스 생성
// @Summary 라이선스 생성
// @Description 새로운 라이선스를 생성합니다. licenseId는 중복될 수 없습니다
// @Tags 관리자 - 라이선스
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateLicenseRequest true "라이선스 정보"
// @Success 201 {object} models.APIResponse{data=models.License} "생성 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 409 {object} models.APIResponse "중복 licenseId"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/licenses [post]
func (h *LicenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLicenseRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse("Invalid request body", err))
		return
	}

	license, err := h.service.Create(r.Context(), req, middleware.UserFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, "Failed to create license", map[string]interface{}{"license_id": req.LicenseID})
		return
	}

	logger.WithFields(map[string]interface{}{
		"id":         license.ID,
		"license_id": license.LicenseID,
	}).Info("License created")
	writeJSON(w, http.StatusCreated, models.SuccessResponse("License created successfully", license))
}

// List 라이선스 목록 조회
// @Summary 라이선스 목록 조회
// @Description licenseId 순으로 정렬된 라이선스 목록을 커서 방식으로 조회합니다
// @Tags 관리자 - 라이선스
// @Produce json
// @Security BearerAuth
// @Param after query string false "이전 페이지의 마지막 licenseId"
// @Param limit query int false "페이지 크기 (기본 10)"
// @Success 200 {object} models.PageResponse{data=[]models.License} "조회 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/licenses [get]
func (h *LicenseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse("Invalid limit", err))
		return
	}

	page, err := h.service.List(r.Context(), r.URL.Query().Get("after"), limit)
	if err != nil {
		writeServiceError(w, err, "Failed to query licenses", nil)
		return
	}

	logger.Debug("Retrieved %d licenses", len(page.Licenses))
	writeJSON(w, http.StatusOK, models.PageResponse{
		Status:  "success",
		Message: "Licenses retrieved",
		Data:    page.Licenses,
		Next:    page.Next,
	})
}

// Search 라이선스 검색
// @Summary 라이선스 검색
// @Description licenseId 접두사 또는 상태(Active/Expired)로 라이선스를 검색합니다
// @Tags 관리자 - 라이선스
// @Produce json
// @Security BearerAuth
// @Param field query string true "검색 필드 (licenseId, status)"
// @Param value query string true "검색 값"
// @Success 200 {object} models.APIResponse{data=[]models.License} "검색 성공"
// @Failure 400 {object} models.APIResponse "지원하지 않는 필드"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/licenses [get]
func (h *LicenseHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	licenses, err := h.service.Search(r.Context(), q.Get("field"), q.Get("value"))
	if err != nil {
		writeServiceError(w, err, "Failed to search licenses", map[string]interface{}{"field": q.Get("field")})
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Licenses retrieved", licenses))
}

// Get 라이선스 상세 조회
// @Summary 라이선스 상세 조회
// @Description 문서 ID로 라이선스를 조회합니다. 상태는 만료일로부터 다시 계산됩니다
// @Tags 관리자 - 라이선스
// @Produce json
// @Security BearerAuth
// @Param id path string true "라이선스 문서 ID"
// @Success 200 {object} models.APIResponse{data=models.License} "조회 성공"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 404 {object} models.APIResponse "라이선스 없음"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/licenses/{id} [get]
func (h *LicenseHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	license, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get license", map[string]interface{}{"id": id})
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("License retrieved", license))
}

// Update 라이선스 수정
// @Summary 라이선스 수정
// @Description licenseId, 만료일, 메모를 수정합니다. 변경 내역은 활동 로그에 기록됩니다
// @Tags 관리자 - 라이선스
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "라이선스 문서 ID"
// @Param request body models.UpdateLicenseRequest true "수정할 정보"
// @Success 200 {object} models.APIResponse{data=models.License} "수정 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 404 {object} models.APIResponse "라이선스 없음"
// @Failure 409 {object} models.APIResponse "중복 licenseId"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/licenses/{id} [put]
func (h *LicenseHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req models.UpdateLicenseRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse("Invalid request body", err))
		return
	}

	license, err := h.service.Update(r.Context(), id, req, middleware.UserFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, "Failed to update license", map[string]interface{}{"id": id})
		return
	}

	logger.WithFields(map[string]interface{}{"id": id, "license_id": license.LicenseID}).Info("License updated")
	writeJSON(w, http.StatusOK, models.SuccessResponse("License updated successfully", license))
}

// Delete 라이선스 삭제
// @Summary 라이선스 삭제
// @Description 라이선스 레코드를 삭제합니다. 디바이스 카운터와 등록 정보는 유지됩니다
// @Tags 관리자 - 라이선스
// @Produce json
// @Security BearerAuth
// @Param id path string true "라이선스 문서 ID"
// @Success 200 {object} models.APIResponse "삭제 성공"
// @Failure 404 {object} models.APIResponse "라이선스 없음"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/licenses/{id} [delete]
func (h *LicenseHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id, middleware.UserFromContext(r.Context())); err != nil {
		writeServiceError(w, err, "Failed to delete license", map[string]interface{}{"id": id})
		return
	}

	logger.WithFields(map[string]interface{}{"id": id}).Info("License deleted")
	writeJSON(w, http.StatusOK, models.SuccessResponse("License deleted successfully", nil))
}

// Export 라이선스 내보내기
// @Summary 라이선스 내보내기
// @Description 모든 라이선스를 JSON 배열로 내보냅니다
// @Tags 관리자 - 라이선스
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.License "내보내기 성공"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/licenses/export [get]
func (h *LicenseHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	licenses, err := h.service.Export(r.Context(), middleware.UserFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, "Failed to export licenses", nil)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="licenses.json"`)
	writeJSON(w, http.StatusOK, licenses)
}

// Import 라이선스 가져오기
// @Summary 라이선스 가져오기
// @Description JSON 배열의 라이선스를 가져옵니다. 이미 존재하는 licenseId는 건너뜁니다
// @Tags 관리자 - 라이선스
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body []models.License true "가져올 라이선스 목록"
// @Success 200 {object} models.APIResponse "가져온 개수"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/licenses/import [post]
func (h *LicenseHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var licenses []models.License
	if err := decodeJSON(w, r, maxImportBytes, &licenses); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse("Invalid request body", err))
		return
	}

	imported, err := h.service.Import(r.Context(), licenses, middleware.UserFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, "Failed to import licenses", nil)
		return
	}

	logger.Info("Imported %d of %d licenses", imported, len(licenses))
	writeJSON(w, http.StatusOK, models.SuccessResponse("Licenses imported", map[string]int{
		"imported": imported,
		"skipped":  len(licenses) - imported,
	}))
}

// ActivityLogs 활동 로그 조회
// @Summary 활동 로그 조회
// @Description 최신순 활동 로그를 조회합니다
// @Tags 관리자 - 활동 로그
// @Produce json
// @Security BearerAuth
// @Param licenseId query string false "라이선스 ID 필터"
// @Param limit query int false "최대 개수 (기본 100)"
// @Success 200 {object} models.APIResponse{data=[]models.ActivityLogEntry} "조회 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/activity [get]
func (h *LicenseHandler) ActivityLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse("Invalid limit", err))
		return
	}

	licenseID := strings.TrimSpace(r.URL.Query().Get("licenseId"))
	logs, err := h.service.ActivityLogs(r.Context(), licenseID, limit)
	if err != nil {
		writeServiceError(w, err, "Failed to query activity logs", map[string]interface{}{"license_id": licenseID})
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Activity logs retrieved", logs))
}
