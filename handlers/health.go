package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"licensepanel/logger"
	"licensepanel/models"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

// HealthHandler 헬스체크 핸들러
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandler는 헬스체크 핸들러를 생성한다. checks는 이름별 백엔드 ping이다.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// ServeHTTP 헬스체크
// @Summary 헬스체크
// @Description 서버와 저장소 연결 상태를 확인합니다
// @Tags 시스템
// @Produce json
// @Success 200 {object} models.APIResponse "정상"
// @Failure 503 {object} models.APIResponse "저장소 연결 실패"
// @Router /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var failed []string
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.WithFields(map[string]interface{}{"component": name, "error": err.Error()}).Error("Health check failed")
			failed = append(failed, name)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if len(failed) > 0 {
		sort.Strings(failed)
		resp := models.ErrorResponse("Server is unhealthy")
		resp.Data = map[string][]string{"failed": failed}
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Server is healthy", nil))
}
