package handlers

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"licensepanel/metrics"
	"licensepanel/middleware"
	"licensepanel/models"
	"licensepanel/services"
	"licensepanel/utils"
)

// Dependencies는 라우터가 연결하는 서비스와 선택적 구성 요소이다.
type Dependencies struct {
	Verifier services.VerificationService
	Devices  services.DeviceService
	Licenses services.LicenseService
	Profiles services.ProfileService

	// Issuer nil disables admin authentication.
	Issuer *utils.TokenIssuer
	// Metrics nil disables instrumentation and /metrics.
	Metrics *metrics.Metrics
	// RateLimiter nil disables rate limiting of the public endpoints.
	RateLimiter *middleware.RateLimiter
	Health      *HealthHandler
}

// NewRouter registers every route on a new ServeMux.
func NewRouter(d Dependencies) *http.ServeMux {
	mux := http.NewServeMux()

	var observer VerificationObserver
	if d.Metrics != nil {
		observer = d.Metrics
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	public := func(route string, h http.HandlerFunc) {
		chain := []func(http.HandlerFunc) http.HandlerFunc{
			middleware.LoggingMiddleware,
			middleware.Metrics(d.Metrics, route),
			middleware.PublicCORS,
		}
		if d.RateLimiter != nil {
			chain = append(chain, d.RateLimiter.Middleware)
		}
		chain = append(chain, middleware.SetJSONHeader)
		mux.HandleFunc(route, middleware.ChainMiddleware(h, chain...))
	}

	admin := func(route string, h http.HandlerFunc, guards ...func(http.HandlerFunc) http.HandlerFunc) {
		chain := []func(http.HandlerFunc) http.HandlerFunc{
			middleware.LoggingMiddleware,
			middleware.Metrics(d.Metrics, route),
			middleware.CORSMiddleware,
			middleware.Auth(d.Issuer),
			middleware.ReadOnlyForViewers,
		}
		chain = append(chain, guards...)
		chain = append(chain, middleware.SetJSONHeader)
		mux.HandleFunc(route, middleware.ChainMiddleware(h, chain...))
	}
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	verify := NewLicenseVerifyHandler(d.Verifier, d.Devices, observer)
	public("/api/license/verify", verify.Verify)
	public("/api/license/activate", verify.Activate)

	licenses := NewLicenseHandler(d.Licenses)
	admin("/api/admin/licenses", licenses.Collection)
	admin(licenseDetailPrefix, licenses.Detail)
	admin("/api/admin/licenses/export", licenses.Export)
	admin("/api/admin/licenses/import", licenses.Import, adminOnly)
	admin("/api/admin/activity", licenses.ActivityLogs)

	devices := NewDeviceHandler(d.Devices)
	admin("/api/admin/devices", devices.ListDevices)
	admin("/api/admin/devices/register", devices.RegisterDevice)
	admin("/api/admin/devices/revoke", devices.RevokeDevice)
	admin("/api/admin/quota", devices.GetQuota)
	admin("/api/admin/quota/reset", devices.ResetQuota, adminOnly)
	admin("/api/admin/quota/limit", devices.SetLimit, adminOnly)
	admin("/api/admin/quota/reconcile", devices.ReconcileQuota, adminOnly)
	admin("/api/admin/quota/audit", devices.AuditQuotas, adminOnly)

	profiles := NewProfileHandler(d.Profiles)
	admin(profileDetailPrefix, profiles.Detail)

	health := d.Health
	if health == nil {
		health = NewHealthHandler(nil)
	}
	mux.Handle("/health", health)
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	return mux
}
