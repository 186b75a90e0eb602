package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"licensepanel/logger"
	"licensepanel/models"
	"licensepanel/utils"
)

// Search fields accepted by LicenseService.Search.
const (
	SearchFieldLicenseID = "licenseId"
	SearchFieldStatus    = "status"
)

// DefaultPageSize is used by List when no limit is given.
const DefaultPageSize = 10

// LicensePage is one page of List. Next is the cursor of the following page,
// empty on the last one.
type LicensePage struct {
	Licenses []models.License
	Next     string
}

// LicenseService는 라이선스 레코드 관리와 감사 로그를 담당합니다.
type LicenseService interface {
	Create(ctx context.Context, req models.CreateLicenseRequest, user string) (models.License, error)
	Get(ctx context.Context, id string) (models.License, error)
	Update(ctx context.Context, id string, req models.UpdateLicenseRequest, user string) (models.License, error)
	Delete(ctx context.Context, id string, user string) error
	List(ctx context.Context, after string, limit int) (LicensePage, error)
	Search(ctx context.Context, field, value string) ([]models.License, error)
	Export(ctx context.Context, user string) ([]models.License, error)
	// Import adds every license whose licenseId does not exist yet and
	// returns how many were added.
	Import(ctx context.Context, licenses []models.License, user string) (int, error)
	ActivityLogs(ctx context.Context, licenseID string, limit int) ([]models.ActivityLogEntry, error)
}

type licenseService struct {
	licenses LicenseStore
	activity ActivityStore
	now      Clock
}

// NewLicenseService는 LicenseService 구현체를 생성합니다.
func NewLicenseService(licenses LicenseStore, activity ActivityStore, clock Clock) LicenseService {
	if clock == nil {
		clock = utils.Now
	}
	return &licenseService{licenses: licenses, activity: activity, now: clock}
}

func (s *licenseService) validate(licenseID, expiryDate string) (string, string, error) {
	licenseID = strings.TrimSpace(licenseID)
	if licenseID == "" {
		return "", "", fmt.Errorf("%w: licenseId is required", ErrValidation)
	}
	expiry, err := models.ParseExpiryDate(expiryDate, utils.Location())
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return licenseID, expiry.Format("2006-01-02"), nil
}

func (s *licenseService) Create(ctx context.Context, req models.CreateLicenseRequest, user string) (models.License, error) {
	return s.create(ctx, req, user, models.ActivityActionCreate)
}

func (s *licenseService) create(ctx context.Context, req models.CreateLicenseRequest, user, action string) (models.License, error) {
	licenseID, expiry, err := s.validate(req.LicenseID, req.ExpiryDate)
	if err != nil {
		return models.License{}, err
	}

	now := s.now()
	ts := utils.FormatTimestamp(now)
	license := models.License{
		ID:          utils.GenerateID("lic"),
		LicenseID:   licenseID,
		ExpiryDate:  expiry,
		Notes:       req.Notes,
		CreatedAt:   ts,
		LastUpdated: ts,
	}.WithStatus(now)

	created, err := s.licenses.Create(ctx, license)
	if err != nil {
		return models.License{}, err
	}

	details := fmt.Sprintf("License created with expiry date: %s", created.ExpiryDate)
	if action == models.ActivityActionImport {
		details = fmt.Sprintf("License imported with expiry date: %s", created.ExpiryDate)
	}
	s.record(ctx, action, created.LicenseID, details, user)
	return created.WithStatus(now), nil
}

func (s *licenseService) Get(ctx context.Context, id string) (models.License, error) {
	license, err := s.licenses.Get(ctx, id)
	if err != nil {
		return models.License{}, err
	}
	return license.WithStatus(s.now()), nil
}

func (s *licenseService) Update(ctx context.Context, id string, req models.UpdateLicenseRequest, user string) (models.License, error) {
	licenseID, expiry, err := s.validate(req.LicenseID, req.ExpiryDate)
	if err != nil {
		return models.License{}, err
	}

	current, err := s.licenses.Get(ctx, id)
	if err != nil {
		return models.License{}, err
	}

	if licenseID != current.LicenseID {
		if _, err := s.licenses.FindByKey(ctx, licenseID); err == nil {
			return models.License{}, ErrLicenseConflict
		} else if !errors.Is(err, ErrLicenseNotFound) {
			return models.License{}, err
		}
	}

	now := s.now()
	updated := current
	updated.LicenseID = licenseID
	updated.ExpiryDate = expiry
	updated.Notes = req.Notes
	updated.LastUpdated = utils.FormatTimestamp(now)
	updated = updated.WithStatus(now)

	if err := s.licenses.Update(ctx, updated); err != nil {
		return models.License{}, err
	}

	details := fmt.Sprintf("License updated: Expiry date changed from %s to %s", current.ExpiryDate, updated.ExpiryDate)
	if licenseID != current.LicenseID {
		details += fmt.Sprintf(" (renamed from %s)", current.LicenseID)
	}
	s.record(ctx, models.ActivityActionUpdate, updated.LicenseID, details, user)
	return updated, nil
}

func (s *licenseService) Delete(ctx context.Context, id string, user string) error {
	current, err := s.licenses.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.licenses.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, models.ActivityActionDelete, current.LicenseID,
		fmt.Sprintf("License deleted with expiry date: %s", current.ExpiryDate), user)
	return nil
}

func (s *licenseService) List(ctx context.Context, after string, limit int) (LicensePage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	// One extra row tells whether another page exists.
	rows, err := s.licenses.List(ctx, LicenseListOptions{After: after, Limit: limit + 1})
	if err != nil {
		return LicensePage{}, err
	}

	page := LicensePage{}
	if len(rows) > limit {
		rows = rows[:limit]
		page.Next = rows[len(rows)-1].LicenseID
	}
	page.Licenses = withStatus(rows, s.now())
	return page, nil
}

func (s *licenseService) Search(ctx context.Context, field, value string) ([]models.License, error) {
	now := s.now()
	switch field {
	case SearchFieldLicenseID:
		rows, err := s.licenses.List(ctx, LicenseListOptions{Prefix: value})
		if err != nil {
			return nil, err
		}
		return withStatus(rows, now), nil
	case SearchFieldStatus:
		rows, err := s.licenses.List(ctx, LicenseListOptions{})
		if err != nil {
			return nil, err
		}
		// status is derived, so it cannot be queried in the store
		matched := make([]models.License, 0)
		for _, l := range withStatus(rows, now) {
			if strings.EqualFold(l.Status, value) {
				matched = append(matched, l)
			}
		}
		return matched, nil
	}
	return nil, fmt.Errorf("%w: unsupported search field %q", ErrValidation, field)
}

func (s *licenseService) Export(ctx context.Context, user string) ([]models.License, error) {
	rows, err := s.licenses.List(ctx, LicenseListOptions{})
	if err != nil {
		return nil, err
	}
	s.record(ctx, models.ActivityActionExport, "", fmt.Sprintf("Exported %d licenses", len(rows)), user)
	return withStatus(rows, s.now()), nil
}

func (s *licenseService) Import(ctx context.Context, licenses []models.License, user string) (int, error) {
	imported := 0
	for _, l := range licenses {
		_, err := s.licenses.FindByKey(ctx, strings.TrimSpace(l.LicenseID))
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrLicenseNotFound) {
			return imported, err
		}

		_, err = s.create(ctx, models.CreateLicenseRequest{
			LicenseID:  l.LicenseID,
			ExpiryDate: l.ExpiryDate,
			Notes:      l.Notes,
		}, user, models.ActivityActionImport)
		if err != nil {
			if errors.Is(err, ErrLicenseConflict) {
				continue
			}
			return imported, fmt.Errorf("import %q: %w", l.LicenseID, err)
		}
		imported++
	}

	logger.WithFields(map[string]interface{}{
		"received": len(licenses),
		"imported": imported,
	}).Info("License import finished")
	return imported, nil
}

func (s *licenseService) ActivityLogs(ctx context.Context, licenseID string, limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = models.DefaultActivityLimit
	}
	return s.activity.List(ctx, strings.TrimSpace(licenseID), limit)
}

// record appends an audit entry. A failed write never fails the caller.
func (s *licenseService) record(ctx context.Context, action, licenseID, details, user string) {
	entry := models.ActivityLogEntry{
		ID:        utils.GenerateID("act"),
		Action:    action,
		LicenseID: licenseID,
		Timestamp: utils.FormatTimestamp(s.now()),
		Details:   details,
		User:      user,
	}
	if _, err := s.activity.Append(ctx, entry); err != nil {
		logger.WithFields(map[string]interface{}{
			"action":     action,
			"license_id": licenseID,
			"error":      err.Error(),
		}).Error("Failed to write activity log")
	}
}

func withStatus(rows []models.License, now time.Time) []models.License {
	out := make([]models.License, 0, len(rows))
	for _, l := range rows {
		out = append(out, l.WithStatus(now))
	}
	return out
}
