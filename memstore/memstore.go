// Package memstore keeps every store in process memory. It backs the
// "memory" store backend and the service tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"licensepanel/models"
	"licensepanel/services"
	"licensepanel/utils"
)

// Store implements LicenseStore, QuotaStore, DeviceStore, ActivityStore and
// ProfileStore behind a single mutex.
type Store struct {
	mu       sync.Mutex
	licenses map[string]models.License // by storage id
	quotas   map[string]models.DeviceQuota
	devices  map[string]models.DeviceRegistration
	activity []models.ActivityLogEntry
	profiles map[string]models.UserProfile
}

// New returns an empty store.
func New() *Store {
	return &Store{
		licenses: make(map[string]models.License),
		quotas:   make(map[string]models.DeviceQuota),
		devices:  make(map[string]models.DeviceRegistration),
		profiles: make(map[string]models.UserProfile),
	}
}

// Stores exposes s through the per-collection interfaces.
func (s *Store) Stores() services.Stores {
	return services.Stores{
		Licenses: LicenseStore{s},
		Quotas:   QuotaStore{s},
		Devices:  DeviceStore{s},
		Activity: ActivityStore{s},
		Profiles: ProfileStore{s},
	}
}

// LicenseStore is the licenses view of a Store.
type LicenseStore struct{ s *Store }

func (v LicenseStore) FindByKey(_ context.Context, licenseID string) (models.License, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, l := range v.s.licenses {
		if l.LicenseID == licenseID {
			return l, nil
		}
	}
	return models.License{}, services.ErrLicenseNotFound
}

func (v LicenseStore) Get(_ context.Context, id string) (models.License, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	l, ok := v.s.licenses[id]
	if !ok {
		return models.License{}, services.ErrLicenseNotFound
	}
	return l, nil
}

func (v LicenseStore) Create(_ context.Context, license models.License) (models.License, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, l := range v.s.licenses {
		if l.LicenseID == license.LicenseID {
			return models.License{}, services.ErrLicenseConflict
		}
	}
	if license.ID == "" {
		license.ID = utils.GenerateID("lic")
	}
	v.s.licenses[license.ID] = license
	return license, nil
}

func (v LicenseStore) Update(_ context.Context, license models.License) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	current, ok := v.s.licenses[license.ID]
	if !ok {
		return services.ErrLicenseNotFound
	}
	for id, l := range v.s.licenses {
		if id != license.ID && l.LicenseID == license.LicenseID {
			return services.ErrLicenseConflict
		}
	}
	license.CreatedAt = current.CreatedAt
	v.s.licenses[license.ID] = license
	return nil
}

func (v LicenseStore) Delete(_ context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.licenses[id]; !ok {
		return services.ErrLicenseNotFound
	}
	delete(v.s.licenses, id)
	return nil
}

func (v LicenseStore) List(_ context.Context, opts services.LicenseListOptions) ([]models.License, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	out := make([]models.License, 0, len(v.s.licenses))
	for _, l := range v.s.licenses {
		if opts.Prefix != "" && !strings.HasPrefix(l.LicenseID, opts.Prefix) {
			continue
		}
		if opts.After != "" && l.LicenseID <= opts.After {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LicenseID < out[j].LicenseID })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// QuotaStore is the license_devices_count view of a Store.
type QuotaStore struct{ s *Store }

func (v QuotaStore) Get(_ context.Context, licenseID string) (models.DeviceQuota, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	q, ok := v.s.quotas[licenseID]
	if !ok {
		return models.DeviceQuota{}, services.ErrQuotaNotFound
	}
	return q, nil
}

// getOrCreate must be called with mu held.
func (v QuotaStore) getOrCreate(licenseID string, now time.Time) models.DeviceQuota {
	q, ok := v.s.quotas[licenseID]
	if !ok {
		q = models.NewDeviceQuota(licenseID, now)
		v.s.quotas[licenseID] = q
	}
	return q
}

func (v QuotaStore) GetOrCreate(_ context.Context, licenseID string, now time.Time) (models.DeviceQuota, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return v.getOrCreate(licenseID, now), nil
}

func (v QuotaStore) TryIncrement(_ context.Context, licenseID string, now time.Time) (models.DeviceQuota, bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	q, ok := v.s.quotas[licenseID]
	if !ok {
		return models.DeviceQuota{}, false, services.ErrQuotaNotFound
	}
	if !q.Limit.Admits(q.Count) {
		return q, false, nil
	}
	q.Count++
	q.LastUpdated = now
	v.s.quotas[licenseID] = q
	return q, true, nil
}

func (v QuotaStore) Decrement(_ context.Context, licenseID string, now time.Time) (models.DeviceQuota, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	q, ok := v.s.quotas[licenseID]
	if !ok {
		return models.DeviceQuota{}, services.ErrQuotaNotFound
	}
	if q.Count > 0 {
		q.Count--
		q.LastUpdated = now
		v.s.quotas[licenseID] = q
	}
	return q, nil
}

func (v QuotaStore) SetCount(_ context.Context, licenseID string, count int, now time.Time) (models.DeviceQuota, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if count < 0 {
		count = 0
	}
	q := v.getOrCreate(licenseID, now)
	q.Count = count
	q.LastUpdated = now
	v.s.quotas[licenseID] = q
	return q, nil
}

func (v QuotaStore) SetLimit(_ context.Context, licenseID string, limit models.DeviceLimit, now time.Time) (models.DeviceQuota, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	q := v.getOrCreate(licenseID, now)
	q.Limit = limit
	q.LastUpdated = now
	v.s.quotas[licenseID] = q
	return q, nil
}

func (v QuotaStore) List(_ context.Context) ([]models.DeviceQuota, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	out := make([]models.DeviceQuota, 0, len(v.s.quotas))
	for _, q := range v.s.quotas {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LicenseID < out[j].LicenseID })
	return out, nil
}

// DeviceStore is the license_device_mapping view of a Store.
type DeviceStore struct{ s *Store }

func (v DeviceStore) Create(_ context.Context, reg models.DeviceRegistration) (models.DeviceRegistration, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, d := range v.s.devices {
		if d.LicenseID == reg.LicenseID && d.DeviceID == reg.DeviceID {
			return models.DeviceRegistration{}, services.ErrDeviceConflict
		}
	}
	if reg.ID == "" {
		reg.ID = utils.GenerateID("dev")
	}
	v.s.devices[reg.ID] = reg
	return reg, nil
}

func (v DeviceStore) Get(_ context.Context, id string) (models.DeviceRegistration, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	d, ok := v.s.devices[id]
	if !ok {
		return models.DeviceRegistration{}, services.ErrRegistrationNotFound
	}
	return d, nil
}

func (v DeviceStore) FindByDevice(_ context.Context, licenseID, deviceID string) (models.DeviceRegistration, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, d := range v.s.devices {
		if d.LicenseID == licenseID && d.DeviceID == deviceID {
			return d, nil
		}
	}
	return models.DeviceRegistration{}, services.ErrRegistrationNotFound
}

func (v DeviceStore) ListByLicense(_ context.Context, licenseID string) ([]models.DeviceRegistration, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	out := make([]models.DeviceRegistration, 0)
	for _, d := range v.s.devices {
		if d.LicenseID == licenseID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt != out[j].RegisteredAt {
			return out[i].RegisteredAt < out[j].RegisteredAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (v DeviceStore) CountByLicense(_ context.Context, licenseID string) (int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	n := 0
	for _, d := range v.s.devices {
		if d.LicenseID == licenseID {
			n++
		}
	}
	return n, nil
}

func (v DeviceStore) Touch(_ context.Context, id string, lastAccessed string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	d, ok := v.s.devices[id]
	if !ok {
		return services.ErrRegistrationNotFound
	}
	d.LastAccessed = lastAccessed
	v.s.devices[id] = d
	return nil
}

func (v DeviceStore) Delete(_ context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.devices[id]; !ok {
		return services.ErrRegistrationNotFound
	}
	delete(v.s.devices, id)
	return nil
}

// ActivityStore is the activity_logs view of a Store.
type ActivityStore struct{ s *Store }

func (v ActivityStore) Append(_ context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = utils.GenerateID("act")
	}
	v.s.activity = append(v.s.activity, entry)
	return entry, nil
}

func (v ActivityStore) List(_ context.Context, licenseID string, limit int) ([]models.ActivityLogEntry, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	out := make([]models.ActivityLogEntry, 0)
	// newest first; entries with equal timestamps keep reverse insertion order
	for i := len(v.s.activity) - 1; i >= 0; i-- {
		e := v.s.activity[i]
		if licenseID != "" && e.LicenseID != licenseID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ProfileStore is the user_profiles view of a Store.
type ProfileStore struct{ s *Store }

func (v ProfileStore) Get(_ context.Context, userID string) (models.UserProfile, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p, ok := v.s.profiles[userID]
	if !ok {
		return models.UserProfile{}, services.ErrProfileNotFound
	}
	return p, nil
}

func (v ProfileStore) Put(_ context.Context, p models.UserProfile) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if current, ok := v.s.profiles[p.ID]; ok {
		p.CreatedAt = current.CreatedAt
	}
	v.s.profiles[p.ID] = p
	return nil
}
