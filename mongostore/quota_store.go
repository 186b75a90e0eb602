package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"licensepanel/models"
	"licensepanel/services"
	"licensepanel/utils"
)

// quotaDoc is keyed by licenseId, matching license_devices_count/{licenseId}.
type quotaDoc struct {
	LicenseID   string `bson:"_id"`
	Count       int    `bson:"count"`
	Limit       int    `bson:"limit"`
	LastUpdated string `bson:"lastUpdated"`
}

func (d quotaDoc) model() models.DeviceQuota {
	ts, _ := utils.ParseTimestamp(d.LastUpdated)
	count := d.Count
	if count < 0 {
		count = 0
	}
	return models.DeviceQuota{
		LicenseID:   d.LicenseID,
		Count:       count,
		Limit:       models.StoredDeviceLimit(d.Limit),
		LastUpdated: ts,
	}
}

// admitFilter matches the record only while it can take one more device.
// effectiveLimit reads a stored limit below 1 as the default, like
// models.StoredDeviceLimit.
var effectiveLimit = bson.M{"$cond": bson.A{
	bson.M{"$lt": bson.A{"$limit", 1}}, models.DefaultDeviceLimit, "$limit",
}}

func admitFilter(licenseID string) bson.M {
	return bson.M{
		"_id": licenseID,
		"$or": bson.A{
			bson.M{"limit": models.UnlimitedSentinel},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$count", effectiveLimit}}},
		},
	}
}

func incrementUpdate(delta int, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{"count": delta},
		"$set": bson.M{"lastUpdated": utils.FormatTimestamp(now)},
	}
}

// setUpdate overwrites field and seeds the other baseline fields on insert.
func setUpdate(field string, value int, now time.Time) bson.M {
	onInsert := bson.M{"count": 0, "limit": models.DefaultDeviceLimit}
	delete(onInsert, field)
	return bson.M{
		"$set":         bson.M{field: value, "lastUpdated": utils.FormatTimestamp(now)},
		"$setOnInsert": onInsert,
	}
}

func returnAfter(upsert bool) *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(upsert)
}

// QuotaStore is services.QuotaStore on the license_devices_count collection.
type QuotaStore struct {
	coll *mongo.Collection
}

func (s *QuotaStore) Get(ctx context.Context, licenseID string) (models.DeviceQuota, error) {
	var doc quotaDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": licenseID}).Decode(&doc); err != nil {
		return models.DeviceQuota{}, notFound(err, services.ErrQuotaNotFound)
	}
	return doc.model(), nil
}

func (s *QuotaStore) upsert(ctx context.Context, filter, update bson.M) (models.DeviceQuota, error) {
	var doc quotaDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, update, returnAfter(true)).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// 동시 upsert 경합, 이긴 쪽 문서에 다시 적용
		err = s.coll.FindOneAndUpdate(ctx, filter, update, returnAfter(true)).Decode(&doc)
	}
	if err != nil {
		return models.DeviceQuota{}, err
	}
	return doc.model(), nil
}

func (s *QuotaStore) GetOrCreate(ctx context.Context, licenseID string, now time.Time) (models.DeviceQuota, error) {
	return s.upsert(ctx, bson.M{"_id": licenseID}, bson.M{"$setOnInsert": bson.M{
		"count":       0,
		"limit":       models.DefaultDeviceLimit,
		"lastUpdated": utils.FormatTimestamp(now),
	}})
}

func (s *QuotaStore) TryIncrement(ctx context.Context, licenseID string, now time.Time) (models.DeviceQuota, bool, error) {
	var doc quotaDoc
	err := s.coll.FindOneAndUpdate(ctx, admitFilter(licenseID), incrementUpdate(1, now), returnAfter(false)).Decode(&doc)
	if err == nil {
		return doc.model(), true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.DeviceQuota{}, false, err
	}

	// either full or absent
	quota, err := s.Get(ctx, licenseID)
	if err != nil {
		return models.DeviceQuota{}, false, err
	}
	return quota, false, nil
}

func (s *QuotaStore) Decrement(ctx context.Context, licenseID string, now time.Time) (models.DeviceQuota, error) {
	var doc quotaDoc
	filter := bson.M{"_id": licenseID, "count": bson.M{"$gt": 0}}
	err := s.coll.FindOneAndUpdate(ctx, filter, incrementUpdate(-1, now), returnAfter(false)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return s.Get(ctx, licenseID)
	}
	if err != nil {
		return models.DeviceQuota{}, err
	}
	return doc.model(), nil
}

func (s *QuotaStore) SetCount(ctx context.Context, licenseID string, count int, now time.Time) (models.DeviceQuota, error) {
	if count < 0 {
		count = 0
	}
	return s.upsert(ctx, bson.M{"_id": licenseID}, setUpdate("count", count, now))
}

func (s *QuotaStore) SetLimit(ctx context.Context, licenseID string, limit models.DeviceLimit, now time.Time) (models.DeviceQuota, error) {
	return s.upsert(ctx, bson.M{"_id": licenseID}, setUpdate("limit", limit.Raw(), now))
}

func (s *QuotaStore) List(ctx context.Context) ([]models.DeviceQuota, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []quotaDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	quotas := make([]models.DeviceQuota, 0, len(docs))
	for _, d := range docs {
		quotas = append(quotas, d.model())
	}
	return quotas, nil
}
