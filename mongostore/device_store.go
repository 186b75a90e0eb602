package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"licensepanel/models"
	"licensepanel/services"
	"licensepanel/utils"
)

type deviceInfoDoc struct {
	Hostname string `bson:"hostname"`
	System   string `bson:"system"`
	Release  string `bson:"release"`
	Machine  string `bson:"machine"`
	IP       string `bson:"ip"`
}

type deviceDoc struct {
	ID           string        `bson:"_id"`
	LicenseID    string        `bson:"licenseId"`
	DeviceID     string        `bson:"deviceId"`
	Hostname     string        `bson:"hostname"`
	DeviceInfo   deviceInfoDoc `bson:"deviceInfo"`
	RegisteredAt string        `bson:"registeredAt"`
	LastAccessed string        `bson:"lastAccessed"`
}

func toDeviceDoc(r models.DeviceRegistration) deviceDoc {
	return deviceDoc{
		ID:           r.ID,
		LicenseID:    r.LicenseID,
		DeviceID:     r.DeviceID,
		Hostname:     r.Hostname,
		DeviceInfo:   deviceInfoDoc(r.DeviceInfo),
		RegisteredAt: r.RegisteredAt,
		LastAccessed: r.LastAccessed,
	}
}

func (d deviceDoc) model() models.DeviceRegistration {
	return models.DeviceRegistration{
		ID:           d.ID,
		LicenseID:    d.LicenseID,
		DeviceID:     d.DeviceID,
		Hostname:     d.Hostname,
		DeviceInfo:   models.DeviceInfo(d.DeviceInfo),
		RegisteredAt: d.RegisteredAt,
		LastAccessed: d.LastAccessed,
	}
}

// DeviceStore is services.DeviceStore on the license_device_mapping collection.
type DeviceStore struct {
	coll *mongo.Collection
}

func (s *DeviceStore) Create(ctx context.Context, reg models.DeviceRegistration) (models.DeviceRegistration, error) {
	if reg.ID == "" {
		reg.ID = utils.GenerateID("dev")
	}
	if _, err := s.coll.InsertOne(ctx, toDeviceDoc(reg)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.DeviceRegistration{}, services.ErrDeviceConflict
		}
		return models.DeviceRegistration{}, err
	}
	return reg, nil
}

func (s *DeviceStore) findOne(ctx context.Context, filter bson.M) (models.DeviceRegistration, error) {
	var doc deviceDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return models.DeviceRegistration{}, notFound(err, services.ErrRegistrationNotFound)
	}
	return doc.model(), nil
}

func (s *DeviceStore) Get(ctx context.Context, id string) (models.DeviceRegistration, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *DeviceStore) FindByDevice(ctx context.Context, licenseID, deviceID string) (models.DeviceRegistration, error) {
	return s.findOne(ctx, bson.M{"licenseId": licenseID, "deviceId": deviceID})
}

func (s *DeviceStore) ListByLicense(ctx context.Context, licenseID string) ([]models.DeviceRegistration, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"licenseId": licenseID},
		options.Find().SetSort(bson.D{{Key: "registeredAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []deviceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	regs := make([]models.DeviceRegistration, 0, len(docs))
	for _, d := range docs {
		regs = append(regs, d.model())
	}
	return regs, nil
}

func (s *DeviceStore) CountByLicense(ctx context.Context, licenseID string) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"licenseId": licenseID})
	return int(n), err
}

func (s *DeviceStore) Touch(ctx context.Context, id string, lastAccessed string) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastAccessed": lastAccessed}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return services.ErrRegistrationNotFound
	}
	return nil
}

func (s *DeviceStore) Delete(ctx context.Context, id string) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return services.ErrRegistrationNotFound
	}
	return nil
}
