// Package mongostore implements every store on MongoDB, one collection per
// record kind: licenses, license_devices_count, license_device_mapping,
// activity_logs and user_profiles.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"licensepanel/logger"
	"licensepanel/services"
)

// 컬렉션 이름
const (
	CollectionLicenses = "licenses"
	CollectionQuotas   = "license_devices_count"
	CollectionDevices  = "license_device_mapping"
	CollectionActivity = "activity_logs"
	CollectionProfiles = "user_profiles"
)

const defaultServerSelectionTimeout = 5 * time.Second

// Connect opens a client for uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri cannot be empty")
	}
	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(defaultServerSelectionTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique keys the stores rely on for conflict
// detection. Safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionLicenses: {
			{Keys: bson.D{{Key: "licenseId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionDevices: {
			{Keys: bson.D{{Key: "licenseId", Value: 1}, {Key: "deviceId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionActivity: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}}},
			{Keys: bson.D{{Key: "licenseId", Value: 1}}},
		},
	}

	for collection, idx := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	logger.Info("MongoDB indexes ensured (%s)", db.Name())
	return nil
}

// New returns the stores backed by db.
func New(db *mongo.Database) services.Stores {
	return services.Stores{
		Licenses: &LicenseStore{coll: db.Collection(CollectionLicenses)},
		Quotas:   &QuotaStore{coll: db.Collection(CollectionQuotas)},
		Devices:  &DeviceStore{coll: db.Collection(CollectionDevices)},
		Activity: &ActivityStore{coll: db.Collection(CollectionActivity)},
		Profiles: &ProfileStore{coll: db.Collection(CollectionProfiles)},
	}
}

func notFound(err, sentinel error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sentinel
	}
	return err
}
