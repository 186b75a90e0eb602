package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"licensepanel/models"
	"licensepanel/utils"
)

type activityDoc struct {
	ID        string `bson:"_id"`
	Action    string `bson:"action"`
	LicenseID string `bson:"licenseId"`
	Timestamp string `bson:"timestamp"`
	Details   string `bson:"details"`
	User      string `bson:"user,omitempty"`
	// Seq breaks ties between entries written in the same second.
	Seq int64 `bson:"seq"`
}

func (d activityDoc) model() models.ActivityLogEntry {
	return models.ActivityLogEntry{
		ID:        d.ID,
		Action:    d.Action,
		LicenseID: d.LicenseID,
		Timestamp: d.Timestamp,
		Details:   d.Details,
		User:      d.User,
	}
}

func activityFilter(licenseID string) bson.M {
	if licenseID == "" {
		return bson.M{}
	}
	return bson.M{"licenseId": licenseID}
}

func activityOptions(limit int) *options.FindOptions {
	find := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}})
	if limit > 0 {
		find.SetLimit(int64(limit))
	}
	return find
}

// ActivityStore is services.ActivityStore on the activity_logs collection.
type ActivityStore struct {
	coll *mongo.Collection
}

func (s *ActivityStore) Append(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	if entry.ID == "" {
		entry.ID = utils.GenerateID("act")
	}
	doc := activityDoc{
		ID:        entry.ID,
		Action:    entry.Action,
		LicenseID: entry.LicenseID,
		Timestamp: entry.Timestamp,
		Details:   entry.Details,
		User:      entry.User,
		Seq:       time.Now().UnixNano(),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return models.ActivityLogEntry{}, err
	}
	return entry, nil
}

func (s *ActivityStore) List(ctx context.Context, licenseID string, limit int) ([]models.ActivityLogEntry, error) {
	cursor, err := s.coll.Find(ctx, activityFilter(licenseID), activityOptions(limit))
	if err != nil {
		return nil, err
	}
	var docs []activityDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	entries := make([]models.ActivityLogEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, d.model())
	}
	return entries, nil
}
