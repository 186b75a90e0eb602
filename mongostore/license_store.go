package mongostore

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"licensepanel/models"
	"licensepanel/services"
	"licensepanel/utils"
)

type licenseDoc struct {
	ID          string `bson:"_id"`
	LicenseID   string `bson:"licenseId"`
	ExpiryDate  string `bson:"expiryDate"`
	Status      string `bson:"status"`
	Notes       string `bson:"notes"`
	CreatedAt   string `bson:"createdAt"`
	LastUpdated string `bson:"lastUpdated"`
}

func toLicenseDoc(l models.License) licenseDoc {
	return licenseDoc{
		ID:          l.ID,
		LicenseID:   l.LicenseID,
		ExpiryDate:  l.ExpiryDate,
		Status:      l.Status,
		Notes:       l.Notes,
		CreatedAt:   l.CreatedAt,
		LastUpdated: l.LastUpdated,
	}
}

func (d licenseDoc) model() models.License {
	return models.License{
		ID:          d.ID,
		LicenseID:   d.LicenseID,
		ExpiryDate:  d.ExpiryDate,
		Status:      d.Status,
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
		LastUpdated: d.LastUpdated,
	}
}

// listFilter builds the licenseId range for a cursor page or prefix search.
// The prefix is anchored and quoted so the index can serve it.
func listFilter(opts services.LicenseListOptions) bson.M {
	cond := bson.M{}
	if opts.Prefix != "" {
		cond["$regex"] = "^" + regexp.QuoteMeta(opts.Prefix)
	}
	if opts.After != "" {
		cond["$gt"] = opts.After
	}
	if len(cond) == 0 {
		return bson.M{}
	}
	return bson.M{"licenseId": cond}
}

func listOptions(opts services.LicenseListOptions) *options.FindOptions {
	find := options.Find().SetSort(bson.D{{Key: "licenseId", Value: 1}})
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}
	return find
}

// LicenseStore is services.LicenseStore on the licenses collection.
type LicenseStore struct {
	coll *mongo.Collection
}

func (s *LicenseStore) findOne(ctx context.Context, filter bson.M) (models.License, error) {
	var doc licenseDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return models.License{}, notFound(err, services.ErrLicenseNotFound)
	}
	return doc.model(), nil
}

func (s *LicenseStore) FindByKey(ctx context.Context, licenseID string) (models.License, error) {
	return s.findOne(ctx, bson.M{"licenseId": licenseID})
}

func (s *LicenseStore) Get(ctx context.Context, id string) (models.License, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *LicenseStore) Create(ctx context.Context, license models.License) (models.License, error) {
	if license.ID == "" {
		license.ID = utils.GenerateID("lic")
	}
	if _, err := s.coll.InsertOne(ctx, toLicenseDoc(license)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.License{}, services.ErrLicenseConflict
		}
		return models.License{}, err
	}
	return license, nil
}

func (s *LicenseStore) Update(ctx context.Context, license models.License) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": license.ID}, bson.M{"$set": bson.M{
		"licenseId":   license.LicenseID,
		"expiryDate":  license.ExpiryDate,
		"status":      license.Status,
		"notes":       license.Notes,
		"lastUpdated": license.LastUpdated,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return services.ErrLicenseConflict
		}
		return err
	}
	if result.MatchedCount == 0 {
		return services.ErrLicenseNotFound
	}
	return nil
}

func (s *LicenseStore) Delete(ctx context.Context, id string) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return services.ErrLicenseNotFound
	}
	return nil
}

func (s *LicenseStore) List(ctx context.Context, opts services.LicenseListOptions) ([]models.License, error) {
	cursor, err := s.coll.Find(ctx, listFilter(opts), listOptions(opts))
	if err != nil {
		return nil, err
	}
	var docs []licenseDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	licenses := make([]models.License, 0, len(docs))
	for _, d := range docs {
		licenses = append(licenses, d.model())
	}
	return licenses, nil
}
