package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"licensepanel/models"
	"licensepanel/services"
)

type preferencesDoc struct {
	DarkMode             bool `bson:"darkMode"`
	NotificationsEnabled bool `bson:"notificationsEnabled"`
	EmailAlerts          bool `bson:"emailAlerts"`
}

type profileDoc struct {
	ID          string         `bson:"_id"`
	Username    string         `bson:"username"`
	Email       string         `bson:"email"`
	FirstName   string         `bson:"firstName"`
	LastName    string         `bson:"lastName"`
	Role        string         `bson:"role"`
	AvatarURL   string         `bson:"avatarUrl"`
	CreatedAt   string         `bson:"createdAt"`
	LastLogin   string         `bson:"lastLogin"`
	LastUpdated string         `bson:"lastUpdated"`
	Preferences preferencesDoc `bson:"preferences"`
}

func (d profileDoc) model() models.UserProfile {
	return models.UserProfile{
		ID:          d.ID,
		Username:    d.Username,
		Email:       d.Email,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Role:        d.Role,
		AvatarURL:   d.AvatarURL,
		CreatedAt:   d.CreatedAt,
		LastLogin:   d.LastLogin,
		LastUpdated: d.LastUpdated,
		Preferences: models.UserPreferences(d.Preferences),
	}
}

// profileUpdate overwrites the editable fields; createdAt is only written on insert.
func profileUpdate(p models.UserProfile) bson.M {
	return bson.M{
		"$set": bson.M{
			"username":    p.Username,
			"email":       p.Email,
			"firstName":   p.FirstName,
			"lastName":    p.LastName,
			"role":        p.Role,
			"avatarUrl":   p.AvatarURL,
			"lastLogin":   p.LastLogin,
			"lastUpdated": p.LastUpdated,
			"preferences": preferencesDoc(p.Preferences),
		},
		"$setOnInsert": bson.M{"createdAt": p.CreatedAt},
	}
}

// ProfileStore is services.ProfileStore on the user_profiles collection.
type ProfileStore struct {
	coll *mongo.Collection
}

func (s *ProfileStore) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	var doc profileDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		return models.UserProfile{}, notFound(err, services.ErrProfileNotFound)
	}
	return doc.model(), nil
}

func (s *ProfileStore) Put(ctx context.Context, p models.UserProfile) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, profileUpdate(p), options.Update().SetUpsert(true))
	return err
}
