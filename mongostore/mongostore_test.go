package mongostore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"licensepanel/models"
	"licensepanel/services"
)

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func TestListFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, listFilter(services.LicenseListOptions{}))

	assert.Equal(t,
		bson.M{"licenseId": bson.M{"$regex": `^ACME\.1`}},
		listFilter(services.LicenseListOptions{Prefix: "ACME.1"}),
	)

	assert.Equal(t,
		bson.M{"licenseId": bson.M{"$regex": "^A", "$gt": "A-1"}},
		listFilter(services.LicenseListOptions{Prefix: "A", After: "A-1"}),
	)
}

func TestAdmitFilterFusesCapacityCheck(t *testing.T) {
	filter := admitFilter("XYZ-9")
	assert.Equal(t, "XYZ-9", filter["_id"])

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"limit": -1}, or[0])
	assert.Equal(t, bson.M{"$expr": bson.M{"$lt": bson.A{"$count", bson.M{"$cond": bson.A{
		bson.M{"$lt": bson.A{"$limit", 1}}, 1, "$limit",
	}}}}}, or[1])
}

func TestSetUpdateSeedsOnlyOtherField(t *testing.T) {
	update := setUpdate("limit", -1, now)
	assert.Equal(t, bson.M{"limit": -1, "lastUpdated": "2026-05-01T09:00:00Z"}, update["$set"])
	assert.Equal(t, bson.M{"count": 0}, update["$setOnInsert"])

	update = setUpdate("count", 3, now)
	assert.Equal(t, bson.M{"limit": models.DefaultDeviceLimit}, update["$setOnInsert"])
}

func TestQuotaDocKeyedByLicenseID(t *testing.T) {
	raw, err := bson.Marshal(quotaDoc{LicenseID: "ABC-1", Count: 2, Limit: -1, LastUpdated: "2026-05-01T09:00:00Z"})
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "ABC-1", m["_id"])
	assert.EqualValues(t, -1, m["limit"])

	quota := quotaDoc{LicenseID: "ABC-1", Count: -3, Limit: 0}.model()
	assert.Equal(t, 0, quota.Count)
	assert.Equal(t, 1, quota.Limit.Raw(), "invalid stored limit falls back to the default")
}

func TestDeviceDocConversion(t *testing.T) {
	reg := models.DeviceRegistration{
		ID:         "dev-1",
		LicenseID:  "ABC-1",
		DeviceID:   "machine-guid",
		DeviceInfo: models.DeviceInfo{System: "Linux", IP: "10.0.0.2"},
	}
	assert.Equal(t, reg, toDeviceDoc(reg).model())

	raw, err := bson.Marshal(toDeviceDoc(reg))
	require.NoError(t, err)
	assert.Equal(t, "Linux", bson.Raw(raw).Lookup("deviceInfo", "system").StringValue())
	assert.Equal(t, "machine-guid", bson.Raw(raw).Lookup("deviceId").StringValue())
}

func TestActivityOptionsNewestFirst(t *testing.T) {
	find := activityOptions(5)
	require.NotNil(t, find.Limit)
	assert.EqualValues(t, 5, *find.Limit)
	assert.Equal(t, bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}}, find.Sort)

	assert.Equal(t, bson.M{}, activityFilter(""))
	assert.Equal(t, bson.M{"licenseId": "A"}, activityFilter("A"))
}

func TestProfileUpdateKeepsCreatedAt(t *testing.T) {
	update := profileUpdate(models.UserProfile{ID: "u", Role: models.RoleUser, CreatedAt: "2026-05-01T09:00:00Z"})
	set := update["$set"].(bson.M)
	_, hasCreated := set["createdAt"]
	assert.False(t, hasCreated)
	assert.Equal(t, bson.M{"createdAt": "2026-05-01T09:00:00Z"}, update["$setOnInsert"])
}

func TestNotFoundMapsNoDocuments(t *testing.T) {
	assert.ErrorIs(t, notFound(mongo.ErrNoDocuments, services.ErrLicenseNotFound), services.ErrLicenseNotFound)

	other := errors.New("socket closed")
	assert.Equal(t, other, notFound(other, services.ErrLicenseNotFound))
}
