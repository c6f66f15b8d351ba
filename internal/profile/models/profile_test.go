package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	posting "placement/internal/posting/models"
)

func TestMembershipKeyedByKind(t *testing.T) {
	id := bson.NewObjectID()
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for kind, key := range map[posting.Kind]string{
		posting.KindJob:     "jobId",
		posting.KindTest:    "testId",
		posting.KindWebinar: "webinarId",
	} {
		t.Run(string(kind), func(t *testing.T) {
			m := NewMembership(kind, id, at)
			assert.Equal(t, id, m.PostingID())
			assert.Equal(t, key, IDField(kind))

			doc, err := bson.Marshal(m)
			require.NoError(t, err)
			raw := bson.Raw(doc)
			assert.Equal(t, id, raw.Lookup(key).ObjectID())
			for _, other := range []string{"postingId", "jobId", "testId", "webinarId"} {
				if other == key {
					continue
				}
				_, err := raw.LookupErr(other)
				assert.Error(t, err, "unexpected key %s", other)
			}

			body, err := json.Marshal(m)
			require.NoError(t, err)
			var fields map[string]any
			require.NoError(t, json.Unmarshal(body, &fields))
			assert.Len(t, fields, 2)
			assert.Equal(t, id.Hex(), fields[key])
		})
	}
}

func TestMembershipListOps(t *testing.T) {
	p := &Profile{}
	id := bson.NewObjectID()
	m := NewMembership(posting.KindTest, id, time.Now())

	assert.True(t, p.AddMembership(posting.KindTest, m))
	assert.False(t, p.AddMembership(posting.KindTest, m))
	assert.True(t, p.HasMembership(posting.KindTest, id))
	assert.False(t, p.HasMembership(posting.KindJob, id))

	removed, i, ok := p.RemoveMembership(posting.KindTest, id)
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, id, removed.TestID)
	assert.Empty(t, p.Tests)
}
