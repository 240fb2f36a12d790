package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	profile, err := domain.NewLearnerProfile("user-1", 3000)
	require.NoError(t, err)
	profile.IgnoredWords["the"] = struct{}{}

	original := Snapshot{
		Events:     []domain.ReviewEvent{makeEvent(t, "user-1", "ephemeral", domain.GradeGood, base)},
		Profiles:   []domain.LearnerProfile{*profile},
		ExportedAt: base,
	}

	payload, err := original.Encode()
	require.NoError(t, err)

	decoded, err := Decode(payload)
	require.NoError(t, err)

	assert.Equal(t, original.Events, decoded.Events)
	require.Len(t, decoded.Profiles, 1)
	assert.Contains(t, decoded.Profiles[0].IgnoredWords, "the")
	assert.True(t, decoded.ExportedAt.Equal(base))
}

func TestDecodeMalformedPayload(t *testing.T) {
	decoded, err := Decode([]byte("{not json"))
	assert.Error(t, err)
	assert.True(t, decoded.Empty(), "malformed payload must degrade to an empty snapshot")
}

func TestDecodeEmptyPayload(t *testing.T) {
	decoded, err := Decode(nil)
	assert.NoError(t, err)
	assert.True(t, decoded.Empty())
}
