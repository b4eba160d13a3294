package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-management-api/models"
)

func actionAt(t time.Time) models.Action {
	return models.Action{
		ID:        primitive.NewObjectID(),
		Action:    "Created Task",
		User:      primitive.NewObjectID(),
		Timestamp: t,
	}
}

func TestMergeActionsSortsNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a1 := actionAt(base)
	a2 := actionAt(base.Add(2 * time.Hour))
	a3 := actionAt(base.Add(time.Hour))

	merged := MergeActions([]models.Action{a1}, []models.Action{a2, a3})

	require.Len(t, merged, 3)
	assert.Equal(t, a2.ID, merged[0].ID)
	assert.Equal(t, a3.ID, merged[1].ID)
	assert.Equal(t, a1.ID, merged[2].ID)
}

func TestMergeActionsDropsDuplicates(t *testing.T) {
	base := time.Now()
	a1 := actionAt(base)
	a2 := actionAt(base.Add(time.Minute))

	merged := MergeActions([]models.Action{a1, a2}, []models.Action{a1})

	require.Len(t, merged, 2)
	assert.Equal(t, a2.ID, merged[0].ID)
	assert.Equal(t, a1.ID, merged[1].ID)
}

func TestMergeActionsEmptyInputs(t *testing.T) {
	assert.Empty(t, MergeActions(nil, nil))

	a := actionAt(time.Now())
	merged := MergeActions(nil, []models.Action{a})
	require.Len(t, merged, 1)
	assert.Equal(t, a.ID, merged[0].ID)
}
