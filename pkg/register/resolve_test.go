package register

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestMaintenanceCreatedAtWins(t *testing.T) {
	key := Key{Type: ItemTypeMMD, ID: "MMD001"}
	sameDay := datePtr(2024, 4, 6)

	events := []MaintenanceEvent{
		{ID: 1, Key: key, ServiceDate: sameDay, CreatedAt: date(2024, 4, 6).Add(9 * time.Hour)},
		{ID: 2, Key: key, ServiceDate: sameDay, CreatedAt: date(2024, 4, 6).Add(17 * time.Hour)},
	}

	latest := LatestMaintenance(events)
	require.Contains(t, latest, key)
	assert.Equal(t, int64(2), latest[key].ID)
}

func TestLatestMaintenanceServiceDateTieBreak(t *testing.T) {
	key := Key{Type: ItemTypeTool, ID: "T-1"}
	created := date(2024, 5, 1)

	events := []MaintenanceEvent{
		{ID: 1, Key: key, ServiceDate: datePtr(2024, 3, 1), CreatedAt: created},
		{ID: 2, Key: key, ServiceDate: datePtr(2024, 4, 1), CreatedAt: created},
		{ID: 3, Key: key, ServiceDate: nil, CreatedAt: created},
	}

	latest := LatestMaintenance(events)
	assert.Equal(t, int64(2), latest[key].ID)
}

func TestLatestMaintenancePrefersNonNullNextDue(t *testing.T) {
	key := Key{Type: ItemTypeTool, ID: "T-2"}
	created := date(2024, 5, 1)
	svc := datePtr(2024, 4, 1)

	events := []MaintenanceEvent{
		{ID: 1, Key: key, ServiceDate: svc, NextServiceDue: nil, CreatedAt: created},
		{ID: 2, Key: key, ServiceDate: svc, NextServiceDue: datePtr(2024, 10, 1), CreatedAt: created},
	}

	latest := LatestMaintenance(events)
	assert.Equal(t, int64(2), latest[key].ID)
}

func TestLatestMaintenancePartitionsByItem(t *testing.T) {
	a := Key{Type: ItemTypeTool, ID: "T-1"}
	b := Key{Type: ItemTypeAsset, ID: "A-1"}
	// Same ref id under a different type is a different partition.
	c := Key{Type: ItemTypeConsumable, ID: "A-1"}

	events := []MaintenanceEvent{
		{ID: 1, Key: a, CreatedAt: date(2024, 1, 1)},
		{ID: 2, Key: a, CreatedAt: date(2024, 2, 1)},
		{ID: 3, Key: b, CreatedAt: date(2024, 3, 1)},
		{ID: 4, Key: c, CreatedAt: date(2024, 1, 1)},
	}

	latest := LatestMaintenance(events)
	assert.Len(t, latest, 3)
	assert.Equal(t, int64(2), latest[a].ID)
	assert.Equal(t, int64(3), latest[b].ID)
	assert.Equal(t, int64(4), latest[c].ID)
}

func TestLatestAllocationOrdering(t *testing.T) {
	key := Key{Type: ItemTypeTool, ID: "T-9"}

	events := []AllocationEvent{
		{ID: 1, Key: key, IssuedDate: datePtr(2024, 1, 10), CreatedAt: date(2024, 1, 10)},
		{ID: 2, Key: key, IssuedDate: datePtr(2024, 2, 10), CreatedAt: date(2024, 2, 10)},
		// Older business date but later insertion: insertion wins.
		{ID: 3, Key: key, IssuedDate: datePtr(2024, 1, 1), CreatedAt: date(2024, 3, 1)},
	}

	latest := LatestAllocation(events)
	assert.Equal(t, int64(3), latest[key].ID)
}

func TestLatestAllocationIssuedDateTieBreak(t *testing.T) {
	key := Key{Type: ItemTypeMMD, ID: "M-1"}
	created := date(2024, 6, 1)

	events := []AllocationEvent{
		{ID: 1, Key: key, IssuedDate: nil, CreatedAt: created},
		{ID: 2, Key: key, IssuedDate: datePtr(2024, 5, 20), CreatedAt: created},
	}

	latest := LatestAllocation(events)
	assert.Equal(t, int64(2), latest[key].ID)
}

func TestLatestResolversEmptyInput(t *testing.T) {
	assert.Empty(t, LatestMaintenance(nil))
	assert.Empty(t, LatestAllocation(nil))
}
