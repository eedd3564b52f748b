package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindClassifiesPaths(t *testing.T) {
	assert.Equal(t, kindCollection, kind("orders"))
	assert.Equal(t, kindChild, kind("orders/abc-123"))
	assert.Equal(t, kindFlatDoc, kind("statistics/daily/2026-08-31"))
	assert.Equal(t, kindScalar, kind("robot_status"))
	assert.Equal(t, kindScalar, kind("emergency_stop"))
	assert.Equal(t, kindScalar, kind("recovery_command"))
}

func TestSplitChild(t *testing.T) {
	parent, id := splitChild("orders/abc-123")
	assert.Equal(t, "orders", parent)
	assert.Equal(t, "abc-123", id)
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	in := []byte(`{"total_orders":2,"total_revenue":19000,"by_menu":{"베이컨 디럭스":{"count":1,"revenue":10500,"price":10500}}}`)

	flat, err := flattenJSON(in)
	require.NoError(t, err)
	assert.Equal(t, "2", flat["total_orders"])
	assert.Equal(t, "10500", flat["by_menu.베이컨 디럭스.revenue"])

	doc := unflatten(flat)
	menuDoc, ok := doc["by_menu"].(map[string]any)
	require.True(t, ok)
	item, ok := menuDoc["베이컨 디럭스"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, item["count"])
}

func TestFlattenRejectsNonObject(t *testing.T) {
	_, err := flattenJSON([]byte(`"scalar"`))
	assert.Error(t, err)
}

func TestUnflattenParsesHincrbyValues(t *testing.T) {
	// HINCRBY leaves bare integer strings in the hash.
	doc := unflatten(map[string]string{"total_orders": "7"})
	assert.EqualValues(t, 7, doc["total_orders"])
}
