package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncEquipCountsByLabel(t *testing.T) {
	before := testutil.ToFloat64(EquipOperationsTotal.WithLabelValues("equip", "ok"))
	IncEquip("equip", "ok")
	IncEquip("equip", "ok")
	after := testutil.ToFloat64(EquipOperationsTotal.WithLabelValues("equip", "ok"))
	assert.Equal(t, before+2, after)
}

func TestIncDroppedDefaultsLabels(t *testing.T) {
	before := testutil.ToFloat64(EventsDroppedTotal.WithLabelValues("unknown", "unknown"))
	IncDropped("", "")
	assert.Equal(t, before+1, testutil.ToFloat64(EventsDroppedTotal.WithLabelValues("unknown", "unknown")))
}
