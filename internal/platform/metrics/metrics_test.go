package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveTransitionIncrementsLabelledCounter(t *testing.T) {
	before := testutil.ToFloat64(workflowTransitions.WithLabelValues("adoption", "Delivered"))

	ObserveTransition("adoption", "Delivered")
	ObserveTransition("adoption", "Delivered")

	after := testutil.ToFloat64(workflowTransitions.WithLabelValues("adoption", "Delivered"))
	assert.Equal(t, before+2, after)
}

func TestObserveNotificationsIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(notificationsCreated)
	ObserveNotifications(0)
	ObserveNotifications(3)
	assert.Equal(t, before+3, testutil.ToFloat64(notificationsCreated))
}
