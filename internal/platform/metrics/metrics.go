package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	workflowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petrack_workflow_transitions_total",
		Help: "Transiciones de estado aplicadas por workflow (adoption, transfer).",
	}, []string{"workflow", "status"})

	workflowConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petrack_workflow_rejections_total",
		Help: "Operaciones de workflow rechazadas por reglas de negocio.",
	}, []string{"workflow", "reason"})

	notificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "petrack_notifications_created_total",
		Help: "Notificaciones persistidas.",
	})

	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "petrack_notifications_publish_failures_total",
		Help: "Fallos al publicar notificaciones ya confirmadas.",
	})
)

func ObserveTransition(workflow, status string) {
	workflowTransitions.WithLabelValues(workflow, status).Inc()
}

func ObserveRejection(workflow, reason string) {
	workflowConflicts.WithLabelValues(workflow, reason).Inc()
}

func ObserveNotifications(n int) {
	if n > 0 {
		notificationsCreated.Add(float64(n))
	}
}

func ObservePublishFailure() {
	publishFailures.Inc()
}

// Handler expone el registry default en /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
