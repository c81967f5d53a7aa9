package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/tablemaster/tablemaster/pkg/eventbus"
	"github.com/tablemaster/tablemaster/pkg/metrics"
)

var (
	changeRequestsSubmitted = metrics.Factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablemaster",
		Subsystem: "changes",
		Name:      "submitted_total",
		Help:      "Change requests submitted, by entity type and action.",
	}, []string{"entity_type", "action"})

	decisions = metrics.Factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablemaster",
		Subsystem: "changes",
		Name:      "decisions_total",
		Help:      "Decisions on change and access requests, by request kind and resulting status.",
	}, []string{"kind", "status"})

	applyFailures = metrics.Factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablemaster",
		Subsystem: "changes",
		Name:      "apply_failures_total",
		Help:      "Approvals whose record store write failed, by entity type.",
	}, []string{"entity_type"})
)

// RegisterSubscribers wires metrics and audit log lines to workflow events.
func RegisterSubscribers(bus eventbus.EventBus, logger *logrus.Logger) {
	audit := logger.WithField("component", "changes.audit")

	bus.Subscribe(func(e ChangeRequestSubmittedEvent) {
		changeRequestsSubmitted.WithLabelValues(string(e.Request.EntityType), string(e.Request.Action)).Inc()
		audit.WithFields(logrus.Fields{
			"request_id":  e.Request.ID,
			"user_id":     e.Request.RequestedBy.ID,
			"entity_type": e.Request.EntityType,
			"action":      e.Request.Action,
		}).Info("change request submitted")
	})
	bus.Subscribe(func(e ChangeRequestDecidedEvent) {
		decisions.WithLabelValues("change", string(e.Request.Status)).Inc()
		fields := logrus.Fields{
			"request_id":      e.Request.ID,
			"previous_status": e.PreviousStatus,
			"status":          e.Request.Status,
		}
		if e.Request.Reviewer != nil {
			fields["reviewer_id"] = e.Request.Reviewer.ID
		}
		audit.WithFields(fields).Info("change request decided")
	})
	bus.Subscribe(func(e ChangeRequestApplyFailedEvent) {
		applyFailures.WithLabelValues(string(e.Request.EntityType)).Inc()
		audit.WithError(e.Err).WithField("request_id", e.Request.ID).Warn("change request could not be applied")
	})
	bus.Subscribe(func(e EntityChangedEvent) {
		audit.WithFields(logrus.Fields{
			"entity_type": e.EntityType,
			"action":      e.Action,
			"record_id":   e.RecordID,
			"actor_id":    e.ActorID,
		}).Info("entity changed")
	})
	bus.Subscribe(func(e AccessRequestSubmittedEvent) {
		audit.WithFields(logrus.Fields{
			"access_request_id": e.Request.ID,
			"user_id":           e.Request.RequestedBy.ID,
		}).Info("access request submitted")
	})
	bus.Subscribe(func(e AccessRequestDecidedEvent) {
		decisions.WithLabelValues("access", string(e.Request.Status)).Inc()
		audit.WithFields(logrus.Fields{
			"access_request_id": e.Request.ID,
			"previous_status":   e.PreviousStatus,
			"status":            e.Request.Status,
		}).Info("access request decided")
	})
}
