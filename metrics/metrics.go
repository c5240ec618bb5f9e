package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskizy_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskizy_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskizy_users_registered_total",
			Help: "Total users registered",
		},
	)

	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskizy_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	RoomsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskizy_rooms_deleted_total",
			Help: "Total rooms deleted",
		},
	)

	MembershipChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskizy_membership_changes_total",
			Help: "Room membership changes",
		},
		[]string{"change"}, // "added" or "removed"
	)

	TasksDetached = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskizy_tasks_detached_total",
			Help: "Task references nulled because the user left the room",
		},
		[]string{"field"}, // "creator" or "tasker"
	)

	TasksCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskizy_tasks_created_total",
			Help: "Total tasks created",
		},
	)

	TasksCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskizy_tasks_completed_total",
			Help: "Total transitions of a task to completed",
		},
	)

	TokensRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskizy_tokens_revoked_total",
			Help: "Refresh tokens blacklisted on logout",
		},
	)
)
