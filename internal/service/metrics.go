package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// outcome: created / returning / state_mismatch / upstream_error / error
	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wwr", Name: "logins_total",
		Help: "Reddit OAuth callbacks by outcome.",
	}, []string{"outcome"})

	productActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wwr", Name: "product_actions_total",
		Help: "Product audit records written, by action.",
	}, []string{"action"})
)
