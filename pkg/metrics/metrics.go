// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type registry struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	online      prometheus.Gauge
	refreshes   *prometheus.CounterVec
	scannedLogs prometheus.Counter
}

var (
	once sync.Once
	reg  *registry
)

func get() *registry {
	once.Do(func() {
		reg = &registry{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "copytrade",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests segmented by route, method and status code.",
			}, []string{"route", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "copytrade",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution of HTTP handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route"}),
			online: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "copytrade",
				Name:      "online_users",
				Help:      "Dashboard clients currently connected over websocket.",
			}),
			refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "copytrade",
				Subsystem: "leaderboard",
				Name:      "refresh_total",
				Help:      "Leaderboard log scans segmented by outcome.",
			}, []string{"outcome"}),
			scannedLogs: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "copytrade",
				Subsystem: "leaderboard",
				Name:      "logs_scanned_total",
				Help:      "TradeExecuted logs merged into the leaderboard.",
			}),
		}
		prometheus.MustRegister(reg.requests, reg.latency, reg.online, reg.refreshes, reg.scannedLogs)
	})
	return reg
}

// ObserveRequest records one handled HTTP request.
func ObserveRequest(route, method string, status int, elapsed time.Duration) {
	r := get()
	r.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

func SetOnlineUsers(n int) {
	get().online.Set(float64(n))
}

// LeaderboardRefresh counts a scan; outcome is "ok" or "error".
func LeaderboardRefresh(outcome string, logs int) {
	r := get()
	r.refreshes.WithLabelValues(outcome).Inc()
	if logs > 0 {
		r.scannedLogs.Add(float64(logs))
	}
}

func Handler() http.Handler {
	get()
	return promhttp.Handler()
}
