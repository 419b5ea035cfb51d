package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/copytrade-hub/pkg/growth"
	"github.com/copytrade-hub/pkg/leaderboard"
	"github.com/copytrade-hub/pkg/ledger"
	"github.com/copytrade-hub/pkg/metrics"
	"github.com/copytrade-hub/pkg/pricefeed"
	"github.com/copytrade-hub/pkg/realtime"
	"github.com/copytrade-hub/pkg/vip"
)

const (
	// maxGrowthDays bounds /api/growth so one request cannot allocate unbounded series.
	maxGrowthDays = 3650

	// maxChartWindow bounds the padded profit series of /api/growth/chart.
	maxChartWindow = 366
)

type PriceSource interface {
	Latest(ctx context.Context) ([]byte, error)
	Quotes(ctx context.Context) ([]pricefeed.Quote, error)
}

type Leaderboard interface {
	Top(limit int) ([]leaderboard.Trader, error)
}

type AccountSource interface {
	Account(ctx context.Context, user string) (ledger.Account, error)
}

type StatsSource interface {
	GetStats() (map[string]int, error)
}

// GrowthDefaults are used for any /api/growth parameter the client omits.
type GrowthDefaults struct {
	StartBalance float64
	Days         int
	MonthlyRate  float64
}

type Options struct {
	Port             int
	Hub              *realtime.Hub
	Prices           PriceSource
	Leaderboard      Leaderboard
	Accounts         AccountSource
	Stats            StatsSource
	Growth           GrowthDefaults
	LeaderboardLimit int
}

type Dashboard struct {
	opts  Options
	tiers *vip.Cache
}

func New(opts Options) *Dashboard {
	if opts.Hub == nil {
		opts.Hub = realtime.NewHub()
	}
	if opts.LeaderboardLimit <= 0 {
		opts.LeaderboardLimit = 10
	}
	// A zero rate is a valid flat projection, so only an entirely unset
	// struct picks up the default balance and rate.
	if opts.Growth == (GrowthDefaults{}) {
		opts.Growth = GrowthDefaults{StartBalance: 1000, MonthlyRate: 0.20}
	}
	if opts.Growth.Days <= 0 {
		opts.Growth.Days = 30
	}
	return &Dashboard{opts: opts, tiers: vip.NewCache(4096)}
}

func (d *Dashboard) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors, observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", d.handleStats)
		r.Get("/vip", d.handleVIP)
		r.Get("/growth", d.handleGrowth)
		r.Get("/growth/chart", d.handleGrowthChart)
		r.Get("/pyth-latest", d.handlePythLatest)
		r.Get("/price", d.handlePrice)
		r.Get("/leaderboard", d.handleLeaderboard)
		r.Get("/account/{address}", d.handleAccount)
		r.Get("/online", d.handleOnline)
	})
	r.Get("/ws", d.opts.Hub.ServeWS)

	// Serve frontend
	r.Get("/", d.serveFrontend)
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (d *Dashboard) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", d.opts.Port),
		Handler:           d.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("🌐 dashboard started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	return ctx.Err()
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets the websocket upgrade reach the underlying Hijacker.
func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.ObserveRequest(route, r.Method, rec.status, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	writeJSONStatus(w, http.StatusOK, data)
}

// writeJSONStatus encodes before writing the header so an unencodable value
// turns into a 500 instead of an empty 200.
func writeJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		log.Error().Err(err).Msg("encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONStatus(w, status, map[string]string{"error": msg})
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]int{}
	if d.opts.Stats != nil {
		s, err := d.opts.Stats.GetStats()
		if err != nil {
			log.Error().Err(err).Msg("stats")
		}
		for k, v := range s {
			stats[k] = v
		}
	}
	stats["online_users"] = d.opts.Hub.Count()
	writeJSON(w, stats)
}

func (d *Dashboard) handleVIP(w http.ResponseWriter, r *http.Request) {
	balance := vip.ParseBalance(r.URL.Query().Get("balance"))
	writeJSON(w, d.tiers.Get(balance))
}

type growthParams struct {
	start  float64
	days   int
	rate   float64
	window int
}

func parseFinite(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return f, nil
}

func finite(samples []growth.DailySample) bool {
	for _, s := range samples {
		if math.IsNaN(s.Balance) || math.IsInf(s.Balance, 0) || math.IsNaN(s.Profit) || math.IsInf(s.Profit, 0) {
			return false
		}
	}
	return true
}

func (d *Dashboard) parseGrowth(r *http.Request) (growthParams, error) {
	p := growthParams{start: d.opts.Growth.StartBalance, days: d.opts.Growth.Days, rate: d.opts.Growth.MonthlyRate}
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		f, err := parseFinite("start", v)
		if err != nil {
			return p, err
		}
		p.start = f
	}
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("invalid days %q", v)
		}
		if n > maxGrowthDays {
			return p, fmt.Errorf("days must be at most %d", maxGrowthDays)
		}
		p.days = n
	}
	if v := q.Get("rate"); v != "" {
		f, err := parseFinite("rate", v)
		if err != nil {
			return p, err
		}
		p.rate = f
	}
	if v := q.Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxChartWindow {
			return p, fmt.Errorf("window must be between 0 and %d", maxChartWindow)
		}
		p.window = n
	}
	return p, nil
}

// simulate runs the projection and rejects parameters whose series overflows.
func (d *Dashboard) simulate(w http.ResponseWriter, r *http.Request) (growthParams, []growth.DailySample, bool) {
	p, err := d.parseGrowth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return p, nil, false
	}
	samples := growth.Simulate(p.start, p.days, p.rate)
	if !finite(samples) {
		writeError(w, http.StatusBadRequest, "projection overflows; lower start or rate")
		return p, nil, false
	}
	return p, samples, true
}

func (d *Dashboard) handleGrowth(w http.ResponseWriter, r *http.Request) {
	p, samples, ok := d.simulate(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]interface{}{
		"samples": samples,
		"summary": growth.Summarize(p.start, samples),
	})
}

// handleGrowthChart returns chart series. With window=N the response also
// carries exactly N daily profits, zero-filled past the projection.
func (d *Dashboard) handleGrowthChart(w http.ResponseWriter, r *http.Request) {
	p, samples, ok := d.simulate(w, r)
	if !ok {
		return
	}
	out := map[string]interface{}{
		"balance": growth.BalancePoints(samples),
		"profit":  growth.ProfitPoints(samples),
	}
	if p.window > 0 {
		out["window"] = growth.PadProfits(samples, p.window)
	}
	writeJSON(w, out)
}

func (d *Dashboard) handlePythLatest(w http.ResponseWriter, r *http.Request) {
	if d.opts.Prices == nil {
		writeError(w, http.StatusServiceUnavailable, "price feed not configured")
		return
	}
	body, err := d.opts.Prices.Latest(r.Context())
	if err != nil {
		var upErr *pricefeed.UpstreamError
		if errors.As(err, &upErr) {
			writeError(w, upErr.Status, "Failed to fetch price from Pyth API")
			return
		}
		log.Error().Err(err).Msg("error fetching BTC price")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (d *Dashboard) handlePrice(w http.ResponseWriter, r *http.Request) {
	if d.opts.Prices == nil {
		writeError(w, http.StatusServiceUnavailable, "price feed not configured")
		return
	}
	quotes, err := d.opts.Prices.Quotes(r.Context())
	if err != nil {
		var upErr *pricefeed.UpstreamError
		if errors.As(err, &upErr) {
			writeError(w, upErr.Status, "Failed to fetch price from Pyth API")
			return
		}
		log.Error().Err(err).Msg("error decoding price feed")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	type quoteView struct {
		pricefeed.Quote
		Value      float64 `json:"value"`
		Confidence float64 `json:"confidence"`
	}
	out := make([]quoteView, len(quotes))
	for i, q := range quotes {
		out[i] = quoteView{Quote: q, Value: q.Value(), Confidence: q.Confidence()}
	}
	writeJSON(w, out)
}

func (d *Dashboard) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if d.opts.Leaderboard == nil {
		writeError(w, http.StatusServiceUnavailable, "leaderboard not configured")
		return
	}
	limit := d.opts.LeaderboardLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	traders, err := d.opts.Leaderboard.Top(limit)
	if errors.Is(err, leaderboard.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "leaderboard not configured")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("error fetching leaderboard")
		writeError(w, http.StatusInternalServerError, "Error fetching leaderboard data")
		return
	}
	if traders == nil {
		traders = []leaderboard.Trader{}
	}
	writeJSON(w, traders)
}

func (d *Dashboard) handleAccount(w http.ResponseWriter, r *http.Request) {
	if d.opts.Accounts == nil {
		writeError(w, http.StatusServiceUnavailable, "vault not configured")
		return
	}
	acc, err := d.opts.Accounts.Account(r.Context(), chi.URLParam(r, "address"))
	switch {
	case errors.Is(err, ledger.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	case errors.Is(err, ledger.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "vault not configured")
		return
	case err != nil:
		log.Error().Err(err).Str("address", chi.URLParam(r, "address")).Msg("error fetching account")
		writeError(w, http.StatusBadGateway, "Error fetching account data")
		return
	}
	writeJSON(w, map[string]interface{}{
		"account": acc,
		"vip":     d.tiers.Get(vip.ParseBalance(acc.Balance)),
	})
}

func (d *Dashboard) handleOnline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]int{"count": d.opts.Hub.Count()})
}
