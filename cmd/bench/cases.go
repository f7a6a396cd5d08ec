// README: Benchmark cases: environment checks, API contract checks and load runs with cache-hit ratios.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

var (
	tunis  = map[string]float64{"lat": 36.8065, "lng": 10.1815}
	sousse = map[string]float64{"lat": 35.8256, "lng": 10.6369}
	sfax   = map[string]float64{"lat": 34.7406, "lng": 10.7603}
)

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	estimate := map[string]any{
		"pickup":        tunis,
		"dropoff":       sousse,
		"vehicle_class": "van",
		"trip_type":     "one_way",
		"traffic_level": "medium",
	}
	route := map[string]any{"waypoints": []any{tunis, sfax}, "profile": "truck"}

	return []TestCase{
		{Name: "Env: Postgres connect", Run: checkPostgres},
		{Name: "Env: Redis connect", Run: checkRedis},
		{Name: "Migration: apply (optional)", Run: applyMigration},
		{Name: "Migration: tables exist", Run: checkTables},

		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK),

		httpCase("Routes: resolve", http.MethodPost, base+"/api/routes", route, http.StatusOK),
		httpCase("Routes: single waypoint -> 400", http.MethodPost, base+"/api/routes", map[string]any{
			"waypoints": []any{tunis},
		}, http.StatusBadRequest),
		httpCase("Routes: decode", http.MethodPost, base+"/api/routes/decode", map[string]any{
			"polyline": "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
		}, http.StatusOK),
		httpCase("Routes: decode malformed -> 400", http.MethodPost, base+"/api/routes/decode", map[string]any{
			"polyline": "_p~iF~ps|",
		}, http.StatusBadRequest),

		httpCase("Geocode: autocomplete", http.MethodGet, base+"/api/geocode/autocomplete?q=avenue+habib+bourguiba&lat=36.8&lng=10.18", nil, http.StatusOK),
		httpCase("Geocode: autocomplete short query -> 400", http.MethodGet, base+"/api/geocode/autocomplete?q=a", nil, http.StatusBadRequest),
		httpCase("Geocode: reverse", http.MethodGet, base+"/api/geocode/reverse?lat=36.8065&lng=10.1815", nil, http.StatusOK, http.StatusNotFound),

		httpCase("Pricing: estimate", http.MethodPost, base+"/api/pricing/estimate", estimate, http.StatusOK),
		httpCase("Pricing: missing fields -> 400", http.MethodPost, base+"/api/pricing/estimate", map[string]any{}, http.StatusBadRequest),
		httpCase("Pricing: unknown vehicle class -> 400", http.MethodPost, base+"/api/pricing/estimate", map[string]any{
			"pickup": tunis, "dropoff": sousse, "vehicle_class": "rocket",
		}, http.StatusBadRequest),

		{Name: "Load: pricing estimate", Run: func(ctx context.Context, r *Runner) Result {
			return perfLoad(ctx, r, base+"/api/pricing/estimate", estimate)
		}},
		{Name: "Load: route resolve", Run: func(ctx context.Context, r *Runner) Result {
			return perfLoad(ctx, r, base+"/api/routes", route)
		}},
	}
}

func checkPostgres(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: "SKIP", Note: "db not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	start := time.Now()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	return Result{Status: "PASS", Latency: time.Since(start)}
}

func checkRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: "SKIP", Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	start := time.Now()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	n, err := r.redis.DBSize(ctx).Result()
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("keys=%d", n)}
}

func applyMigration(ctx context.Context, r *Runner) Result {
	if !r.cfg.ApplyMigration {
		return Result{Status: "SKIP", Note: "apply-migration=false"}
	}
	if r.db == nil {
		return Result{Status: "FAIL", Note: "db not configured"}
	}
	sql, err := os.ReadFile(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	for _, s := range splitSQL(string(sql)) {
		if _, err := r.db.Exec(ctx, s); err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
	}
	return Result{Status: "PASS"}
}

func checkTables(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: "SKIP", Note: "db not configured"}
	}
	tables, err := extractTables(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	for _, t := range tables {
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
			t,
		).Scan(&exists)
		if err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
		if !exists {
			return Result{Status: "FAIL", Note: "missing table: " + t}
		}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("tables=%d", len(tables))}
}

func httpCase(name, method, url string, payload any, okStatuses ...int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			status, _, err := r.do(ctx, method, url, payload)
			latency := time.Since(start)
			if err != nil {
				return Result{Status: "FAIL", Latency: latency, Note: err.Error()}
			}
			if slices.Contains(okStatuses, status) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
		},
	}
}

// do sends payload as JSON and reports the status and the response's "cached" flag.
func (r *Runner) do(ctx context.Context, method, url string, payload any) (int, bool, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, false, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, false, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()

	var out struct {
		Cached bool `json:"cached"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, out.Cached, nil
}

// perfLoad hammers url for the configured duration and reports throughput,
// latency percentiles and the share of responses served from cache.
func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var (
		mu        sync.Mutex
		latencies []time.Duration
		errCount  int
		hits      int
	)
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				start := time.Now()
				status, cached, err := r.do(ctx, http.MethodPost, url, payload)
				elapsed := time.Since(start)
				mu.Lock()
				if err != nil || status != http.StatusOK {
					errCount++
				} else {
					latencies = append(latencies, elapsed)
					if cached {
						hits++
					}
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(latencies) == 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("no successful requests, errors=%d", errCount)}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	rps := float64(len(latencies)) / r.cfg.Duration.Seconds()
	return Result{
		Status:  "PASS",
		Latency: percentile(latencies, 50),
		Note: fmt.Sprintf("rps=%.1f p95=%s p99=%s hit_ratio=%.2f errors=%d",
			rps, percentile(latencies, 95), percentile(latencies, 99),
			float64(hits)/float64(len(latencies)), errCount),
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	idx := (len(sorted)*p + 99) / 100
	if idx < 1 {
		idx = 1
	}
	return sorted[idx-1]
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
