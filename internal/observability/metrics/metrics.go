package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type collector interface {
	write(sb *strings.Builder)
}

type counterVec struct {
	name   string
	help   string
	labels []string

	mu     sync.RWMutex
	values map[string]float64
}

type gaugeVec struct {
	name   string
	help   string
	labels []string

	mu     sync.RWMutex
	values map[string]float64
}

type histogramVec struct {
	name    string
	help    string
	labels  []string
	buckets []float64

	mu     sync.RWMutex
	values map[string]*histogramValue
}

type histogramValue struct {
	counts []uint64
	sum    float64
	total  uint64
}

var (
	collectors []collector

	crackRequests   = newCounterVec("cipherlab_crack_requests_total", "Number of crack requests by cipher and outcome.", []string{"cipher", "outcome"})
	crackCandidates = newCounterVec("cipherlab_crack_candidates_total", "Number of candidate plaintexts returned by crackers.", []string{"cipher"})
	crackDuration   = newHistogramVec("cipherlab_crack_duration_seconds", "Time spent cracking a ciphertext.", []string{"cipher"})
	crackInflight   = newGaugeVec("cipherlab_crack_inflight", "Crack requests currently running.", []string{"cipher"})
	cipherOps       = newCounterVec("cipherlab_cipher_operations_total", "Encrypt and decrypt calls by cipher.", []string{"cipher", "direction"})
	httpRequests    = newCounterVec("cipherlab_http_requests_total", "HTTP requests served by route and status code.", []string{"route", "code"})
	httpLatency     = newHistogramVec("cipherlab_http_request_duration_seconds", "Latency of HTTP handlers by route.", []string{"route"})
	rpcRequests     = newCounterVec("cipherlab_rpc_requests_total", "gRPC requests served by method and status code.", []string{"method", "code"})
	rpcLatency      = newHistogramVec("cipherlab_rpc_duration_seconds", "Latency of gRPC handlers by method.", []string{"method"})

	totalRequests uint64
)

func init() {
	collectors = []collector{crackRequests, crackCandidates, crackDuration, crackInflight, cipherOps, httpRequests, httpLatency, rpcRequests, rpcLatency}
}

func newCounterVec(name, help string, labels []string) *counterVec {
	return &counterVec{name: name, help: help, labels: labels, values: make(map[string]float64)}
}

func newGaugeVec(name, help string, labels []string) *gaugeVec {
	return &gaugeVec{name: name, help: help, labels: labels, values: make(map[string]float64)}
}

func newHistogramVec(name, help string, labels []string) *histogramVec {
	buckets := []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	return &histogramVec{
		name:    name,
		help:    help,
		labels:  labels,
		buckets: buckets,
		values:  make(map[string]*histogramValue),
	}
}

// labelKey joins label values into the map key, checking the arity.
func labelKey(labels, values []string) string {
	if len(values) != len(labels) {
		panic(fmt.Sprintf("expected %d labels, got %d", len(labels), len(values)))
	}
	return strings.Join(values, "\xff")
}

// writeLabels renders {a="x",b="y"} for a stored key. extra is appended as a
// final pre-rendered pair (used for histogram le buckets).
func writeLabels(sb *strings.Builder, labels []string, key, extra string) {
	if len(labels) == 0 && extra == "" {
		return
	}
	var parts []string
	if len(labels) > 0 {
		parts = strings.Split(key, "\xff")
	}
	sb.WriteString("{")
	for i, label := range labels {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(label)
		sb.WriteString("=\"")
		sb.WriteString(escapeLabel(parts[i]))
		sb.WriteString("\"")
	}
	if extra != "" {
		if len(labels) > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(extra)
	}
	sb.WriteString("}")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (cv *counterVec) add(delta float64, values ...string) {
	key := labelKey(cv.labels, values)
	cv.mu.Lock()
	cv.values[key] += delta
	cv.mu.Unlock()
}

func (cv *counterVec) IncWith(values ...string) {
	cv.add(1, values...)
}

func (cv *counterVec) AddWith(delta float64, values ...string) {
	cv.add(delta, values...)
}

func (cv *counterVec) write(sb *strings.Builder) {
	writeHeader(sb, cv.name, cv.help, "counter")
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	for _, key := range sortedKeys(cv.values) {
		sb.WriteString(cv.name)
		writeLabels(sb, cv.labels, key, "")
		fmt.Fprintf(sb, " %g\n", cv.values[key])
	}
}

func (gv *gaugeVec) add(delta float64, values ...string) {
	key := labelKey(gv.labels, values)
	gv.mu.Lock()
	gv.values[key] += delta
	gv.mu.Unlock()
}

func (gv *gaugeVec) write(sb *strings.Builder) {
	writeHeader(sb, gv.name, gv.help, "gauge")
	gv.mu.RLock()
	defer gv.mu.RUnlock()
	for _, key := range sortedKeys(gv.values) {
		sb.WriteString(gv.name)
		writeLabels(sb, gv.labels, key, "")
		fmt.Fprintf(sb, " %g\n", gv.values[key])
	}
}

func (hv *histogramVec) Observe(values []string, sample float64) {
	key := labelKey(hv.labels, values)
	hv.mu.Lock()
	defer hv.mu.Unlock()
	entry, ok := hv.values[key]
	if !ok {
		entry = &histogramValue{counts: make([]uint64, len(hv.buckets)+1)}
		hv.values[key] = entry
	}
	entry.sum += sample
	entry.total++
	idx := sort.SearchFloat64s(hv.buckets, sample)
	entry.counts[idx]++
}

func (hv *histogramVec) write(sb *strings.Builder) {
	writeHeader(sb, hv.name, hv.help, "histogram")
	hv.mu.RLock()
	defer hv.mu.RUnlock()
	for _, key := range sortedKeys(hv.values) {
		entry := hv.values[key]
		cumulative := uint64(0)
		for i, upper := range hv.buckets {
			cumulative += entry.counts[i]
			sb.WriteString(hv.name + "_bucket")
			writeLabels(sb, hv.labels, key, fmt.Sprintf("le=\"%g\"", upper))
			fmt.Fprintf(sb, " %d\n", cumulative)
		}
		cumulative += entry.counts[len(hv.buckets)]
		sb.WriteString(hv.name + "_bucket")
		writeLabels(sb, hv.labels, key, "le=\"+Inf\"")
		fmt.Fprintf(sb, " %d\n", cumulative)

		sb.WriteString(hv.name + "_sum")
		writeLabels(sb, hv.labels, key, "")
		fmt.Fprintf(sb, " %g\n", entry.sum)

		sb.WriteString(hv.name + "_count")
		writeLabels(sb, hv.labels, key, "")
		fmt.Fprintf(sb, " %d\n", entry.total)
	}
}

func writeHeader(sb *strings.Builder, name, help, metricType string) {
	sb.WriteString("# HELP ")
	sb.WriteString(name)
	sb.WriteString(" ")
	sb.WriteString(help)
	sb.WriteString("\n# TYPE ")
	sb.WriteString(name)
	sb.WriteString(" ")
	sb.WriteString(metricType)
	sb.WriteString("\n")
}

func escapeLabel(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\n", "\\n")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}

// Handler exposes the metrics registry as an http.Handler compatible with Prometheus.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var sb strings.Builder
		for _, collector := range collectors {
			collector.write(&sb)
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(sb.String()))
	})
}

// CrackStarted marks a crack request as running and returns a func that
// records its outcome, candidate count and duration when it finishes.
func CrackStarted(cipher string) func(outcome string, candidates int) {
	cipher = strings.ToLower(normalise(cipher, "unknown"))
	start := time.Now()
	crackInflight.add(1, cipher)
	return func(outcome string, candidates int) {
		crackInflight.add(-1, cipher)
		crackRequests.IncWith(cipher, strings.ToLower(normalise(outcome, "unknown")))
		if candidates > 0 {
			crackCandidates.AddWith(float64(candidates), cipher)
		}
		crackDuration.Observe([]string{cipher}, time.Since(start).Seconds())
	}
}

// RecordCipherOperation counts an encrypt or decrypt call.
func RecordCipherOperation(cipher, direction string) {
	cipherOps.IncWith(strings.ToLower(normalise(cipher, "unknown")), strings.ToLower(normalise(direction, "unknown")))
}

// ObserveHTTPRequest records a served HTTP request.
func ObserveHTTPRequest(route string, status int, dur time.Duration) {
	route = normalise(route, "unmatched")
	httpRequests.IncWith(route, strconv.Itoa(status))
	httpLatency.Observe([]string{route}, dur.Seconds())
	atomic.AddUint64(&totalRequests, 1)
}

// ObserveRPCRequest records a served gRPC call and its status code.
func ObserveRPCRequest(method, code string, dur time.Duration) {
	method = normalise(method, "unknown")
	rpcRequests.IncWith(method, normalise(code, "Unknown"))
	rpcLatency.Observe([]string{method}, dur.Seconds())
	atomic.AddUint64(&totalRequests, 1)
}

// TotalRequests returns the number of HTTP and gRPC requests served since
// process start.
func TotalRequests() uint64 {
	return atomic.LoadUint64(&totalRequests)
}

func normalise(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
