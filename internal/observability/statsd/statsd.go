// Package statsd emits client-side request metrics using the DogStatsD line protocol.
package statsd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Tags are metric dimensions, rendered as `|#k:v,...` sorted by key.
type Tags map[string]string

// Sink is the minimal metrics surface used by the gateway.
type Sink interface {
	Count(name string, value int64, tags Tags)
	Timing(name string, value time.Duration, tags Tags)
}

// Nop discards every metric.
type Nop struct{}

func (Nop) Count(string, int64, Tags)          {}
func (Nop) Timing(string, time.Duration, Tags) {}

// Config describes how to reach a StatsD-compatible agent.
type Config struct {
	Enabled    bool
	Address    string
	Prefix     string
	GlobalTags Tags
	Logger     *slog.Logger
}

// Client writes metrics over UDP. Writes are best-effort: failures are logged at
// debug level and never surface to callers. Safe for concurrent use.
type Client struct {
	prefix string
	global Tags
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

var (
	_ Sink = (*Client)(nil)
	_ Sink = Nop{}
)

// New returns a Nop sink when metrics are disabled, otherwise a dialed Client.
func New(ctx context.Context, cfg Config) (Sink, error) {
	if !cfg.Enabled || strings.TrimSpace(cfg.Address) == "" {
		return Nop{}, nil
	}
	return Dial(ctx, cfg)
}

// Dial connects a Client to cfg.Address.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	addr := strings.TrimSpace(cfg.Address)
	if addr == "" {
		return nil, errors.New("statsd address is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(dialCtx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", addr, err)
	}

	return &Client{
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "."),
		global: cleanTags(cfg.GlobalTags),
		logger: logger,
		conn:   conn,
	}, nil
}

// Count increments a counter.
func (c *Client) Count(name string, value int64, tags Tags) {
	c.send(name, strconv.FormatInt(value, 10), "c", tags)
}

// Timing records a duration in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags Tags) {
	ms := float64(value) / float64(time.Millisecond)
	c.send(name, strconv.FormatFloat(ms, 'f', -1, 64), "ms", tags)
}

// Close releases the UDP socket. Metrics sent afterwards are dropped.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) send(name, value, kind string, tags Tags) {
	if c == nil {
		return
	}
	line := formatLine(c.prefix, name, value, kind, c.global, tags)
	if line == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write([]byte(line)); err != nil {
		c.logger.Debug("statsd write failed", "metric", name, "error", err)
	}
}

func formatLine(prefix, name, value, kind string, global, local Tags) string {
	metric := metricName(prefix, name)
	if metric == "" {
		return ""
	}
	return metric + ":" + value + "|" + kind + formatTags(global, local)
}

func metricName(prefix, name string) string {
	n := strings.TrimSpace(name)
	n = strings.NewReplacer(" ", "_", "/", "_").Replace(n)
	for strings.Contains(n, "..") {
		n = strings.ReplaceAll(n, "..", ".")
	}
	n = strings.Trim(n, ".")
	switch {
	case n == "":
		return ""
	case prefix == "":
		return n
	default:
		return prefix + "." + n
	}
}

func formatTags(global, local Tags) string {
	merged := cleanTags(global)
	maps.Copy(merged, cleanTags(local))
	if len(merged) == 0 {
		return ""
	}

	parts := make([]string, 0, len(merged))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		parts = append(parts, k+":"+merged[k])
	}
	return "|#" + strings.Join(parts, ",")
}

func cleanTags(tags Tags) Tags {
	out := make(Tags, len(tags))
	for k, v := range tags {
		if key := strings.TrimSpace(k); key != "" {
			out[key] = strings.TrimSpace(v)
		}
	}
	return out
}

// Recorder keeps metrics in memory. Useful for asserting emitted metrics in tests.
type Recorder struct {
	mu     sync.Mutex
	Counts []Sample
	Timers []Sample
}

// Sample is one recorded metric.
type Sample struct {
	Name     string
	Value    int64
	Duration time.Duration
	Tags     Tags
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) Count(name string, value int64, tags Tags) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts = append(r.Counts, Sample{Name: name, Value: value, Tags: maps.Clone(tags)})
}

func (r *Recorder) Timing(name string, value time.Duration, tags Tags) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Timers = append(r.Timers, Sample{Name: name, Duration: value, Tags: maps.Clone(tags)})
}

// CountsNamed returns a copy of the counters recorded under name.
func (r *Recorder) CountsNamed(name string) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sample
	for _, s := range r.Counts {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}
