package observability

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xrbt/lib/tree"
)

const meterPrefix = "xrbt/app"

func meterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString(meterPrefix)
	builder.WriteString("/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the goroutine and GOMAXPROCS gauges and starts
// the Go runtime instrumentation on mp.
func InitAppStats(mp metric.MeterProvider, name string) error {
	meter := mp.Meter(
		meterName(name),
		metric.WithInstrumentationVersion(otelruntime.Version()),
	)
	_ = lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
		"app.core.goroutines",
		metric.WithDescription(`The application goroutines' info.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(int64(runtime.NumGoroutine()))
			return nil
		}),
	))
	_ = lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
		"app.core.processes",
		metric.WithDescription(`The application processes' info.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(int64(runtime.GOMAXPROCS(0)))
			return nil
		}),
	))
	return otelruntime.Start(otelruntime.WithMeterProvider(mp))
}

type treeSnapshot struct {
	stats  tree.RBTreeStats
	keys   int64
	height int64
}

// TreeStats publishes the counters of named trees.
// Trees are not safe for concurrent use, so the collector only ever
// reads the snapshots handed to Record.
type TreeStats struct {
	lock  sync.RWMutex
	trees map[string]treeSnapshot
}

func NewTreeStats(mp metric.MeterProvider, name string) *TreeStats {
	s := &TreeStats{
		trees: make(map[string]treeSnapshot, 8),
	}
	meter := mp.Meter(meterName(name))

	counter := func(inst, desc string, fn func(snap treeSnapshot) uint64) {
		_ = lo.Must[metric.Int64ObservableCounter](meter.Int64ObservableCounter(
			inst,
			metric.WithDescription(desc),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				s.observe(func(treeName string, snap treeSnapshot) {
					ob.Observe(int64(fn(snap)), metric.WithAttributes(attribute.String("tree", treeName)))
				})
				return nil
			}),
		))
	}
	gauge := func(inst, desc string, fn func(snap treeSnapshot) int64) {
		_ = lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			inst,
			metric.WithDescription(desc),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				s.observe(func(treeName string, snap treeSnapshot) {
					ob.Observe(fn(snap), metric.WithAttributes(attribute.String("tree", treeName)))
				})
				return nil
			}),
		))
	}

	counter("xrbt.tree.inserts", "Keys inserted.", func(snap treeSnapshot) uint64 { return snap.stats.Inserts })
	counter("xrbt.tree.removes", "Keys removed.", func(snap treeSnapshot) uint64 { return snap.stats.Removes })
	counter("xrbt.tree.rotations", "Left and right rotations.", func(snap treeSnapshot) uint64 { return snap.stats.Rotations })
	counter("xrbt.tree.insert_fixups", "Insert fixup iterations.", func(snap treeSnapshot) uint64 { return snap.stats.InsertFixups })
	counter("xrbt.tree.remove_fixups", "Remove fixup iterations.", func(snap treeSnapshot) uint64 { return snap.stats.RemoveFixups })
	gauge("xrbt.tree.keys", "Keys currently stored.", func(snap treeSnapshot) int64 { return snap.keys })
	gauge("xrbt.tree.height", "Longest root to leaf path.", func(snap treeSnapshot) int64 { return snap.height })
	return s
}

// Record replaces the snapshot of treeName with the current state of t.
// It must be called from the goroutine that owns t.
func (s *TreeStats) Record(treeName string, t tree.RBTree) {
	if s == nil || t == nil {
		return
	}
	snap := treeSnapshot{
		stats:  t.Stats(),
		keys:   t.Len(),
		height: int64(t.Height()),
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.trees[treeName] = snap
}

// Trees returns the recorded tree names in order.
func (s *TreeStats) Trees() []string {
	if s == nil {
		return nil
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	names := lo.Keys(s.trees)
	sort.Strings(names)
	return names
}

func (s *TreeStats) observe(fn func(treeName string, snap treeSnapshot)) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for treeName, snap := range s.trees {
		fn(treeName, snap)
	}
}
