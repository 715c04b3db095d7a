package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/berkayhuz/norr/pkg/perf/xalert"
	"github.com/berkayhuz/norr/pkg/perf/xexport"
	"github.com/berkayhuz/norr/pkg/perf/xhist"
	"github.com/berkayhuz/norr/pkg/perf/xperf"
)

// printer 输出 run 命令的结果。
type printer struct {
	w       io.Writer
	title   *color.Color
	name    *color.Color
	warn    *color.Color
	dimmed  *color.Color
	noColor bool
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:      w,
		title:  color.New(color.FgCyan, color.Bold),
		name:   color.New(color.FgGreen),
		warn:   color.New(color.FgRed, color.Bold),
		dimmed: color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.title, p.name, p.warn, p.dimmed} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) section(title string) {
	fmt.Fprintln(p.w)
	p.title.Fprintln(p.w, title)
}

func (p *printer) summary(ops uint64, d time.Duration) {
	rate := 0.0
	if d > 0 {
		rate = float64(ops) / d.Seconds()
	}
	p.section("Workload")
	fmt.Fprintf(p.w, "  %d operations in %s (%.1f ops/s)\n", ops, d, rate)
}

func (p *printer) snapshots(snaps []xhist.KeyedState) {
	p.section("Histograms")
	fmt.Fprintf(p.w, "  %-20s %-9s %8s %10s %10s %10s %10s\n", "operation", "kind", "count", "mean", "min", "max", "p99")
	for _, ks := range snaps {
		st := ks.State
		if st.Empty() {
			continue
		}
		fmt.Fprintf(p.w, "  %s %-9s %8d %10s %10s %10s %10s\n",
			p.name.Sprintf("%-20s", ks.Key.Name), ks.Key.Kind, st.Count,
			formatKind(ks.Key.Kind, st.Mean()), formatKind(ks.Key.Kind, st.Min),
			formatKind(ks.Key.Kind, st.Max), formatKind(ks.Key.Kind, st.Quantile(0.99)))
	}
}

func (p *printer) percentiles(pe *xexport.PercentileExporter, ops []string) {
	p.section("Duration percentiles (HDR)")
	for _, op := range ops {
		pc, ok := pe.Percentiles(op, xexport.KindDuration)
		if !ok {
			p.dimmed.Fprintf(p.w, "  %-20s no samples\n", op)
			continue
		}
		fmt.Fprintf(p.w, "  %s p50=%.2fms p90=%.2fms p95=%.2fms p99=%.2fms max=%.2fms\n",
			p.name.Sprintf("%-20s", op), pc.P50, pc.P90, pc.P95, pc.P99, pc.Max)
	}
	if n := pe.Clamped(); n > 0 {
		p.warn.Fprintf(p.w, "  %d values clamped to the trackable range\n", n)
	}
}

func (p *printer) alerts(alerts []xalert.PerfAlert) {
	p.section(fmt.Sprintf("Alerts (%d)", len(alerts)))
	for _, a := range alerts {
		p.warn.Fprintf(p.w, "  %s %s=%s > %s", a.MetricName, a.Dimension,
			formatDim(a.Dimension, a.Value), formatDim(a.Dimension, a.Threshold))
		fmt.Fprintf(p.w, " at %s\n", a.Timestamp.Format(time.RFC3339Nano))
	}
}

func (p *printer) stats(st xperf.Stats) {
	p.section("Monitor")
	fmt.Fprintf(p.w, "  scopes: begun=%d sampled=%d recorded=%d discarded=%d double_closed=%d\n",
		st.ScopesBegun, st.ScopesSampled, st.ScopesRecorded, st.ScopesDiscarded, st.DoubleClosed)
	fmt.Fprintf(p.w, "  export: metrics=%d failures=%d custom=%d\n",
		st.MetricsExported, st.ExportFailures, st.CustomObserved)
	fmt.Fprintf(p.w, "  alerts: breached=%d suppressed=%d accepted=%d delivered=%d dropped=%d released=%d sink_failures=%d\n",
		st.AlertsBreached, st.AlertsSuppressed, st.AlertsAccepted, st.AlertsDelivered, st.AlertsDropped, st.AlertsReleased, st.SinkFailures)
}

func (p *printer) otel(series int) {
	p.dimmed.Fprintf(p.w, "  otel: %d histogram series collected\n", series)
}

func (p *printer) journal(key string, n int) {
	p.dimmed.Fprintf(p.w, "  redis: %d recent alerts in %s\n", n, key)
}

func formatKind(kind string, v float64) string {
	if kind == xexport.KindAllocation.String() {
		return xexport.FormatBytes(v)
	}
	if kind == xexport.KindCustom.String() {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.2fms", v)
}

func formatDim(dim string, v float64) string {
	if dim == xalert.DimensionAlloc {
		return xexport.FormatBytes(v)
	}
	return fmt.Sprintf("%.2fms", v)
}

// countSeries 统计 OTel 收集结果中的直方图数据点数。
func countSeries(rm *metricdata.ResourceMetrics) int {
	n := 0
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if h, ok := m.Data.(metricdata.Histogram[float64]); ok {
				n += len(h.DataPoints)
			}
		}
	}
	return n
}
