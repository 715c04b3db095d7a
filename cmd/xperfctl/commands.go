package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/berkayhuz/norr/pkg/config/xconf"
	"github.com/berkayhuz/norr/pkg/observability/xlog"
	"github.com/berkayhuz/norr/pkg/perf/xalert"
	"github.com/berkayhuz/norr/pkg/perf/xexport"
	"github.com/berkayhuz/norr/pkg/perf/xperf"
	"github.com/berkayhuz/norr/pkg/perf/xreport"
)

// usageError 参数或配置错误，退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usage(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func createRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "运行并发合成负载并输出度量结果",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Usage: "负载持续时间", Value: 3 * time.Second},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "并发 worker 数", Value: 4},
			&cli.StringFlag{Name: "ops", Usage: "逗号分隔的操作名", Value: "Checkout,Search,Report"},
			&cli.DurationFlag{Name: "max-latency", Usage: "单次操作的最大模拟耗时", Value: 20 * time.Millisecond},
			&cli.IntFlag{Name: "slow-every", Usage: "每 N 次操作注入一次 4 倍耗时（0 关闭）", Value: 50},
			&cli.IntFlag{Name: "alloc-kb", Usage: "每次操作分配的 KiB", Value: 16},
			&cli.DurationFlag{Name: "threshold", Usage: "耗时告警阈值，覆盖配置中的 alert.duration_ms"},
			&cli.StringFlag{Name: "webhook", Usage: "告警 webhook URL"},
			&cli.StringFlag{Name: "redis", Usage: "告警写入的 Redis 地址（host:port）"},
			&cli.StringFlag{Name: "redis-key", Usage: "告警日志列表 key", Value: "xperf:alerts"},
			&cli.StringFlag{Name: "report", Usage: "周期快照日志的 cron 表达式，如 \"@every 1s\""},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "逐条打印 Metric"},
			&cli.BoolFlag{Name: "no-color", Usage: "禁用彩色输出"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.String("config"), false)
			if err != nil {
				return err
			}
			if d := cmd.Duration("threshold"); d > 0 {
				cfg.Alert.DurationMs = float64(d) / float64(time.Millisecond)
			}
			wl := workloadOptions{
				duration:   cmd.Duration("duration"),
				workers:    cmd.Int("workers"),
				ops:        splitOps(cmd.String("ops")),
				maxLatency: cmd.Duration("max-latency"),
				slowEvery:  cmd.Int("slow-every"),
				allocKB:    cmd.Int("alloc-kb"),
			}
			if err := wl.validate(); err != nil {
				return &usageError{err: err}
			}
			return cmdRun(ctx, outWriter(cmd), cfg, wl, runOptions{
				webhook:  cmd.String("webhook"),
				redis:    cmd.String("redis"),
				redisKey: cmd.String("redis-key"),
				report:   cmd.String("report"),
				verbose:  cmd.Bool("verbose"),
				noColor:  cmd.Bool("no-color"),
			})
		},
	}
}

func createValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "严格校验配置文件",
		ArgsUsage: "[path]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				path = cmd.String("config")
			}
			if path == "" {
				return usage("missing config path")
			}
			cfg, err := loadConfig(path, true)
			if err != nil {
				return err
			}
			w := outWriter(cmd)
			fmt.Fprintf(w, "%s: ok\n", path)
			fmt.Fprintf(w, "  sampling.probability = %g\n", cfg.Sampling.Probability)
			fmt.Fprintf(w, "  alert.duration_ms    = %g\n", cfg.Alert.DurationMs)
			fmt.Fprintf(w, "  alert.alloc_bytes    = %d\n", cfg.Alert.AllocBytes)
			fmt.Fprintf(w, "  guard                = %s cooldown=%s\n", orDefault(cfg.Guard.Kind, xperf.GuardBloom), cfg.Guard.CoolDown)
			return nil
		},
	}
}

// loadConfig 读取配置；path 为空时返回默认配置。配置错误统一视为参数错误。
func loadConfig(path string, strict bool) (xperf.Config, error) {
	if path == "" {
		return xperf.DefaultConfig(), nil
	}
	var opts []xconf.Option
	if strict {
		opts = append(opts, xconf.WithStrict())
	}
	cfg, err := xperf.LoadConfig(path, opts...)
	if err != nil {
		return xperf.Config{}, &usageError{err: err}
	}
	return cfg, nil
}

type runOptions struct {
	webhook  string
	redis    string
	redisKey string
	report   string
	verbose  bool
	noColor  bool
}

// cmdRun 装配 Monitor、运行负载并打印结果。
func cmdRun(ctx context.Context, w io.Writer, cfg xperf.Config, wl workloadOptions, ro runOptions) error {
	logger, cleanup, err := xlog.New().
		SetOutput(os.Stderr).
		SetLevelString(orDefault(cfg.Log.Level, "warn")).
		SetFormat(cfg.Log.Format).
		Build()
	if err != nil {
		return &usageError{err: err}
	}
	defer cleanup() //nolint:errcheck // stderr 无需关闭

	pe := xexport.NewDefaultPercentileExporter()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.WithoutCancel(ctx)) //nolint:errcheck // 进程退出前的清理

	otelExp, err := xexport.NewOTelExporter(provider)
	if err != nil {
		return err
	}
	exporters := []xexport.Exporter{pe, otelExp}
	if ro.verbose {
		var copts []xexport.ConsoleOption
		if ro.noColor {
			copts = append(copts, xexport.WithNoColor())
		}
		console, err := xexport.NewConsoleExporter(w, copts...)
		if err != nil {
			return err
		}
		exporters = append(exporters, console)
	}

	alerts := make(chan xalert.PerfAlert, 256)
	chanSink, err := xalert.NewChannelSink(alerts)
	if err != nil {
		return err
	}
	logSink, err := xalert.NewLogSink(logger)
	if err != nil {
		return err
	}
	sinks := []xalert.Sink{chanSink, logSink}

	if ro.webhook != "" {
		hook, err := xalert.NewWebhookSink(ro.webhook,
			xalert.WithRetry(3, 100*time.Millisecond),
			xalert.WithBreaker(5, 30*time.Second))
		if err != nil {
			return &usageError{err: err}
		}
		sinks = append(sinks, hook)
	}

	var journal *xalert.RedisSink
	if ro.redis != "" {
		client := redis.NewClient(&redis.Options{Addr: ro.redis})
		defer client.Close() //nolint:errcheck // 进程退出前的清理
		journal, err = xalert.NewRedisSink(client, ro.redisKey, xalert.WithMaxLen(1000))
		if err != nil {
			return &usageError{err: err}
		}
		sinks = append(sinks, journal)
	}

	m, err := xperf.New(cfg,
		xperf.WithLogger(logger),
		xperf.WithExporters(exporters...),
		xperf.WithSinks(sinks...),
	)
	if err != nil {
		return &usageError{err: err}
	}

	if ro.report != "" {
		rep, err := xreport.New(m, logger, xreport.WithSchedule(ro.report))
		if err != nil {
			_ = m.Close(ctx) //nolint:errcheck // 参数错误路径
			return &usageError{err: err}
		}
		rep.Start()
		defer rep.Stop(context.WithoutCancel(ctx)) //nolint:errcheck // 报告器停止失败不影响结果
	}

	p := newPrinter(w, ro.noColor)
	done := make(chan struct{})
	collected := make(chan []xalert.PerfAlert, 1)
	go func() {
		collected <- collectAlerts(alerts, done)
	}()

	ops, runErr := runWorkload(ctx, m, wl)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Dispatch.SendTimeout+time.Second)
	defer cancel()
	closeErr := m.Close(closeCtx)
	close(done)
	got := <-collected

	p.summary(ops, wl.duration)
	p.snapshots(m.Snapshots())
	p.percentiles(pe, wl.ops)
	p.alerts(got)
	p.stats(m.Stats())

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.WithoutCancel(ctx), &rm); err == nil {
		p.otel(countSeries(&rm))
	}
	if journal != nil {
		if recent, err := journal.Recent(context.WithoutCancel(ctx), 5); err == nil {
			p.journal(ro.redisKey, len(recent))
		} else {
			logger.Warn(ctx, "read alert journal failed", xlog.Err(err))
		}
	}

	if runErr != nil {
		return runErr
	}
	return closeErr
}

// collectAlerts 收集告警直到 done 关闭，再取走 channel 中剩余的告警。
// alerts 不关闭：Close 超时时仍可能有 worker 在投递。
func collectAlerts(alerts <-chan xalert.PerfAlert, done <-chan struct{}) []xalert.PerfAlert {
	var got []xalert.PerfAlert
	for {
		select {
		case a := <-alerts:
			got = append(got, a)
		case <-done:
			for {
				select {
				case a := <-alerts:
					got = append(got, a)
				default:
					return got
				}
			}
		}
	}
}

func splitOps(s string) []string {
	var out []string
	for op := range strings.SplitSeq(s, ",") {
		if op = strings.TrimSpace(op); op != "" {
			out = append(out, op)
		}
	}
	return out
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel() // 第一次信号: 提前结束负载并输出结果

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130) // 第二次信号: 强制退出
	}()
}
