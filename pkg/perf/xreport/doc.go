// Package xreport 按 cron 计划把直方图快照摘要写入日志。
//
// 每个非空的 (操作名, 维度) 一行，包含 count、mean、min、max、p50、p99：
//
//	r, err := xreport.New(monitor, logger, xreport.WithSchedule("@every 1m"))
//	r.Start()
//	defer r.Stop(ctx)
//
// 分位数由分桶插值估算，精度受桶边界限制。
// 上一次报告未结束时跳过本次触发。
package xreport
