// Package perf 是进程内性能度量引擎的包集合。
//
// 子包：
//   - xhist: 无锁分桶直方图聚合
//   - xguard: 告警去重/冷却守卫
//   - xexport: 度量记录导出扇出
//   - xalert: 阈值告警评估与分发
//   - xperf: 度量作用域（Monitor/Scope），串联以上组件
//   - xreport: 定时快照报告
package perf
