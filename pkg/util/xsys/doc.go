// Package xsys 读取进程级资源计数，供度量作用域计算增量。
//
// # 功能概览
//
//   - [ProcessCPUTime]: 进程累计 CPU 时间（用户态 + 内核态），Unix 平台通过
//     getrusage(RUSAGE_SELF) 实现，非 Unix 平台返回 [ErrUnsupportedPlatform]
//   - [AllocatedBytes]: 进程启动以来累计堆分配字节数，所有平台通过 runtime/metrics 读取
//
// 两者都是进程级计数：并发作用域之间的增量会互相包含，只能作为近似值。
//
// 设计决策: 分配计数使用 runtime/metrics 的 /gc/heap/allocs:bytes 而非
// runtime.ReadMemStats，后者会 stop-the-world，不适合放在每个作用域的开始和结束。
package xsys
