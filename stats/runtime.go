// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"runtime"
	"time"

	"github.com/kelindar/process"
)

// 创建时间
var (
	StartingTime = time.Now()
)

// Proc 进程信息统计
type Proc struct {
	CPU        float64 `json:"cpu"`        // cpu使用情况
	Priv       int32   `json:"priv"`       // 私有内存 KB
	Virt       int32   `json:"virt"`       // 虚拟内存 KB
	HeapInuse  int32   `json:"heapinuse"`  // KB MemStats.HeapInuse
	Goroutines int32   `json:"goroutines"` // runtime.NumGoroutine()
	Uptime     int32   `json:"uptime"`     // 运行时间 S
}

// MeasureRuntime 获取进程和 Go 运行时信息。
func MeasureRuntime() (proc Proc) {
	defer func() {
		recover() // 部分平台不支持进程统计
	}()

	var memory runtime.MemStats
	runtime.ReadMemStats(&memory)
	proc = Proc{
		HeapInuse:  toKB(memory.HeapInuse),
		Goroutines: int32(runtime.NumGoroutine()),
		Uptime:     int32(time.Since(StartingTime).Seconds()),
	}

	var memoryPriv, memoryVirtual int64
	var cpu float64
	process.ProcUsage(&cpu, &memoryPriv, &memoryVirtual)
	proc.CPU = cpu
	proc.Priv = toKB(uint64(memoryPriv))
	proc.Virt = toKB(uint64(memoryVirtual))
	return
}

// Converts the memory in bytes to KBs, otherwise it would overflow our int32
func toKB(v uint64) int32 {
	return int32(v / 1024)
}
