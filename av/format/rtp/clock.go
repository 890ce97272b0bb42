// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import "time"

// Clock 把 32 位 RTP 时间戳换算成自首包起的纳秒数，处理回绕
type Clock struct {
	unit    float64 // 每个 RTP 时间单位的纳秒数
	started bool
	base    uint32
	last    uint32
	cycles  int64
}

// NewClock 创建时钟，clockRate 无效时使用 90kHz
func NewClock(clockRate int) *Clock {
	if clockRate <= 0 {
		clockRate = 90000
	}
	return &Clock{unit: float64(time.Second) / float64(clockRate)}
}

// Elapsed 返回 rtptime 相对首个时间戳的纳秒数
func (c *Clock) Elapsed(rtptime uint32) int64 {
	if !c.started {
		c.started = true
		c.base = rtptime
		c.last = rtptime
	}

	// 按前后跨越半个周期判断回绕，迟到的包不推进时钟
	cycles := c.cycles
	diff := int32(rtptime - c.last)
	switch {
	case diff > 0 && rtptime < c.last:
		cycles++
	case diff < 0 && rtptime > c.last:
		cycles--
	}
	if diff > 0 {
		c.last = rtptime
		c.cycles = cycles
	}

	ext := cycles<<32 + int64(rtptime) - int64(c.base)
	return int64(float64(ext) * c.unit)
}
