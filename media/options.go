// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"github.com/cnotch/hevcparser/media/cache"
	"github.com/cnotch/hevcparser/stats"
)

// Option 配置 Stream 的选项接口
type Option interface {
	apply(*Stream)
}

// optionFunc 包装函数以便它满足 Option 接口
type optionFunc func(*Stream)

func (f optionFunc) apply(s *Stream) {
	f(s)
}

// DecodeStats 解码计数汇总到 parent，默认为 stats.TotalDecode
func DecodeStats(parent stats.Decode) Option {
	return optionFunc(func(s *Stream) {
		s.decode = stats.NewChildDecode(parent)
	})
}

// FlowStats 流量计数汇总到 parent，默认为 stats.TotalFlow
func FlowStats(parent stats.Flow) Option {
	return optionFunc(func(s *Stream) {
		s.flow = stats.NewChildFlow(parent)
	})
}

// Seed 流启动时先送入缓存中的参数集
func Seed(paramSets *cache.ParamSetCache) Option {
	return optionFunc(func(s *Stream) {
		s.seed = paramSets
	})
}
