// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoder

import (
	"github.com/cnotch/hevcparser/av/codec/hevc"
	"github.com/cnotch/hevcparser/av/codec/hevc/stdvideo"
)

// paramEntry 单类参数集的缓存状态
type paramEntry struct {
	seen  bool   // 是否已经接受过参数集
	count uint32 // 已接受的变化次数，只增不减
	token *Token // 与后端共享，首次发布时创建
}

// next 接受一次变化，返回本次的更新序号
func (e *paramEntry) next() uint32 {
	e.seen = true
	seq := e.count
	e.count++
	return seq
}

// ParamCache 参数集变化缓存。
// 每类参数集保存最后一次接受的值，只在值发生变化时生成新的描述符。
// 非并发安全，由解码 goroutine 独占。
type ParamCache struct {
	lastVPS hevc.H265RawVPS
	lastSPS hevc.H265RawSPS
	lastPPS hevc.H265RawPPS

	vps *stdvideo.VideoParameterSet
	sps *stdvideo.SequenceParameterSet
	pps *stdvideo.PictureParameterSet

	entries [kindCount]paramEntry
}

// NewParamCache 创建参数集缓存
func NewParamCache() *ParamCache {
	return &ParamCache{}
}

// ObserveVPS 观察 VPS。变化会被记录并转换，但从不返回发布内容：
// 后端要求 SPS 先于 VPS，而码流中 VPS 总是先到达。
func (c *ParamCache) ObserveVPS(vps *hevc.H265RawVPS) (changed bool) {
	e := &c.entries[KindVPS]
	if e.seen && vpsEqual(&c.lastVPS, vps) {
		return false
	}

	c.lastVPS = *vps
	c.lastVPS.Hrd_layer_set_idx = append([]uint16(nil), vps.Hrd_layer_set_idx...)
	c.lastVPS.Cprms_present_flag = append([]uint8(nil), vps.Cprms_present_flag...)
	c.vps = stdvideo.ConvertVPS(vps)
	e.next()
	return true
}

// ObserveSPS 观察 SPS，值发生变化时返回需要发布的参数
func (c *ParamCache) ObserveSPS(sps *hevc.H265RawSPS) (*PictureParameters, bool) {
	e := &c.entries[KindSPS]
	if e.seen && spsEqual(&c.lastSPS, sps) {
		return nil, false
	}

	c.lastSPS = *sps
	c.lastSPS.Vps = nil
	c.sps = stdvideo.ConvertSPS(sps)
	return &PictureParameters{
		Kind:           KindSPS,
		UpdateSequence: e.next(),
		Token:          c.token(KindSPS),
		SPS:            c.sps,
	}, true
}

// ObservePPS 观察 PPS，值发生变化时返回需要发布的参数
func (c *ParamCache) ObservePPS(pps *hevc.H265RawPPS) (*PictureParameters, bool) {
	e := &c.entries[KindPPS]
	if e.seen && ppsEqual(&c.lastPPS, pps) {
		return nil, false
	}

	c.lastPPS = *pps
	c.lastPPS.Sps = nil
	c.pps = stdvideo.ConvertPPS(pps)
	return &PictureParameters{
		Kind:           KindPPS,
		UpdateSequence: e.next(),
		Token:          c.token(KindPPS),
		PPS:            c.pps,
	}, true
}

func (c *ParamCache) token(kind Kind) *Token {
	e := &c.entries[kind]
	if e.token == nil {
		e.token = newToken(kind)
	}
	return e.token
}

// UpdateCount 指定类型已接受的变化次数
func (c *ParamCache) UpdateCount(kind Kind) uint32 {
	return c.entries[kind].count
}

// Token 指定类型的关联标识，尚未发布时返回 nil
func (c *ParamCache) Token(kind Kind) *Token {
	return c.entries[kind].token
}

// VPS 当前 VPS 描述符
func (c *ParamCache) VPS() *stdvideo.VideoParameterSet { return c.vps }

// SPS 当前 SPS 描述符
func (c *ParamCache) SPS() *stdvideo.SequenceParameterSet { return c.sps }

// PPS 当前 PPS 描述符
func (c *ParamCache) PPS() *stdvideo.PictureParameterSet { return c.pps }

// Release 释放缓存持有的关联标识
func (c *ParamCache) Release() {
	for i := range c.entries {
		if t := c.entries[i].token; t != nil {
			t.Release()
			c.entries[i].token = nil
		}
	}
}
