// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cache 缓存流中最近的参数集，以便重放给新的解码会话
package cache

import (
	"sync"

	"github.com/cnotch/hevcparser/av/codec"
	"github.com/cnotch/hevcparser/av/codec/hevc"
	"github.com/cnotch/queue"
)

// ParamSetCache 按 id 缓存最近的 VPS、SPS、PPS NAL 单元
type ParamSetCache struct {
	l   sync.RWMutex
	vps [hevc.HEVC_MAX_VPS_COUNT][]byte
	sps [hevc.HEVC_MAX_SPS_COUNT][]byte
	pps [hevc.HEVC_MAX_PPS_COUNT][]byte
}

// NewParamSetCache 创建参数集缓存
func NewParamSetCache() *ParamSetCache {
	return &ParamSetCache{}
}

// CacheNALU 缓存参数集 NAL，返回 nalu 是否为可识别的参数集。
// nalu 不含起始码，缓存保存其副本。
func (cache *ParamSetCache) CacheNALU(nalu []byte) bool {
	if len(nalu) < 3 {
		return false
	}

	var slot *[]byte
	switch hevc.NalType(nalu[0]) {
	case hevc.NalVps:
		var vps hevc.H265RawVPS
		if vps.Decode(nalu) != nil {
			return false
		}
		cache.l.Lock()
		defer cache.l.Unlock()
		slot = &cache.vps[vps.Vps_video_parameter_set_id]
	case hevc.NalSps:
		var sps hevc.H265RawSPS
		if sps.Decode(nalu) != nil {
			return false
		}
		cache.l.Lock()
		defer cache.l.Unlock()
		slot = &cache.sps[sps.Sps_seq_parameter_set_id]
	case hevc.NalPps:
		var pps hevc.H265RawPPS
		if pps.Decode(nalu) != nil {
			return false
		}
		cache.l.Lock()
		defer cache.l.Unlock()
		slot = &cache.pps[pps.Pps_pic_parameter_set_id]
	default:
		return false
	}

	*slot = append((*slot)[:0], nalu...)
	return true
}

// Len 缓存的参数集数量
func (cache *ParamSetCache) Len() int {
	cache.l.RLock()
	defer cache.l.RUnlock()
	return len(cache.nalus())
}

// nalus 按 VPS、SPS、PPS 及 id 升序返回，调用者持有锁
func (cache *ParamSetCache) nalus() [][]byte {
	var nalus [][]byte
	for _, table := range [][][]byte{cache.vps[:], cache.sps[:], cache.pps[:]} {
		for _, nalu := range table {
			if len(nalu) > 0 {
				nalus = append(nalus, nalu)
			}
		}
	}
	return nalus
}

// Reset 清空缓存
func (cache *ParamSetCache) Reset() {
	cache.l.Lock()
	defer cache.l.Unlock()

	cache.vps = [hevc.HEVC_MAX_VPS_COUNT][]byte{}
	cache.sps = [hevc.HEVC_MAX_SPS_COUNT][]byte{}
	cache.pps = [hevc.HEVC_MAX_PPS_COUNT][]byte{}
}

// PushTo 把缓存的参数集作为帧入列到指定的队列，返回字节数
func (cache *ParamSetCache) PushTo(q *queue.SyncQueue) int {
	bytes := 0
	cache.l.RLock()
	defer cache.l.RUnlock()

	for _, nalu := range cache.nalus() {
		payload := make([]byte, len(nalu))
		copy(payload, nalu)
		q.Push(&codec.Frame{Payload: payload})
		bytes += len(payload)
	}
	return bytes
}

// WriteTo 把缓存的参数集依次写入 w
func (cache *ParamSetCache) WriteTo(w codec.FrameWriter) error {
	cache.l.RLock()
	nalus := cache.nalus()
	cache.l.RUnlock()

	for _, nalu := range nalus {
		payload := make([]byte, len(nalu))
		copy(payload, nalu)
		if err := w.WriteFrame(&codec.Frame{Payload: payload}); err != nil {
			return err
		}
	}
	return nil
}
