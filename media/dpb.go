// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"sort"

	"github.com/cnotch/hevcparser/av/decoder"
)

// slidingDPB 按解码顺序保留最近的参考图像。
// 未解析片段头，所有保留的图像都视为短期参考且 POC 小于当前图像。
type slidingDPB struct {
	capacity int
	pics     []*decoder.Picture
}

func newSlidingDPB(capacity int) *slidingDPB {
	if capacity < 1 {
		capacity = 1
	}
	return &slidingDPB{capacity: capacity}
}

// Pictures 实现 decoder.DPB
func (dpb *slidingDPB) Pictures() []*decoder.Picture {
	return dpb.pics
}

// RefPicSets 实现 decoder.DPB，before 列表按 POC 降序
func (dpb *slidingDPB) RefPicSets() decoder.RefPicSets {
	var before []*decoder.Picture
	for _, pic := range dpb.pics {
		if pic.Ref && !pic.LongTerm {
			before = append(before, pic)
		}
	}
	sort.Slice(before, func(i, j int) bool {
		return before[i].POC > before[j].POC
	})
	return decoder.RefPicSets{StCurrBefore: before}
}

// Len 保留的图像数
func (dpb *slidingDPB) Len() int {
	return len(dpb.pics)
}

// Add 加入图像，返回被挤出的图像
func (dpb *slidingDPB) Add(pic *decoder.Picture) []*decoder.Picture {
	dpb.pics = append(dpb.pics, pic)
	return dpb.trim()
}

// Resize 调整容量，返回被挤出的图像
func (dpb *slidingDPB) Resize(capacity int) []*decoder.Picture {
	if capacity < 1 {
		capacity = 1
	}
	dpb.capacity = capacity
	return dpb.trim()
}

// Flush 清空缓冲，返回全部图像
func (dpb *slidingDPB) Flush() []*decoder.Picture {
	pics := dpb.pics
	dpb.pics = nil
	return pics
}

func (dpb *slidingDPB) trim() []*decoder.Picture {
	n := len(dpb.pics) - dpb.capacity
	if n <= 0 {
		return nil
	}
	evicted := make([]*decoder.Picture, n)
	copy(evicted, dpb.pics[:n])
	dpb.pics = append(dpb.pics[:0], dpb.pics[n:]...)
	return evicted
}
