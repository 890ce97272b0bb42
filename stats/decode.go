// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"sync/atomic"
)

// 全局统计，各流的统计汇总到这里
var (
	TotalDecode = NewDecode()
	TotalFlow   = NewFlow() // 输入 NAL 字节与提交后端的码流字节
)

// DecodeSample 解码统计采样
type DecodeSample struct {
	NALUs         int64 `json:"nalus"`         // 输入的 NAL 数量
	Slices        int64 `json:"slices"`        // 提交的片段数量
	Pictures      int64 `json:"pictures"`      // 完成解码的图像数量
	Sequences     int64 `json:"sequences"`     // 序列数量
	ParamUpdates  int64 `json:"paramupdates"`  // 参数集 NAL 数量
	Skipped       int64 `json:"skipped"`       // 丢弃的 NAL 数量
	PictureErrors int64 `json:"pictureerrors"` // 失败的图像数量
}

// Decode 解码统计接口
type Decode interface {
	AddNALU()
	AddSlice()
	AddPicture()
	AddSequence()
	AddParamUpdate()
	AddSkipped()
	AddPictureError()
	GetSample() DecodeSample
}

func (s *DecodeSample) clone() DecodeSample {
	return DecodeSample{
		NALUs:         atomic.LoadInt64(&s.NALUs),
		Slices:        atomic.LoadInt64(&s.Slices),
		Pictures:      atomic.LoadInt64(&s.Pictures),
		Sequences:     atomic.LoadInt64(&s.Sequences),
		ParamUpdates:  atomic.LoadInt64(&s.ParamUpdates),
		Skipped:       atomic.LoadInt64(&s.Skipped),
		PictureErrors: atomic.LoadInt64(&s.PictureErrors),
	}
}

// Add 采样累加
func (s *DecodeSample) Add(o DecodeSample) {
	s.NALUs += o.NALUs
	s.Slices += o.Slices
	s.Pictures += o.Pictures
	s.Sequences += o.Sequences
	s.ParamUpdates += o.ParamUpdates
	s.Skipped += o.Skipped
	s.PictureErrors += o.PictureErrors
}

type decode struct {
	parent Decode
	sample DecodeSample
}

// NewDecode 创建解码统计
func NewDecode() Decode {
	return &decode{}
}

// NewChildDecode 创建子解码统计，它会把自己的计数累加到 parent 上
func NewChildDecode(parent Decode) Decode {
	return &decode{parent: parent}
}

func (d *decode) AddNALU() {
	atomic.AddInt64(&d.sample.NALUs, 1)
	if d.parent != nil {
		d.parent.AddNALU()
	}
}

func (d *decode) AddSlice() {
	atomic.AddInt64(&d.sample.Slices, 1)
	if d.parent != nil {
		d.parent.AddSlice()
	}
}

func (d *decode) AddPicture() {
	atomic.AddInt64(&d.sample.Pictures, 1)
	if d.parent != nil {
		d.parent.AddPicture()
	}
}

func (d *decode) AddSequence() {
	atomic.AddInt64(&d.sample.Sequences, 1)
	if d.parent != nil {
		d.parent.AddSequence()
	}
}

func (d *decode) AddParamUpdate() {
	atomic.AddInt64(&d.sample.ParamUpdates, 1)
	if d.parent != nil {
		d.parent.AddParamUpdate()
	}
}

func (d *decode) AddSkipped() {
	atomic.AddInt64(&d.sample.Skipped, 1)
	if d.parent != nil {
		d.parent.AddSkipped()
	}
}

func (d *decode) AddPictureError() {
	atomic.AddInt64(&d.sample.PictureErrors, 1)
	if d.parent != nil {
		d.parent.AddPictureError()
	}
}

func (d *decode) GetSample() DecodeSample {
	return d.sample.clone()
}
