// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoder

import (
	"github.com/cnotch/hevcparser/av/codec/hevc"
	"github.com/cnotch/hevcparser/av/codec/hevc/stdvideo"
)

// BufferFlags 图像缓冲标志
type BufferFlags uint32

// 图像缓冲标志
const (
	FlagInterlaced BufferFlags = 1 << iota
	FlagTopFieldFirst
	FlagBottomField
)

// Picture 一幅图像。由驱动创建并维护参考标记，
// 解码器在 NewPicture 中绑定后端缓冲，在 ReleasePicture 中归还。
type Picture struct {
	POC         int32
	Ref         bool
	LongTerm    bool
	Intra       bool
	Flags       BufferFlags
	FrameNumber int64 // 系统帧号
	Duration    int64

	buffer PictureBuffer
	asm    *Assembler
	data   PictureData

	// 图像自己的描述符，不使用全局缓存时有效
	sps *stdvideo.SequenceParameterSet
	pps *stdvideo.PictureParameterSet
}

// Buffer 后端图像缓冲
func (pic *Picture) Buffer() PictureBuffer { return pic.buffer }

// Data 最近一次提交的图像描述
func (pic *Picture) Data() *PictureData { return &pic.data }

// Slice 一个片段 NAL
type Slice struct {
	NALU []byte // 不含起始码
	// PPS 已链接到 SPS，SPS 可能链接到 VPS
	PPS *hevc.H265RawPPS

	// 片段头派生值，未解析片段头时为 0
	NumBitsForShortTermRPS  int32
	NumDeltaPocsOfRefRpsIdx int32
	NumPocTotalCurr         int32
}

// NalType 片段的 NAL 类型
func (s *Slice) NalType() uint8 {
	if len(s.NALU) == 0 {
		return 0
	}
	return hevc.NalType(s.NALU[0])
}

// RefPicSets 当前图像的参考分类列表，列表中可以有 nil
type RefPicSets struct {
	StCurrBefore []*Picture
	StCurrAfter  []*Picture
	LtCurr       []*Picture
}

// DPB 解码图像缓冲的查询接口
type DPB interface {
	// Pictures 缓冲中的全部图像，按缓冲顺序
	Pictures() []*Picture
	// RefPicSets 当前图像的参考分类
	RefPicSets() RefPicSets
}
