// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoder

import (
	"github.com/cnotch/hevcparser/av/codec/hevc/stdvideo"
)

// CodecH265 SequenceInfo 中的编码类型
const CodecH265 = "H265"

// PictureBuffer 后端分配并拥有的图像存储，
// 解码器在图像离开 DPB 时调用 Release 交还后端
type PictureBuffer interface {
	Release()
}

// Rect 显示区域
type Rect struct {
	Left, Top, Right, Bottom int
}

// SequenceInfo 序列开始时交给后端的格式信息
type SequenceInfo struct {
	Codec                   string
	IsSVC                   bool
	FrameRate               uint32 // PackFrameRate 打包的帧率
	ProgressiveSequence     bool
	CodedWidth              int
	CodedHeight             int
	DisplayWidth            int
	DisplayHeight           int
	ChromaFormat            uint8
	BitDepthLumaMinus8      uint8
	BitDepthChromaMinus8    uint8
	MinNumDecodeSurfaces    int
	VideoFullRange          uint8
	VideoFormat             uint8
	ColorPrimaries          uint8
	TransferCharacteristics uint8
	MatrixCoefficients      uint8
	Bitrate                 uint32
	DARWidth                int
	DARHeight               int
}

// PackFrameRate 打包帧率，分子占高 18 位，分母占低 14 位
func PackFrameRate(num, den uint32) uint32 {
	return (num << 14) | (den & 0x3fff)
}

// UnpackFrameRate 解包帧率
func UnpackFrameRate(rate uint32) (num, den uint32) {
	return rate >> 14, rate & 0x3fff
}

// HevcPictureData H.265 专有的图像信息
type HevcPictureData struct {
	StdVPS   *stdvideo.VideoParameterSet
	VPSToken *Token
	StdSPS   *stdvideo.SequenceParameterSet
	SPSToken *Token
	StdPPS   *stdvideo.PictureParameterSet
	PPSToken *Token

	PicParameterSetID      uint8
	SeqParameterSetID      uint8
	VpsVideoParameterSetID uint8

	IrapPicFlag bool
	IdrPicFlag  bool

	NumBitsForShortTermRPSInSlice int32
	NumDeltaPocsOfRefRpsIdx       int32
	NumPocTotalCurr               int32
	NumPocStCurrBefore            int32
	NumPocStCurrAfter             int32
	NumPocLtCurr                  int32
	CurrPicOrderCntVal            int32

	Refs RefTable

	ProfileLevel         uint8
	ColorPrimaries       uint8
	BitDepthLumaMinus8   uint8
	BitDepthChromaMinus8 uint8
}

// PictureData 提交给后端解码的图像描述
type PictureData struct {
	PicWidthInMbs     int
	FrameHeightInMbs  int
	CurrPic           PictureBuffer
	FieldPicFlag      bool
	BottomFieldFlag   bool
	ProgressiveFrame  bool
	TopFieldFirst     bool
	RefPicFlag        bool
	IntraPicFlag      bool
	ChromaFormat      uint8
	PictureOrderCount int32

	Bitstream    []byte
	SliceOffsets []uint32
	NumSlices    int

	Hevc HevcPictureData
}

// PictureParameters 参数集更新
type PictureParameters struct {
	Kind           Kind
	UpdateSequence uint32
	Token          *Token
	VPS            *stdvideo.VideoParameterSet
	SPS            *stdvideo.SequenceParameterSet
	PPS            *stdvideo.PictureParameterSet
}

// Backend 解码提交后端。所有方法在解码 goroutine 上同步调用。
type Backend interface {
	// BeginSequence 开始新序列，返回后端采用的最大 DPB 大小
	BeginSequence(seq *SequenceInfo) int
	// AllocPictureBuffer 分配图像缓冲
	AllocPictureBuffer() (PictureBuffer, error)
	// DecodePicture 提交图像解码
	DecodePicture(pd *PictureData) error
	// DisplayPicture 显示图像
	DisplayPicture(buf PictureBuffer, timestamp int64) error
	// UpdatePictureParameters 更新参数集
	UpdatePictureParameters(params *PictureParameters) error
	// UnhandledNALU 转交解码器不处理的 NAL 单元
	UnhandledNALU(nalu []byte)
}
