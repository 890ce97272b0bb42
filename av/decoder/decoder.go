// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package decoder 把已解析的 H.265 参数集和片段转换为后端的解码提交：
// 参数集变化检测与发布、图像码流组装、参考图像集解析。
package decoder

import (
	"strings"

	"github.com/cnotch/hevcparser/av/codec/hevc"
	"github.com/cnotch/hevcparser/av/codec/hevc/stdvideo"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

// Options 解码器选项
type Options struct {
	// OutOfBandPictureParams 每幅图像独立派生 SPS/PPS 描述符，不使用全局缓存
	OutOfBandPictureParams bool
	// MaxRefSlots 参考表容量，取值 1~16
	MaxRefSlots int
	// Profile 输入的 profile 名称，scalable 开头表示 SVC
	Profile string
	// 输入帧率，为 0 时使用 SPS 中的计时信息
	FpsNum, FpsDen int
	// 像素宽高比，为 0 时按 1:1
	ParNum, ParDen int
}

func (o *Options) normalize() {
	if o.MaxRefSlots <= 0 || o.MaxRefSlots > MaxRefSlots {
		o.MaxRefSlots = MaxRefSlots
	}
	if o.ParNum <= 0 || o.ParDen <= 0 {
		o.ParNum, o.ParDen = 1, 1
	}
}

// Decoder 解码会话。驱动按固定顺序调用：
// NewSequence → NewPicture → StartPicture → DecodeSlice* → EndPicture → OutputPicture。
// 非并发安全，同一时刻只有一幅图像在解码。
type Decoder struct {
	backend    Backend
	opts       Options
	logger     *xlog.Logger
	cache      *ParamCache
	maxDpbSize int
	closed     bool
}

// New 创建解码器，backend 为 nil 时所有后端调用被跳过并视为成功
func New(backend Backend, opts Options, logger *xlog.Logger) *Decoder {
	opts.normalize()
	if logger == nil {
		logger = xlog.L()
	}
	return &Decoder{
		backend: backend,
		opts:    opts,
		logger:  logger,
		cache:   NewParamCache(),
	}
}

// Options 解码器选项
func (d *Decoder) Options() Options { return d.opts }

// Cache 参数集缓存
func (d *Decoder) Cache() *ParamCache { return d.cache }

// MaxDpbSize 后端采用的最大 DPB 大小
func (d *Decoder) MaxDpbSize() int { return d.maxDpbSize }

// NewSequence 开始新序列
func (d *Decoder) NewSequence(sps *hevc.H265RawSPS, maxDpbSize int) error {
	seq := d.sequenceInfo(sps, maxDpbSize)

	d.maxDpbSize = maxDpbSize
	if d.backend != nil {
		d.maxDpbSize = d.backend.BeginSequence(seq)
	}

	d.logger.Infof("new sequence: %dx%d (display %dx%d), chroma %d, max dpb %d",
		seq.CodedWidth, seq.CodedHeight, seq.DisplayWidth, seq.DisplayHeight,
		seq.ChromaFormat, d.maxDpbSize)
	return nil
}

func (d *Decoder) sequenceInfo(sps *hevc.H265RawSPS, maxDpbSize int) *SequenceInfo {
	fpsNum, fpsDen := uint32(d.opts.FpsNum), uint32(d.opts.FpsDen)
	if fpsNum == 0 || fpsDen == 0 {
		fpsNum, fpsDen = sps.FpsNum, sps.FpsDen
	}

	seq := &SequenceInfo{
		Codec:                CodecH265,
		IsSVC:                strings.HasPrefix(d.opts.Profile, "scalable"),
		FrameRate:            PackFrameRate(fpsNum, fpsDen),
		ProgressiveSequence:  true,
		CodedWidth:           int(sps.Pic_width_in_luma_samples),
		CodedHeight:          int(sps.Pic_height_in_luma_samples),
		DisplayWidth:         int(sps.Pic_width_in_luma_samples),
		DisplayHeight:        int(sps.Pic_height_in_luma_samples),
		ChromaFormat:         sps.Chroma_format_idc,
		BitDepthLumaMinus8:   sps.Bit_depth_luma_minus8,
		BitDepthChromaMinus8: sps.Bit_depth_chroma_minus8,
		MinNumDecodeSurfaces: maxDpbSize + 1,
	}
	if seq.MinNumDecodeSurfaces > 8 {
		seq.MinNumDecodeSurfaces = 8
	}

	if sps.Conformance_window_flag == 1 {
		seq.DisplayWidth = sps.CropRectWidth
		seq.DisplayHeight = sps.CropRectHeight
	}

	if sps.Vui_parameters_present_flag == 1 {
		vui := &sps.Vui
		seq.ProgressiveSequence = vui.Field_seq_flag == 0
		seq.VideoFullRange = vui.Video_full_range_flag
		seq.VideoFormat = vui.Video_format
		seq.ColorPrimaries = vui.Colour_primaries
		seq.TransferCharacteristics = vui.Transfer_characteristics
		seq.MatrixCoefficients = vui.Matrix_coefficients
		seq.Bitrate = uint32(vui.Hrd_parameters.Bit_rate_scale)
	} else if sps.Vps != nil && len(sps.Vps.Hrd_parameters) > 0 {
		seq.Bitrate = uint32(sps.Vps.Hrd_parameters[0].Bit_rate_scale)
	}

	seq.DARWidth, seq.DARHeight = displayRatio(seq.DisplayWidth, seq.DisplayHeight,
		d.opts.ParNum, d.opts.ParDen)
	return seq
}

// displayRatio 计算显示宽高比，结果为最简分数
func displayRatio(w, h, parN, parD int) (int, int) {
	num := int64(w) * int64(parN)
	den := int64(h) * int64(parD)
	if num <= 0 || den <= 0 {
		return 0, 0
	}
	g := gcd(num, den)
	return int(num / g), int(den / g)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// NewPicture 为图像分配后端缓冲，并准备码流组装
func (d *Decoder) NewPicture(pic *Picture) error {
	if d.backend != nil {
		buf, err := d.backend.AllocPictureBuffer()
		if err != nil {
			d.logger.Errorf("alloc picture buffer failed: %v", err)
			return pictureError(pic.POC, "new", errors.WithMessage(ErrAllocPicture, err.Error()))
		}
		pic.buffer = buf
	}
	pic.asm = NewAssembler()
	return nil
}

// StartPicture 填充图像描述并解析参考图像集
func (d *Decoder) StartPicture(pic *Picture, slice *Slice, dpb DPB) error {
	pps := slice.PPS
	sps := pps.Sps
	vps := sps.Vps

	hd := HevcPictureData{
		StdVPS:   d.cache.VPS(),
		VPSToken: d.cache.Token(KindVPS),
		StdSPS:   d.cache.SPS(),
		SPSToken: d.cache.Token(KindSPS),
		StdPPS:   d.cache.PPS(),
		PPSToken: d.cache.Token(KindPPS),

		PicParameterSetID: pps.Pps_pic_parameter_set_id,
		SeqParameterSetID: sps.Sps_seq_parameter_set_id,

		IrapPicFlag: hevc.IsIrap(slice.NalType()),
		IdrPicFlag:  hevc.IsIdr(slice.NalType()),

		NumBitsForShortTermRPSInSlice: slice.NumBitsForShortTermRPS,
		NumDeltaPocsOfRefRpsIdx:       slice.NumDeltaPocsOfRefRpsIdx,
		NumPocTotalCurr:               slice.NumPocTotalCurr,
		CurrPicOrderCntVal:            pic.POC,

		ProfileLevel: sps.Profile_tier_level.General_profile_idc,
	}

	if d.opts.OutOfBandPictureParams ||
		d.cache.UpdateCount(KindSPS) == 0 || d.cache.UpdateCount(KindPPS) == 0 {
		pic.sps = stdvideo.ConvertSPS(sps)
		pic.pps = stdvideo.ConvertPPS(pps)
		hd.StdSPS, hd.StdPPS = pic.sps, pic.pps
	}

	if vps != nil {
		hd.VpsVideoParameterSetID = vps.Vps_video_parameter_set_id
		hd.ProfileLevel = vps.Profile_tier_level.General_profile_idc
		if hd.StdVPS == nil || d.opts.OutOfBandPictureParams {
			hd.StdVPS = stdvideo.ConvertVPS(vps)
		}
	} else {
		hd.VpsVideoParameterSetID = sps.Sps_video_parameter_set_id
	}

	if sps.Vui_parameters_present_flag == 1 {
		hd.ColorPrimaries = sps.Vui.Colour_primaries
	}
	if pps.Pps_scc_extension_flag == 1 {
		hd.BitDepthLumaMinus8 = pps.Luma_bit_depth_entry_minus8
		hd.BitDepthChromaMinus8 = pps.Chroma_bit_depth_entry_minus8
	}

	var pics []*Picture
	var sets RefPicSets
	if dpb != nil {
		pics = dpb.Pictures()
		sets = dpb.RefPicSets()
	}
	hd.NumPocStCurrBefore = int32(len(sets.StCurrBefore))
	hd.NumPocStCurrAfter = int32(len(sets.StCurrAfter))
	hd.NumPocLtCurr = int32(len(sets.LtCurr))

	table, err := ResolveRefs(pics, sets, d.opts.MaxRefSlots)
	if err != nil {
		d.logger.Errorf("picture(poc=%d) start failed: %v", pic.POC, err)
		return pictureError(pic.POC, "start", err)
	}
	hd.Refs = *table

	pic.data = PictureData{
		PicWidthInMbs:     int(sps.Pic_width_in_luma_samples) / 16,
		FrameHeightInMbs:  int(sps.Pic_height_in_luma_samples) / 16,
		CurrPic:           pic.buffer,
		FieldPicFlag:      sps.Vui_parameters_present_flag == 1 && sps.Vui.Field_seq_flag == 1,
		BottomFieldFlag:   pic.Flags&FlagBottomField != 0,
		ProgressiveFrame:  pic.Flags&FlagInterlaced == 0,
		TopFieldFirst:     pic.Flags&FlagTopFieldFirst != 0,
		RefPicFlag:        pic.Ref,
		IntraPicFlag:      pic.Intra,
		ChromaFormat:      sps.Chroma_format_idc,
		PictureOrderCount: pic.POC,
		Hevc:              hd,
	}

	if d.logger.LevelEnabled(xlog.DebugLevel) {
		d.logger.Debugf("picture(poc=%d) start: refs %d, before %d, after %d, lt %d",
			pic.POC, table.Len(), hd.NumPocStCurrBefore, hd.NumPocStCurrAfter, hd.NumPocLtCurr)
	}
	return nil
}

// DecodeSlice 把片段追加到图像码流
func (d *Decoder) DecodeSlice(pic *Picture, slice *Slice) error {
	pic.asm.AppendSlice(slice.NALU)
	return nil
}

// EndPicture 完成码流组装并提交后端解码
func (d *Decoder) EndPicture(pic *Picture) error {
	bs := pic.asm.Finalize()
	pic.asm = nil

	pic.data.Bitstream = bs.Data
	pic.data.SliceOffsets = bs.SliceOffsets
	pic.data.NumSlices = bs.NumSlices
	// 后端在解码阶段要求参考标志为真，加入 DPB 时才由驱动确定
	pic.data.RefPicFlag = true

	var err error
	if d.backend != nil {
		if derr := d.backend.DecodePicture(&pic.data); derr != nil {
			d.logger.Errorf("picture(poc=%d) decode failed: %v", pic.POC, derr)
			err = pictureError(pic.POC, "end", errors.WithMessage(ErrDecodePicture, derr.Error()))
		}
	}

	// 码流已交给后端
	pic.data.Bitstream = nil
	pic.data.SliceOffsets = nil
	return err
}

// OutputPicture 显示图像
func (d *Decoder) OutputPicture(pic *Picture) error {
	if d.backend == nil {
		return nil
	}

	timestamp := pic.FrameNumber * pic.Duration / 100
	if err := d.backend.DisplayPicture(pic.buffer, timestamp); err != nil {
		d.logger.Errorf("picture(poc=%d) display failed: %v", pic.POC, err)
		return pictureError(pic.POC, "output", errors.WithMessage(ErrDisplayPicture, err.Error()))
	}
	return nil
}

// ReleasePicture 图像离开 DPB 后归还后端缓冲
func (d *Decoder) ReleasePicture(pic *Picture) {
	if pic.buffer != nil {
		pic.buffer.Release()
		pic.buffer = nil
	}
	pic.asm = nil
	pic.sps, pic.pps = nil, nil
}

// UpdatePictureParameters 观察参数集，变化时发布到后端。
// 支持 *hevc.H265RawVPS、*hevc.H265RawSPS 和 *hevc.H265RawPPS，其他类型被忽略。
func (d *Decoder) UpdatePictureParameters(ps interface{}) {
	switch v := ps.(type) {
	case *hevc.H265RawVPS:
		if d.cache.ObserveVPS(v) {
			d.logger.Warnf("drop VPS(id=%d) update, the backend expects SPS first", v.Vps_video_parameter_set_id)
		}
	case *hevc.H265RawSPS:
		if params, ok := d.cache.ObserveSPS(v); ok {
			d.publish(params)
		}
	case *hevc.H265RawPPS:
		if params, ok := d.cache.ObservePPS(v); ok {
			d.publish(params)
		}
	}
}

func (d *Decoder) publish(params *PictureParameters) {
	if d.backend == nil {
		return
	}
	// 缓存状态已提交，失败只记录
	if err := d.backend.UpdatePictureParameters(params); err != nil {
		d.logger.Errorf("failed to update %s parameters(seq=%d): %v",
			params.Kind, params.UpdateSequence, err)
	}
}

// UnhandledNALU 把解码器不处理的 NAL 单元转交后端
func (d *Decoder) UnhandledNALU(nalu []byte) {
	if d.backend != nil {
		d.backend.UnhandledNALU(nalu)
	}
}

// Close 释放参数集关联标识
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.cache.Release()
	return nil
}
