// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package media 驱动解码会话：接收 NAL 单元，维护参数集表，
// 把片段分组为图像，并按固定顺序调用解码器的生命周期操作。
package media

import (
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/cnotch/hevcparser/av/codec"
	"github.com/cnotch/hevcparser/av/codec/hevc"
	"github.com/cnotch/hevcparser/av/codec/hevc/stdvideo"
	"github.com/cnotch/hevcparser/av/decoder"
	"github.com/cnotch/hevcparser/media/cache"
	"github.com/cnotch/hevcparser/stats"
	"github.com/cnotch/queue"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

// 错误定义
var (
	// ErrStreamClosed 流被关闭
	ErrStreamClosed = errors.New("stream is closed")
)

// 入列的关闭标记，之前的 NAL 仍会被处理
var closeMarker = &codec.Frame{}

// 未知帧率时使用
const defaultFps = 25

// Stream 一路 H.265 基本流的解码驱动。
// 写入可以来自任意协程，解码只在流自己的协程中进行。
type Stream struct {
	startOn   time.Time
	name      string
	dec       *decoder.Decoder
	recvQueue *queue.SyncQueue
	closed    int32
	done      chan struct{}
	decode    stats.Decode
	flow      stats.Flow
	paramSets *cache.ParamSetCache
	seed      *cache.ParamSetCache
	logger    *xlog.Logger

	// 以下仅由解码协程访问
	vpss        [hevc.HEVC_MAX_VPS_COUNT]*hevc.H265RawVPS
	spss        [hevc.HEVC_MAX_SPS_COUNT]*hevc.H265RawSPS
	ppss        [hevc.HEVC_MAX_PPS_COUNT]*hevc.H265RawPPS
	seqSPS      *stdvideo.SequenceParameterSet // 当前序列对应的缓存描述符
	seqID       uint8
	started     bool // 已遇到随机接入点
	cur         *decoder.Picture
	curBytes    int64
	dpb         *slidingDPB
	poc         int32
	frameNumber int64
	duration    int64
}

// NewStream 创建流并启动解码协程，流拥有 dec 并在结束时关闭它
func NewStream(name string, dec *decoder.Decoder, logger *xlog.Logger, options ...Option) *Stream {
	if logger == nil {
		logger = xlog.L()
	}

	s := &Stream{
		startOn:   time.Now(),
		name:      name,
		dec:       dec,
		recvQueue: queue.NewSyncQueue(),
		done:      make(chan struct{}),
		paramSets: cache.NewParamSetCache(),
		dpb:       newSlidingDPB(1),
		logger:    logger.With(xlog.Fields(xlog.F("stream", name))),
	}

	for _, option := range options {
		option.apply(s)
	}
	if s.decode == nil {
		s.decode = stats.NewChildDecode(stats.TotalDecode)
	}
	if s.flow == nil {
		s.flow = stats.NewChildFlow(stats.TotalFlow)
	}

	if s.seed != nil {
		s.seed.PushTo(s.recvQueue) // 先送入预置的参数集
	}

	go s.process()
	return s
}

// Name 流名称
func (s *Stream) Name() string {
	return s.name
}

// ParamSets 流中出现过的参数集
func (s *Stream) ParamSets() *cache.ParamSetCache {
	return s.paramSets
}

// WriteFrame 写入一个 NAL 单元，实现 codec.FrameWriter
func (s *Stream) WriteFrame(frame *codec.Frame) error {
	if atomic.LoadInt32(&s.closed) != 0 {
		return ErrStreamClosed
	}

	payload := make([]byte, len(frame.Payload))
	copy(payload, frame.Payload)
	s.recvQueue.Push(&codec.Frame{Dts: frame.Dts, Pts: frame.Pts, Payload: payload})
	return nil
}

// WriteNALU 写入一个不含起始码的 NAL 单元
func (s *Stream) WriteNALU(nalu []byte) error {
	return s.WriteFrame(&codec.Frame{Payload: nalu})
}

// Close 关闭流；已写入的 NAL 会处理完，然后结束未完成的图像
func (s *Stream) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	s.recvQueue.Push(closeMarker)
	return nil
}

// Wait 等待解码协程结束
func (s *Stream) Wait() {
	<-s.done
}

func (s *Stream) process() {
	defer close(s.done)
	defer func() {
		defer func() { // 避免 handler 再 panic
			recover()
		}()

		if r := recover(); r != nil {
			s.logger.Errorf("stream routine panic；r = %v \n %s", r, debug.Stack())
		}
		atomic.StoreInt32(&s.closed, 1)

		s.flush()
		s.dec.Close()

		// 尽早通知GC，回收内存
		s.recvQueue.Reset()
	}()

	for {
		p := s.recvQueue.Pop()
		if p == nil {
			continue
		}

		frame := p.(*codec.Frame)
		if frame == closeMarker {
			return
		}
		s.handleNALU(frame.Payload)
	}
}

func (s *Stream) handleNALU(nalu []byte) {
	s.decode.AddNALU()
	s.flow.AddIn(int64(len(nalu)))
	if len(nalu) < 2 {
		s.decode.AddSkipped()
		return
	}

	nt := hevc.NalType(nalu[0])
	switch {
	case hevc.IsParameterSet(nt):
		s.endPicture()
		s.updateParamSet(nt, nalu)
	case isSlice(nt):
		s.decodeSlice(nt, nalu)
	default:
		// 访问单元边界
		s.endPicture()
		s.dec.UnhandledNALU(nalu)
	}
}

// isSlice 可解码的片段类型，保留的 VCL 类型除外
func isSlice(nt uint8) bool {
	return nt <= hevc.NalRaslR || (nt >= hevc.NalBlaWLp && nt <= hevc.NalCraNut)
}

func (s *Stream) updateParamSet(nt uint8, nalu []byte) {
	var ps interface{}
	switch nt {
	case hevc.NalVps:
		vps := new(hevc.H265RawVPS)
		if err := vps.Decode(nalu); err != nil {
			s.dropNALU("VPS", err)
			return
		}
		s.vpss[vps.Vps_video_parameter_set_id] = vps
		for _, sps := range s.spss {
			if sps != nil && sps.Sps_video_parameter_set_id == vps.Vps_video_parameter_set_id {
				sps.Vps = vps
			}
		}
		ps = vps

	case hevc.NalSps:
		sps := new(hevc.H265RawSPS)
		if err := sps.Decode(nalu); err != nil {
			s.dropNALU("SPS", err)
			return
		}
		if int(sps.Sps_seq_parameter_set_id) >= len(s.spss) {
			s.dropNALU("SPS", errors.Errorf("sps id %d out of range", sps.Sps_seq_parameter_set_id))
			return
		}
		sps.Vps = s.vpss[sps.Sps_video_parameter_set_id]
		s.spss[sps.Sps_seq_parameter_set_id] = sps

		// 引用该 SPS 的 PPS 重新关联
		for i, pps := range s.ppss {
			if pps == nil || pps.Pps_seq_parameter_set_id != sps.Sps_seq_parameter_set_id {
				continue
			}
			if err := pps.Link(sps); err != nil {
				s.logger.Warnf("drop PPS(id=%d): %v", pps.Pps_pic_parameter_set_id, err)
				s.ppss[i] = nil
			}
		}
		ps = sps

	case hevc.NalPps:
		pps := new(hevc.H265RawPPS)
		if err := pps.Decode(nalu); err != nil {
			s.dropNALU("PPS", err)
			return
		}
		if err := pps.Link(s.spss[pps.Pps_seq_parameter_set_id]); err != nil {
			s.dropNALU("PPS", err)
			return
		}
		s.ppss[pps.Pps_pic_parameter_set_id] = pps
		ps = pps
	}

	s.paramSets.CacheNALU(nalu)
	s.decode.AddParamUpdate()
	s.dec.UpdatePictureParameters(ps)
}

func (s *Stream) dropNALU(what string, err error) {
	s.decode.AddSkipped()
	s.logger.Warnf("drop %s: %v", what, err)
}

func (s *Stream) decodeSlice(nt uint8, nalu []byte) {
	var prefix hevc.SliceSegmentPrefix
	if err := prefix.Decode(nalu); err != nil {
		s.dropNALU("slice", err)
		return
	}

	pps := s.ppss[prefix.Slice_pic_parameter_set_id]
	if pps == nil || pps.Sps == nil {
		s.endPicture()
		s.dropNALU("slice", errors.Errorf("pps %d is not available", prefix.Slice_pic_parameter_set_id))
		return
	}

	slice := &decoder.Slice{NALU: nalu, PPS: pps}
	if prefix.First_slice_segment_in_pic_flag == 1 {
		s.endPicture()
		if !s.beginPicture(nt, slice) {
			s.decode.AddSkipped()
			return
		}
	} else if s.cur == nil {
		// 图像的首个片段已丢失
		s.decode.AddSkipped()
		return
	}

	if err := s.dec.DecodeSlice(s.cur, slice); err != nil {
		s.pictureFailed(s.cur, err)
		s.cur = nil
		return
	}
	s.curBytes += int64(len(nalu) + 3)
	s.decode.AddSlice()
}

func (s *Stream) beginPicture(nt uint8, slice *decoder.Slice) bool {
	irap := hevc.IsIrap(nt)
	if !s.started && !irap {
		return false // 等待随机接入点
	}
	s.started = true

	sps := slice.PPS.Sps
	if desc := s.dec.Cache().SPS(); desc != s.seqSPS || sps.Sps_seq_parameter_set_id != s.seqID {
		s.newSequence(sps)
	}

	if irap {
		s.release(s.dpb.Flush())
		s.poc = 0
	} else {
		s.poc++
	}

	pic := &decoder.Picture{
		POC:         s.poc,
		Ref:         true,
		Intra:       irap,
		FrameNumber: s.frameNumber,
		Duration:    s.duration,
	}
	if err := s.dec.NewPicture(pic); err != nil {
		s.pictureFailed(pic, err)
		return false
	}
	if err := s.dec.StartPicture(pic, slice, s.dpb); err != nil {
		s.pictureFailed(pic, err)
		return false
	}

	s.cur = pic
	s.curBytes = 0
	return true
}

func (s *Stream) newSequence(sps *hevc.H265RawSPS) {
	if err := s.dec.NewSequence(sps, sps.MaxDpbSize()); err != nil {
		s.logger.Errorf("new sequence failed: %v", err)
	}
	s.seqSPS = s.dec.Cache().SPS()
	s.seqID = sps.Sps_seq_parameter_set_id
	s.duration = s.frameDuration(sps)

	// 当前图像占用一个缓冲
	window := s.dec.MaxDpbSize() - 1
	if limit := s.dec.Options().MaxRefSlots; window > limit {
		window = limit
	}
	s.release(s.dpb.Resize(window))
	s.decode.AddSequence()
}

// frameDuration 返回百分之一纳秒为单位的帧时长
func (s *Stream) frameDuration(sps *hevc.H265RawSPS) int64 {
	opts := s.dec.Options()
	num, den := float64(opts.FpsNum), float64(opts.FpsDen)
	if num <= 0 || den <= 0 {
		num, den = float64(sps.FpsNum), float64(sps.FpsDen)
	}
	if num <= 0 || den <= 0 {
		num, den = defaultFps, 1
	}
	return int64(100 * float64(time.Second) * den / num)
}

func (s *Stream) endPicture() {
	pic := s.cur
	if pic == nil {
		return
	}
	s.cur = nil

	if err := s.dec.EndPicture(pic); err != nil {
		s.pictureFailed(pic, err)
		return
	}
	s.flow.AddOut(s.curBytes)
	s.decode.AddPicture()
	s.frameNumber++

	// 不做重排序，按解码顺序输出
	if err := s.dec.OutputPicture(pic); err != nil {
		s.decode.AddPictureError()
		s.logger.Warnf("picture(poc=%d) output failed: %v", pic.POC, err)
	}
	s.release(s.dpb.Add(pic))
}

func (s *Stream) pictureFailed(pic *decoder.Picture, err error) {
	s.decode.AddPictureError()
	if decoder.IsPictureFatal(err) {
		s.logger.Warnf("drop picture: %v", err)
	} else {
		s.logger.Errorf("picture(poc=%d) failed: %v", pic.POC, err)
	}
	s.dec.ReleasePicture(pic)
}

func (s *Stream) release(pics []*decoder.Picture) {
	for _, pic := range pics {
		s.dec.ReleasePicture(pic)
	}
}

// flush 结束未完成的图像并释放 DPB
func (s *Stream) flush() {
	s.endPicture()
	s.release(s.dpb.Flush())
}

// StreamInfo 流信息
type StreamInfo struct {
	StartOn string             `json:"start_on"`
	Name    string             `json:"name"`
	Decode  stats.DecodeSample `json:"decode"`
	Flow    stats.FlowSample   `json:"flow"` // 转换成 K
}

// Info 获取流信息
func (s *Stream) Info() *StreamInfo {
	flow := s.flow.GetSample()
	flow.InBytes /= 1024
	flow.OutBytes /= 1024

	return &StreamInfo{
		StartOn: s.startOn.Format(time.RFC3339Nano),
		Name:    s.name,
		Decode:  s.decode.GetSample(),
		Flow:    flow,
	}
}
