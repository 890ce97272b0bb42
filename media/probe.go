// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"sync"

	"github.com/cnotch/hevcparser/av/decoder"
	"github.com/pkg/errors"
)

// 探测后端检查出的提交错误
var (
	ErrBadSliceOffsets   = errors.New("slice offsets do not match bitstream")
	ErrMissingParameters = errors.New("picture has no sps or pps descriptor")
)

// ProbeReport 探测后端的统计
type ProbeReport struct {
	Sequence           decoder.SequenceInfo `json:"sequence"` // 最近的序列
	Sequences          int                  `json:"sequences"`
	SpsUpdates         int                  `json:"spsupdates"`
	PpsUpdates         int                  `json:"ppsupdates"`
	Pictures           int                  `json:"pictures"`
	Slices             int                  `json:"slices"`
	BitstreamBytes     int64                `json:"bitstreambytes"`
	MaxRefs            int                  `json:"maxrefs"`
	Displayed          int                  `json:"displayed"`
	LastTimestamp      int64                `json:"lasttimestamp"`
	Unhandled          int                  `json:"unhandled"`
	OutstandingBuffers int                  `json:"outstandingbuffers"`
}

// ProbeBackend 不做实际解码的后端，校验并统计每次提交
type ProbeBackend struct {
	l      sync.Mutex
	report ProbeReport
}

// NewProbeBackend 创建探测后端
func NewProbeBackend() *ProbeBackend {
	return &ProbeBackend{}
}

// Report 返回统计快照
func (b *ProbeBackend) Report() ProbeReport {
	b.l.Lock()
	defer b.l.Unlock()
	return b.report
}

// BeginSequence 采用最少解码表面数作为 DPB 大小
func (b *ProbeBackend) BeginSequence(seq *decoder.SequenceInfo) int {
	b.l.Lock()
	defer b.l.Unlock()
	b.report.Sequence = *seq
	b.report.Sequences++
	return seq.MinNumDecodeSurfaces
}

// AllocPictureBuffer .
func (b *ProbeBackend) AllocPictureBuffer() (decoder.PictureBuffer, error) {
	b.l.Lock()
	defer b.l.Unlock()
	b.report.OutstandingBuffers++
	return &probeBuffer{backend: b}, nil
}

// DecodePicture 校验码流组装结果和描述符
func (b *ProbeBackend) DecodePicture(pd *decoder.PictureData) error {
	offsets := pd.SliceOffsets
	if len(offsets) != pd.NumSlices+1 || offsets[0] != 0 ||
		int(offsets[len(offsets)-1]) != len(pd.Bitstream) {
		return errors.WithStack(ErrBadSliceOffsets)
	}
	if pd.Hevc.StdSPS == nil || pd.Hevc.StdPPS == nil {
		return errors.WithStack(ErrMissingParameters)
	}

	b.l.Lock()
	defer b.l.Unlock()
	b.report.Pictures++
	b.report.Slices += pd.NumSlices
	b.report.BitstreamBytes += int64(len(pd.Bitstream))
	if n := pd.Hevc.Refs.Len(); n > b.report.MaxRefs {
		b.report.MaxRefs = n
	}
	return nil
}

// DisplayPicture .
func (b *ProbeBackend) DisplayPicture(buf decoder.PictureBuffer, timestamp int64) error {
	b.l.Lock()
	defer b.l.Unlock()
	b.report.Displayed++
	b.report.LastTimestamp = timestamp
	return nil
}

// UpdatePictureParameters .
func (b *ProbeBackend) UpdatePictureParameters(params *decoder.PictureParameters) error {
	b.l.Lock()
	defer b.l.Unlock()
	switch params.Kind {
	case decoder.KindSPS:
		if params.SPS == nil {
			return errors.WithStack(ErrMissingParameters)
		}
		b.report.SpsUpdates++
	case decoder.KindPPS:
		if params.PPS == nil {
			return errors.WithStack(ErrMissingParameters)
		}
		b.report.PpsUpdates++
	}
	return nil
}

// UnhandledNALU .
func (b *ProbeBackend) UnhandledNALU(nalu []byte) {
	b.l.Lock()
	defer b.l.Unlock()
	b.report.Unhandled++
}

type probeBuffer struct {
	backend  *ProbeBackend
	released bool
}

func (buf *probeBuffer) Release() {
	if buf.released {
		return
	}
	buf.released = true
	buf.backend.l.Lock()
	buf.backend.report.OutstandingBuffers--
	buf.backend.l.Unlock()
}
