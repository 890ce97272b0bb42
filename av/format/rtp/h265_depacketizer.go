// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"github.com/cnotch/hevcparser/av/codec"
	"github.com/cnotch/hevcparser/av/codec/hevc"
	"github.com/pkg/errors"
)

// ErrMalformed 载荷不符合 H.265 RTP 封装
var ErrMalformed = errors.New("malformed h265 rtp payload")

// Depacketizer 解包器
type Depacketizer interface {
	Depacketize(p *Packet) error
}

type h265Depacketizer struct {
	fragments []*Packet // 分片包
	meta      *codec.VideoMeta
	clock     *Clock
	w         codec.FrameWriter
}

// NewH265Depacketizer 实例化 H265 NAL 单元提取器，
// 带内的参数集会补全 meta 中缺失的部分
func NewH265Depacketizer(meta *codec.VideoMeta, w codec.FrameWriter) Depacketizer {
	return &h265Depacketizer{
		meta:      meta,
		fragments: make([]*Packet, 0, 16),
		clock:     NewClock(meta.ClockRate),
		w:         w,
	}
}

/*
 * decode the HEVC payload header according to RFC 7798:
 *
 *    0                   1
 *    0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5
 *   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
 *   |F|   Type    |  LayerId  | TID |
 *   +-------------+-----------------+
 *
 *    decode the FU header
 *
 *     0 1 2 3 4 5 6 7
 *    +-+-+-+-+-+-+-+-+
 *    |S|E|  FuType   |
 *    +---------------+
 */
func (h265dp *h265Depacketizer) Depacketize(packet *Packet) (err error) {
	payload := packet.Payload()
	if len(payload) < 3 {
		return errors.Wrapf(ErrMalformed, "payload size %d", len(payload))
	}

	switch hevc.NalType(payload[0]) {
	case hevc.NalStapInRtp: // 聚合包（AP）
		return h265dp.depacketizeAp(packet)
	case hevc.NalFuInRtp: // 分片包（FU）
		return h265dp.depacketizeFu(packet)
	default:
		nalu := make([]byte, len(payload))
		copy(nalu, payload)
		return h265dp.writeNALU(packet.Timestamp, nalu)
	}
}

func (h265dp *h265Depacketizer) depacketizeAp(packet *Packet) (err error) {
	payload := packet.Payload()
	off := 2 // 跳过 AP 的 PayloadHdr

	for off < len(payload) {
		if off+2 > len(payload) {
			return errors.Wrap(ErrMalformed, "aggregation unit size truncated")
		}
		nalSize := int(payload[off])<<8 | int(payload[off+1])
		off += 2
		if nalSize == 0 {
			continue
		}
		if off+nalSize > len(payload) {
			return errors.Wrapf(ErrMalformed, "aggregation unit size %d exceeds payload", nalSize)
		}

		nalu := make([]byte, nalSize)
		copy(nalu, payload[off:])
		if err = h265dp.writeNALU(packet.Timestamp, nalu); err != nil {
			return
		}
		off += nalSize
	}
	return
}

func (h265dp *h265Depacketizer) depacketizeFu(packet *Packet) (err error) {
	payload := packet.Payload()
	rawDataOffset := 3 // PayloadHdr + FU header
	fuHeader := payload[2]

	if (fuHeader>>7)&1 == 1 { // 第一个分片
		h265dp.fragments = append(h265dp.fragments[:0], packet)
		return
	}

	if len(h265dp.fragments) == 0 ||
		h265dp.fragments[len(h265dp.fragments)-1].SequenceNumber != packet.SequenceNumber-1 {
		// 丢包，丢弃整个 NAL
		h265dp.fragments = h265dp.fragments[:0]
		return
	}

	h265dp.fragments = append(h265dp.fragments, packet)

	if (fuHeader>>6)&1 == 1 { // 最后一个分片
		naluLen := 2 // 重建的 NAL 头
		for _, fragment := range h265dp.fragments {
			naluLen += len(fragment.Payload()) - rawDataOffset
		}

		nalu := make([]byte, naluLen)
		nalu[0] = (payload[0] & 0x81) | (fuHeader&0x3f)<<1
		nalu[1] = payload[1]
		offset := 2
		for _, fragment := range h265dp.fragments {
			offset += copy(nalu[offset:], fragment.Payload()[rawDataOffset:])
		}
		h265dp.fragments = h265dp.fragments[:0]

		err = h265dp.writeNALU(packet.Timestamp, nalu)
	}
	return
}

func (h265dp *h265Depacketizer) writeNALU(rtpTimestamp uint32, nalu []byte) error {
	switch hevc.NalType(nalu[0]) {
	case hevc.NalVps:
		if len(h265dp.meta.Vps) == 0 {
			h265dp.meta.Vps = nalu
		}
	case hevc.NalSps:
		if len(h265dp.meta.Sps) == 0 {
			h265dp.meta.Sps = nalu
		}
	case hevc.NalPps:
		if len(h265dp.meta.Pps) == 0 {
			h265dp.meta.Pps = nalu
		}
	}

	ts := h265dp.clock.Elapsed(rtpTimestamp)
	return h265dp.w.WriteFrame(&codec.Frame{
		Dts:     ts,
		Pts:     ts,
		Payload: nalu,
	})
}
