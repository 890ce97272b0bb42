// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"bufio"
	"bytes"
	"testing"
	"time"

	"github.com/cnotch/hevcparser/av/codec"
	"github.com/cnotch/xlog"
	"github.com/pion/rtp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testVPS = []byte{0x40, 0x01, 0x0c, 0x01}
	testSPS = []byte{0x42, 0x01, 0x01, 0x01, 0x60}
	testIDR = []byte{0x26, 0x01, 0xaf, 0x09, 0x40, 0x11, 0x22}
)

func marshalPacket(t *testing.T, seq uint16, ts uint32, payload []byte) []byte {
	p := rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    96,
			SequenceNumber: seq,
			Timestamp:      ts,
			SSRC:           0x1234,
		},
		Payload: payload,
	}
	data, err := p.Marshal()
	require.NoError(t, err)
	return data
}

func interleave(channel byte, data []byte) []byte {
	return append([]byte{TransferPrefix, channel, byte(len(data) >> 8), byte(len(data))}, data...)
}

func makePacket(t *testing.T, seq uint16, ts uint32, payload []byte) *Packet {
	raw := interleave(0, marshalPacket(t, seq, ts, payload))
	p, err := ReadPacket(bufio.NewReader(bytes.NewReader(raw)), DefaultChannelConfig)
	require.NoError(t, err)
	return p
}

func aggregate(nalus ...[]byte) []byte {
	ap := []byte{0x60, 0x01} // type 48
	for _, nalu := range nalus {
		ap = append(ap, byte(len(nalu)>>8), byte(len(nalu)))
		ap = append(ap, nalu...)
	}
	return ap
}

func fragment(nalu []byte, parts int) [][]byte {
	typ := (nalu[0] >> 1) & 0x3f
	body := nalu[2:]
	step := (len(body) + parts - 1) / parts
	var frags [][]byte
	for i := 0; i < len(body); i += step {
		end := i + step
		if end > len(body) {
			end = len(body)
		}
		fu := typ
		if i == 0 {
			fu |= 0x80
		}
		if end == len(body) {
			fu |= 0x40
		}
		frag := []byte{(nalu[0] & 0x81) | 49<<1, nalu[1], fu}
		frags = append(frags, append(frag, body[i:end]...))
	}
	return frags
}

type frameRecorder struct {
	frames []*codec.Frame
}

func (fr *frameRecorder) WriteFrame(frame *codec.Frame) error {
	fr.frames = append(fr.frames, frame)
	return nil
}

func (fr *frameRecorder) payloads() [][]byte {
	var ps [][]byte
	for _, f := range fr.frames {
		ps = append(ps, f.Payload)
	}
	return ps
}

func newTestDemuxer(t *testing.T) (*Demuxer, *frameRecorder, *codec.VideoMeta) {
	meta := &codec.VideoMeta{Codec: "H265", ClockRate: 90000}
	fr := &frameRecorder{}
	demuxer, err := NewDemuxer(meta, fr, xlog.L())
	require.NoError(t, err)
	return demuxer, fr, meta
}

func TestReadPacket(t *testing.T) {
	t.Run("video", func(t *testing.T) {
		p := makePacket(t, 7, 3000, testIDR)
		assert.Equal(t, byte(ChannelVideo), p.Channel)
		assert.Equal(t, uint16(7), p.SequenceNumber)
		assert.Equal(t, uint32(3000), p.Timestamp)
		assert.Equal(t, testIDR, p.Payload())
		assert.Equal(t, len(p.Data)+4, p.Size())

		var buf bytes.Buffer
		require.NoError(t, p.Write(&buf, DefaultChannelConfig))
		assert.Equal(t, interleave(0, p.Data), buf.Bytes())
	})

	t.Run("control", func(t *testing.T) {
		raw := interleave(1, []byte{0x80, 200, 0, 6})
		p, err := ReadPacket(bufio.NewReader(bytes.NewReader(raw)), DefaultChannelConfig)
		require.NoError(t, err)
		assert.Equal(t, byte(ChannelVideoControl), p.Channel)
		assert.Nil(t, p.Payload())
	})

	t.Run("bad_prefix", func(t *testing.T) {
		raw := []byte{'#', 0, 0, 1, 0}
		_, err := ReadPacket(bufio.NewReader(bytes.NewReader(raw)), DefaultChannelConfig)
		assert.Equal(t, ErrPrefix, errors.Cause(err))
	})

	t.Run("illegal_channel", func(t *testing.T) {
		raw := interleave(9, marshalPacket(t, 1, 0, testIDR))
		_, err := ReadPacket(bufio.NewReader(bytes.NewReader(raw)), DefaultChannelConfig)
		assert.Equal(t, ErrChannel, errors.Cause(err))
	})
}

func TestDemuxer(t *testing.T) {
	t.Run("single_nalu", func(t *testing.T) {
		demuxer, fr, _ := newTestDemuxer(t)
		require.NoError(t, demuxer.WriteRtpPacket(makePacket(t, 1, 0, testIDR)))
		require.NoError(t, demuxer.WriteRtpPacket(makePacket(t, 2, 9000, testIDR)))

		assert.Equal(t, [][]byte{testIDR, testIDR}, fr.payloads())
		assert.Equal(t, int64(0), fr.frames[0].Pts)
		assert.InDelta(t, float64(100*time.Millisecond), float64(fr.frames[1].Pts), 1)
		assert.Equal(t, fr.frames[1].Pts, fr.frames[1].Dts)
	})

	t.Run("aggregation", func(t *testing.T) {
		demuxer, fr, meta := newTestDemuxer(t)
		require.NoError(t, demuxer.WriteRtpPacket(makePacket(t, 1, 0, aggregate(testVPS, testSPS))))
		assert.Equal(t, [][]byte{testVPS, testSPS}, fr.payloads())
		assert.Equal(t, testVPS, meta.Vps)
		assert.Equal(t, testSPS, meta.Sps)
		assert.Empty(t, meta.Pps)
	})

	t.Run("fragmentation", func(t *testing.T) {
		demuxer, fr, _ := newTestDemuxer(t)
		for i, frag := range fragment(testIDR, 3) {
			require.NoError(t, demuxer.WriteRtpPacket(makePacket(t, uint16(10+i), 0, frag)))
		}
		assert.Equal(t, [][]byte{testIDR}, fr.payloads())
	})

	t.Run("fragment_lost", func(t *testing.T) {
		demuxer, fr, _ := newTestDemuxer(t)
		frags := fragment(testIDR, 3)
		require.NoError(t, demuxer.WriteRtpPacket(makePacket(t, 10, 0, frags[0])))
		require.NoError(t, demuxer.WriteRtpPacket(makePacket(t, 12, 0, frags[2])))
		assert.Empty(t, fr.frames)
	})

	t.Run("malformed", func(t *testing.T) {
		demuxer, fr, _ := newTestDemuxer(t)
		ap := aggregate(testVPS)
		ap[3] = 0x40 // 长度超出载荷
		require.NoError(t, demuxer.WriteRtpPacket(makePacket(t, 1, 0, ap)))
		require.NoError(t, demuxer.WriteRtpPacket(makePacket(t, 2, 0, []byte{0x26})))
		assert.Empty(t, fr.frames)
		assert.Equal(t, 2, demuxer.Packets())
		assert.Equal(t, 2, demuxer.Malformed())
	})

	t.Run("unsupported_codec", func(t *testing.T) {
		_, err := NewDemuxer(&codec.VideoMeta{Codec: "H264"}, &frameRecorder{}, nil)
		assert.Error(t, err)
	})
}

func TestReadAll(t *testing.T) {
	var stream []byte
	stream = append(stream, interleave(0, marshalPacket(t, 1, 0, aggregate(testVPS, testSPS)))...)
	stream = append(stream, interleave(1, []byte{0x80, 200, 0, 6})...)
	stream = append(stream, interleave(2, marshalPacket(t, 1, 0, []byte{0xff, 0xf1}))...)
	stream = append(stream, interleave(0, marshalPacket(t, 2, 3000, testIDR))...)

	demuxer, fr, _ := newTestDemuxer(t)
	require.NoError(t, ReadAll(bytes.NewReader(stream), DefaultChannelConfig, demuxer))
	assert.Equal(t, [][]byte{testVPS, testSPS, testIDR}, fr.payloads())

	t.Run("truncated", func(t *testing.T) {
		demuxer, _, _ := newTestDemuxer(t)
		err := ReadAll(bytes.NewReader(stream[:len(stream)-3]), DefaultChannelConfig, demuxer)
		assert.Error(t, err)
	})
}

func TestClock(t *testing.T) {
	c := NewClock(90000)
	unit := float64(time.Second) / 90000

	assert.Equal(t, int64(0), c.Elapsed(0xffffff00))
	assert.Equal(t, int64(float64(0x200)*unit), c.Elapsed(0x00000100))
	// 回绕前迟到的包
	assert.Equal(t, int64(float64(0xf0)*unit), c.Elapsed(0xfffffff0))
	assert.Equal(t, int64(float64(0x300)*unit), c.Elapsed(0x00000200))

	assert.Equal(t, int64(0), NewClock(0).Elapsed(12345))
}
