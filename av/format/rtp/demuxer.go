// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"bufio"
	"io"

	"github.com/cnotch/hevcparser/av/codec"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

// Demuxer 把视频通道的 RTP 包还原成 NAL 单元
type Demuxer struct {
	vdp       Depacketizer
	logger    *xlog.Logger
	packets   int
	malformed int
}

// NewDemuxer 创建 rtp.Packet 解封装处理器。
func NewDemuxer(video *codec.VideoMeta, fw codec.FrameWriter, logger *xlog.Logger) (*Demuxer, error) {
	if logger == nil {
		logger = xlog.L()
	}

	demuxer := &Demuxer{logger: logger}
	switch video.Codec {
	case "H265":
		demuxer.vdp = NewH265Depacketizer(video, fw)
	default:
		return nil, errors.Errorf("rtp demuxer unsupport video codec type:%s", video.Codec)
	}
	return demuxer, nil
}

// WriteRtpPacket 处理一个 RTP 包，非视频通道的包被忽略。
// 格式错误的载荷记录日志后丢弃，只返回下游写入的错误。
func (demuxer *Demuxer) WriteRtpPacket(packet *Packet) error {
	if packet.Channel != ChannelVideo {
		return nil
	}

	demuxer.packets++
	err := demuxer.vdp.Depacketize(packet)
	if errors.Is(err, ErrMalformed) {
		demuxer.malformed++
		demuxer.logger.Warnf("rtp demuxer: drop packet seq=%d: %v", packet.SequenceNumber, err)
		return nil
	}
	return err
}

// Packets 已处理的视频包数量
func (demuxer *Demuxer) Packets() int {
	return demuxer.packets
}

// Malformed 丢弃的视频包数量
func (demuxer *Demuxer) Malformed() int {
	return demuxer.malformed
}

// ReadAll 从 r 中读取交织的 RTP 包写入 w，直到流结束
func ReadAll(r io.Reader, channelConfig []int, w PacketWriter) error {
	br := bufio.NewReader(r)
	for {
		packet, err := ReadPacket(br, channelConfig)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err = w.WriteRtpPacket(packet); err != nil {
			return err
		}
	}
}
