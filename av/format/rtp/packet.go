// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pion/rtp"
	"github.com/pkg/errors"
)

const (
	// TransferPrefix RTP 包交织传输时的前缀
	TransferPrefix = byte(0x24) // $
)

// 预定义 RTP 通道类型
const (
	ChannelVideo        = iota // 视频通道
	ChannelVideoControl        // 视频控制通道
	ChannelAudio               // 音频通道，读取后忽略
	ChannelAudioControl        // 音频控制通道，读取后忽略
	ChannelCount               // 支持的 RTP 通道类型数量
)

// DefaultChannelConfig 默认的通道配置
var DefaultChannelConfig = []int{
	ChannelVideo,
	ChannelVideoControl,
	ChannelAudio,
	ChannelAudioControl,
}

// 包错误
var (
	ErrPrefix  = errors.New("RTP packet must start with `$`")
	ErrChannel = errors.New("RTP packet illegal channel")
)

// ChannelName 通道名
func ChannelName(channel int) string {
	switch channel {
	case ChannelAudio:
		return "audio"
	case ChannelVideo:
		return "video"
	case ChannelAudioControl:
		return "audio control"
	case ChannelVideoControl:
		return "video control"
	}
	return "unknow"
}

// Packet RTP 数据包
type Packet struct {
	Channel    byte   // 通道类型
	Data       []byte // 完整的 RTP/RTCP 包
	rtp.Header        // 仅视频通道解析
}

// PacketWriter 包装 WriteRtpPacket 方法的接口
type PacketWriter interface {
	WriteRtpPacket(packet *Packet) error
}

// ReadPacket 从 r 中读取一个 `$` 交织的 rtp 包.
// channelConfig 提供通道类型所在通道的配置信息
func ReadPacket(r *bufio.Reader, channelConfig []int) (*Packet, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	if prefix[0] != TransferPrefix {
		return nil, errors.WithStack(ErrPrefix)
	}

	channel := int(prefix[1])
	rtpLen := int(binary.BigEndian.Uint16(prefix[2:]))

	rtpBytes := make([]byte, rtpLen)
	if _, err := io.ReadFull(r, rtpBytes); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	for i, v := range channelConfig {
		if v != channel {
			continue
		}
		p := &Packet{Channel: byte(i), Data: rtpBytes}
		if p.Channel == ChannelVideo {
			if err := p.Header.Unmarshal(p.Data); err != nil {
				return nil, errors.Wrap(err, "unmarshal rtp header")
			}
		}
		return p, nil
	}
	return nil, errors.Wrapf(ErrChannel, "channel %d", channel)
}

// Write 将 RTP 包以 `$` 交织格式输出到 w
func (p *Packet) Write(w io.Writer, channelConfig []int) error {
	if int(p.Channel) >= len(channelConfig) {
		return errors.Errorf("unknow channel type %d", p.Channel)
	}

	var prefix [4]byte
	prefix[0] = TransferPrefix
	prefix[1] = byte(channelConfig[p.Channel])
	binary.BigEndian.PutUint16(prefix[2:], uint16(len(p.Data)))

	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err := w.Write(p.Data)
	return err
}

// Size 包在交织流中的传输总大小
func (p *Packet) Size() int {
	return len(p.Data) + 4
}

// Payload 数据包中实际的载荷，非视频通道返回 nil
func (p *Packet) Payload() []byte {
	if p.Channel != ChannelVideo {
		return nil
	}
	end := len(p.Data)
	if p.Padding && end > p.PayloadOffset {
		pad := int(p.Data[end-1])
		if pad <= end-p.PayloadOffset {
			end -= pad
		}
	}
	return p.Data[p.PayloadOffset:end]
}
