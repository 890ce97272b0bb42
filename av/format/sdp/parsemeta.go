// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sdp 从 SDP 中读取 H.265 视频元数据和带外参数集
package sdp

import (
	"encoding/base64"
	"strings"

	"github.com/cnotch/hevcparser/av/codec"
	"github.com/cnotch/hevcparser/av/codec/hevc"
	"github.com/cnotch/hevcparser/utils"
	"github.com/cnotch/hevcparser/utils/scan"
	"github.com/pixelbender/go-sdp/sdp"
	"github.com/pkg/errors"
)

// ParseMetadata 解析 SDP 中第一个视频媒体的元数据
func ParseMetadata(rawsdp string, video *codec.VideoMeta) error {
	sess, err := sdp.ParseString(rawsdp)
	if err != nil {
		return errors.Wrap(err, "parse sdp")
	}

	for _, media := range sess.Media {
		if media.Type != "video" || len(media.Format) == 0 {
			continue
		}

		for _, bw := range media.Bandwidth {
			if bw.Type == "AS" {
				video.DataRate = float64(bw.Value)
			}
		}
		return parseVideoMeta(media.Format[0], video)
	}
	return errors.New("sdp has no video media")
}

func parseVideoMeta(m *sdp.Format, video *codec.VideoMeta) error {
	switch strings.ToUpper(m.Name) {
	case "H265", "HEVC":
		video.Codec = "H265"
	default:
		return errors.Errorf("unsupport video codec type:%s", m.Name)
	}

	video.ClockRate = 90000
	if m.ClockRate > 0 {
		video.ClockRate = m.ClockRate
	}

	for _, p := range m.Params {
		i := strings.Index(p, "sprop-")
		if i < 0 {
			continue
		}
		if err := parseH265VpsSpsPps(p[i:], video); err != nil {
			return err
		}
		break
	}

	_ = hevc.MetadataIsReady(video)
	return nil
}

func parseH265VpsSpsPps(s string, video *codec.VideoMeta) error {
	var advance, token string
	continueScan := true
	advance = s
	for continueScan {
		advance, token, continueScan = scan.Semicolon.Scan(advance)
		name, value, ok := scan.EqualPair.Scan(token)
		if !ok {
			continue
		}

		var dst *[]byte
		switch name {
		case "sprop-vps":
			dst = &video.Vps
		case "sprop-sps":
			dst = &video.Sps
		case "sprop-pps":
			dst = &video.Pps
		default:
			continue
		}

		// 多个参数集以逗号分隔，只取第一个
		if i := strings.IndexByte(value, ','); i >= 0 {
			value = value[:i]
		}
		ps, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return errors.Wrapf(err, "decode %s", name)
		}
		*dst = utils.RemoveNaluSeparator(ps)
	}
	return nil
}
