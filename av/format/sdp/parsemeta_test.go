// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sdp

import (
	"encoding/base64"
	"testing"

	"github.com/cnotch/hevcparser/av/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testVPS = "QAEMAf//AWAAAAMAkAAAAwAAAwBdlZgJ"
	testSPS = "QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC"
	testPPS = "RAHBcrRiQA=="
)

const h265SDP = "v=0\r\n" +
	"o=- 0 0 IN IP4 127.0.0.1\r\n" +
	"s=hevc\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"t=0 0\r\n" +
	"m=video 0 RTP/AVP 96\r\n" +
	"b=AS:2048\r\n" +
	"a=rtpmap:96 H265/90000\r\n" +
	"a=fmtp:96 sprop-vps=" + testVPS + "; sprop-sps=" + testSPS + "; sprop-pps=" + testPPS + "\r\n" +
	"a=control:streamid=0\r\n"

func b64(s string) []byte {
	b, _ := base64.StdEncoding.DecodeString(s)
	return b
}

func TestParseMetadata(t *testing.T) {
	var video codec.VideoMeta
	require.NoError(t, ParseMetadata(h265SDP, &video))

	assert.Equal(t, "H265", video.Codec)
	assert.Equal(t, 90000, video.ClockRate)
	assert.Equal(t, float64(2048), video.DataRate)
	assert.Equal(t, b64(testVPS), video.Vps)
	assert.Equal(t, b64(testSPS), video.Sps)
	assert.Equal(t, b64(testPPS), video.Pps)
	assert.Equal(t, 1280, video.Width)
	assert.Equal(t, 720, video.Height)
}

func TestParseMetadata_Errors(t *testing.T) {
	tests := []struct {
		name string
		sdp  string
	}{
		{"h264", "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\nm=video 0 RTP/AVP 96\r\na=rtpmap:96 H264/90000\r\n"},
		{"audio_only", "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\nm=audio 0 RTP/AVP 97\r\na=rtpmap:97 MPEG4-GENERIC/44100/2\r\n"},
		{"bad_base64", "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\nm=video 0 RTP/AVP 96\r\na=rtpmap:96 H265/90000\r\na=fmtp:96 sprop-sps=@@@\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var video codec.VideoMeta
			assert.Error(t, ParseMetadata(tt.sdp, &video))
		})
	}
}
