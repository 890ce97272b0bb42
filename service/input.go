// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"context"
	"io"
	"os"

	"github.com/cnotch/hevcparser/av/codec"
	"github.com/cnotch/hevcparser/av/decoder"
	"github.com/cnotch/hevcparser/av/format/annexb"
	"github.com/cnotch/hevcparser/av/format/hvcc"
	"github.com/cnotch/hevcparser/av/format/rtp"
	"github.com/cnotch/hevcparser/config"
	"github.com/cnotch/hevcparser/media"
	"github.com/pkg/errors"
)

// Result 一路输入的解析结果
type Result struct {
	Info   *media.StreamInfo `json:"info"`
	Report media.ProbeReport `json:"report"`
}

// NALUReader 逐个读取 NAL 单元
type NALUReader interface {
	ReadNALU() ([]byte, error)
}

// ParseFile 按配置的格式解析文件
func (s *Service) ParseFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	return s.Parse(ctx, path, f, config.DetectFormat(path))
}

// Parse 解析一路输入，输入结束或 ctx 取消后返回探测结果
func (s *Service) Parse(ctx context.Context, name string, r io.Reader, format string) (*Result, error) {
	logger := s.logger
	backend := media.NewProbeBackend()
	dec := decoder.New(backend, config.DecoderOptions(), logger)
	stream := media.NewStream(name, dec, logger, media.Seed(s.seed))
	media.Regist(stream)

	err := s.feed(ctx, stream, r, format)
	media.Unregist(stream)
	stream.Wait()

	return &Result{Info: stream.Info(), Report: backend.Report()}, err
}

func (s *Service) feed(ctx context.Context, stream *media.Stream, r io.Reader, format string) error {
	switch format {
	case config.FormatRTP:
		video := &codec.VideoMeta{Codec: "H265"}
		if s.meta != nil {
			*video = *s.meta
		}
		demuxer, err := rtp.NewDemuxer(video, stream, s.logger)
		if err != nil {
			return err
		}
		err = rtp.ReadAll(&ctxReader{ctx: ctx, r: r}, rtp.DefaultChannelConfig, demuxer)
		if demuxer.Malformed() > 0 {
			s.logger.Warnf("%s: %d of %d rtp packets malformed",
				stream.Name(), demuxer.Malformed(), demuxer.Packets())
		}
		return err
	case config.FormatHVCC:
		hr, err := hvcc.NewReader(r)
		if err != nil {
			return err
		}
		return writeNALUs(ctx, hr, stream)
	default:
		return writeNALUs(ctx, annexb.NewReader(r), stream)
	}
}

func writeNALUs(ctx context.Context, r NALUReader, stream *media.Stream) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		nalu, err := r.ReadNALU()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err = stream.WriteNALU(nalu); err != nil {
			return err
		}
	}
}

// ctxReader 取消后读操作返回 ctx 的错误
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
