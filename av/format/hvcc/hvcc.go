// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hvcc 读取 hvcC 解码配置记录及其后的长度前缀 NAL 单元。
//
// 文件布局：4 字节大端记录长度，hvcC 记录，
// 然后是 (LengthSizeMinusOne+1) 字节长度前缀的 NAL 单元序列。
package hvcc

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/cnotch/hevcparser/av/codec"
	"github.com/cnotch/hevcparser/av/codec/hevc"
	"github.com/pkg/errors"
	gomedia "github.com/yapingcat/gomedia/codec"
)

// 记录长度上限
const maxRecordSize = 64 * 1024

// Record 已解析的 hvcC 记录
type Record struct {
	NaluLengthSize int
	ParameterSets  [][]byte // 按记录中的顺序
	Meta           codec.VideoMeta
}

// ParseRecord 解析 hvcC 记录
func ParseRecord(data []byte) (rec *Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = errors.Errorf("hvcC record decode panic；r = %v", r)
		}
	}()

	cfg := gomedia.NewHEVCRecordConfiguration()
	cfg.Decode(data)

	rec = &Record{
		NaluLengthSize: int(cfg.LengthSizeMinusOne) + 1,
		Meta:           codec.VideoMeta{Codec: "H265"},
	}
	for _, arr := range cfg.Arrays {
		for _, unit := range arr.NalUnits {
			if len(unit.Nalu) == 0 {
				continue
			}
			rec.ParameterSets = append(rec.ParameterSets, unit.Nalu)
			switch arr.NAL_unit_type {
			case hevc.NalVps:
				rec.Meta.Vps = firstOf(rec.Meta.Vps, unit.Nalu)
			case hevc.NalSps:
				rec.Meta.Sps = firstOf(rec.Meta.Sps, unit.Nalu)
			case hevc.NalPps:
				rec.Meta.Pps = firstOf(rec.Meta.Pps, unit.Nalu)
			}
		}
	}

	if rec.NaluLengthSize == 3 {
		return nil, errors.New("hvcC: unsupported nalu length size 3")
	}
	hevc.MetadataIsReady(&rec.Meta)
	return rec, nil
}

func firstOf(cur, ps []byte) []byte {
	if len(cur) > 0 {
		return cur
	}
	return ps
}

// Reader 依次读出记录中的参数集和后续的 NAL 单元
type Reader struct {
	r       *bufio.Reader
	rec     *Record
	pending [][]byte
	lenBuf  [4]byte
}

// NewReader 读取记录头并创建读取器
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)

	var head [4]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return nil, errors.Wrap(err, "hvcC: read record size")
	}
	size := binary.BigEndian.Uint32(head[:])
	if size == 0 || size > maxRecordSize {
		return nil, errors.Errorf("hvcC: invalid record size %d", size)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(br, data); err != nil {
		return nil, errors.Wrap(err, "hvcC: read record")
	}
	rec, err := ParseRecord(data)
	if err != nil {
		return nil, err
	}

	return &Reader{
		r:       br,
		rec:     rec,
		pending: rec.ParameterSets,
	}, nil
}

// Record 返回文件头中的记录
func (r *Reader) Record() *Record {
	return r.rec
}

// ReadNALU 读取下一个 NAL 单元；流结束返回 io.EOF
func (r *Reader) ReadNALU() ([]byte, error) {
	if len(r.pending) > 0 {
		nalu := r.pending[0]
		r.pending = r.pending[1:]
		return nalu, nil
	}

	for {
		lb := r.lenBuf[:r.rec.NaluLengthSize]
		if _, err := io.ReadFull(r.r, lb); err != nil {
			return nil, err // io.EOF 或 io.ErrUnexpectedEOF
		}

		var size int
		for _, b := range lb {
			size = size<<8 | int(b)
		}
		if size == 0 {
			continue
		}

		nalu := make([]byte, size)
		if _, err := io.ReadFull(r.r, nalu); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		return nalu, nil
	}
}
