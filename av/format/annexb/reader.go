// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package annexb 从 Annex B 字节流中切分 NAL 单元
package annexb

import (
	"io"

	"github.com/yapingcat/gomedia/codec"
)

const defaultChunkSize = 64 * 1024

// Split 切分内存中的 Annex B 数据，fn 返回 false 时停止。
// 传给 fn 的 NAL 不含起始码，引用 data 的内存。
func Split(data []byte, fn func(nalu []byte) bool) {
	start, sc := codec.FindStartCode(data, 0)
	for start >= 0 {
		begin := start + int(sc)
		end, sc2 := codec.FindStartCode(data, begin)
		if end < 0 {
			if begin < len(data) {
				fn(data[begin:])
			}
			return
		}
		if end > begin && !fn(data[begin:end]) {
			return
		}
		start, sc = end, sc2
	}
}

// Reader 从 io.Reader 中逐个读取 NAL 单元
type Reader struct {
	r     io.Reader
	buf   []byte
	chunk []byte
	eof   bool
}

// NewReader 创建 Annex B 读取器
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:     r,
		chunk: make([]byte, defaultChunkSize),
	}
}

// ReadNALU 读取下一个 NAL 单元，不含起始码；流结束返回 io.EOF
func (r *Reader) ReadNALU() ([]byte, error) {
	for {
		start, sc := codec.FindStartCode(r.buf, 0)
		if start >= 0 {
			begin := start + int(sc)
			end, _ := codec.FindStartCode(r.buf, begin)
			if end >= 0 {
				nalu := r.take(begin, end)
				if len(nalu) == 0 {
					continue
				}
				return nalu, nil
			}
			if r.eof {
				nalu := r.take(begin, len(r.buf))
				if len(nalu) == 0 {
					return nil, io.EOF
				}
				return nalu, nil
			}
		} else if r.eof {
			r.buf = nil
			return nil, io.EOF
		}

		if err := r.fill(); err != nil {
			return nil, err
		}
	}
}

// take 复制 [begin,end) 作为 NAL，并丢弃 end 之前的数据
func (r *Reader) take(begin, end int) []byte {
	nalu := make([]byte, end-begin)
	copy(nalu, r.buf[begin:end])
	r.buf = r.buf[end:]
	return nalu
}

func (r *Reader) fill() error {
	n, err := r.r.Read(r.chunk)
	r.buf = append(r.buf, r.chunk[:n]...)
	if err == io.EOF {
		r.eof = true
		return nil
	}
	return err
}
