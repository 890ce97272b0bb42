// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoder

// 后端的码流扫描依赖每个片段前的起始码
var startCode = []byte{0, 0, 1}

// Bitstream 组装完成的图像码流
type Bitstream struct {
	Data         []byte
	SliceOffsets []uint32 // 每个片段起始码的位置，最后一项为总长度
	NumSlices    int
}

// Assembler 把一幅图像的片段 NAL 拼接成连续码流
type Assembler struct {
	data      []byte
	offsets   []uint32
	numSlices int
	finalized bool
}

// NewAssembler 创建组装器，偏移表以 0 开始
func NewAssembler() *Assembler {
	return &Assembler{
		offsets: []uint32{0},
	}
}

// AppendSlice 追加一个片段，payload 不含起始码
func (a *Assembler) AppendSlice(payload []byte) {
	if a.finalized {
		panic("decoder: append slice to a finalized assembler")
	}

	a.data = append(a.data, startCode...)
	a.data = append(a.data, payload...)
	a.numSlices++
	last := a.offsets[len(a.offsets)-1]
	a.offsets = append(a.offsets, last+uint32(len(startCode)+len(payload)))
}

// NumSlices 已追加的片段数
func (a *Assembler) NumSlices() int { return a.numSlices }

// Len 已组装的字节数
func (a *Assembler) Len() int { return len(a.data) }

// Finalize 转移码流和偏移表的所有权，之后组装器不能再使用
func (a *Assembler) Finalize() Bitstream {
	if a.finalized {
		panic("decoder: assembler finalized twice")
	}

	bs := Bitstream{
		Data:         a.data,
		SliceOffsets: a.offsets,
		NumSlices:    a.numSlices,
	}
	if bs.Data == nil {
		bs.Data = []byte{}
	}
	a.data = nil
	a.offsets = nil
	a.finalized = true
	return bs
}
