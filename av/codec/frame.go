// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

// Frame 一个视频 NAL 单元
type Frame struct {
	Dts     int64  // DTS，单位为 ns
	Pts     int64  // PTS，单位为 ns
	Payload []byte // NAL 单元，不含起始码
}

// FrameWriter 包装 WriteFrame 方法的接口
type FrameWriter interface {
	WriteFrame(frame *Frame) error
}

// FrameWriterFunc 函数形式的 FrameWriter
type FrameWriterFunc func(frame *Frame) error

// WriteFrame 调用 f(frame)
func (f FrameWriterFunc) WriteFrame(frame *Frame) error {
	return f(frame)
}
