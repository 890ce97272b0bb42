// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoder

import (
	"fmt"

	"github.com/pkg/errors"
)

// 图像级错误定义
var (
	// ErrTooManyRefs 参考图像超过参考表容量
	ErrTooManyRefs = errors.New("too many reference pictures")
	// ErrAllocPicture 后端分配图像缓冲失败
	ErrAllocPicture = errors.New("allocate picture buffer failed")
	// ErrDecodePicture 后端提交解码失败
	ErrDecodePicture = errors.New("decode picture failed")
	// ErrDisplayPicture 后端显示图像失败
	ErrDisplayPicture = errors.New("display picture failed")
)

// PictureError 单个图像的致命错误，只中止当前图像
type PictureError struct {
	POC int32  // 图像顺序号
	Op  string // 失败的操作
	Err error
}

func (e *PictureError) Error() string {
	return fmt.Sprintf("picture(poc=%d) %s: %v", e.POC, e.Op, e.Err)
}

// Unwrap 返回内部错误
func (e *PictureError) Unwrap() error { return e.Err }

// Cause 兼容 errors.Cause
func (e *PictureError) Cause() error { return e.Err }

func pictureError(poc int32, op string, err error) error {
	return &PictureError{POC: poc, Op: op, Err: err}
}

// IsPictureFatal 判断错误是否为图像级错误
func IsPictureFatal(err error) bool {
	var pe *PictureError
	return errors.As(err, &pe)
}
