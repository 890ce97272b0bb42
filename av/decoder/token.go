// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoder

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Kind 参数集类型
type Kind int

// 参数集类型
const (
	KindVPS Kind = iota
	KindSPS
	KindPPS
	kindCount
)

var kindNames = [...]string{"VPS", "SPS", "PPS"}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Token 解码器与后端共享的参数集关联标识。
// 创建时持有一个引用，引用计数归零后失效。
type Token struct {
	id   uuid.UUID
	kind Kind
	refs int32
}

func newToken(kind Kind) *Token {
	return &Token{
		id:   uuid.New(),
		kind: kind,
		refs: 1,
	}
}

// ID 标识
func (t *Token) ID() uuid.UUID { return t.id }

// Kind 参数集类型
func (t *Token) Kind() Kind { return t.kind }

// Retain 增加引用，后端需要保存 Token 时调用
func (t *Token) Retain() *Token {
	atomic.AddInt32(&t.refs, 1)
	return t
}

// Release 释放引用，返回是否为最后一个引用
func (t *Token) Release() bool {
	n := atomic.AddInt32(&t.refs, -1)
	if n < 0 {
		panic("decoder: token released too many times")
	}
	return n == 0
}

// Refs 当前引用数
func (t *Token) Refs() int {
	return int(atomic.LoadInt32(&t.refs))
}

func (t *Token) String() string {
	return t.kind.String() + ":" + t.id.String()
}
