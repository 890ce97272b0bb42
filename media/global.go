// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"sort"
	"sync"
)

// 全局变量
var (
	streams sync.Map // 流集合 string->*Stream
)

// Regist 注册流，同名的旧流被关闭
func Regist(s *Stream) {
	oldSI, ok := streams.Load(s.name)
	if s == oldSI { // 如果是同一个源
		return
	}

	streams.Store(s.name, s)
	if ok {
		oldSI.(*Stream).Close()
	}
}

// Unregist 取消注册并关闭流
func Unregist(s *Stream) {
	si, ok := streams.Load(s.name)
	if ok && si.(*Stream) == s {
		streams.Delete(s.name)
	}
	s.Close()
}

// UnregistAll 取消全部注册的流
func UnregistAll() {
	streams.Range(func(key, value interface{}) bool {
		streams.Delete(key)
		value.(*Stream).Close()
		return true
	})
}

// Get 获取名称为 name 的流
func Get(name string) *Stream {
	si, ok := streams.Load(name)
	if ok {
		return si.(*Stream)
	}
	return nil
}

// Count 流数量
func Count() (sc int) {
	streams.Range(func(key, value interface{}) bool {
		sc++
		return true
	})
	return
}

// Infos 按名称排序返回所有流的信息
func Infos() []*StreamInfo {
	var ss []*StreamInfo
	streams.Range(func(key, value interface{}) bool {
		ss = append(ss, value.(*Stream).Info())
		return true
	})

	sort.Slice(ss, func(i, j int) bool {
		return ss[i].Name < ss[j].Name
	})
	return ss
}
