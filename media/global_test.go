// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"testing"

	"github.com/cnotch/hevcparser/av/decoder"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	newStream := func(name string) *Stream {
		return NewStream(name, decoder.New(nil, decoder.Options{}, nil), nil)
	}

	a := newStream("a")
	b := newStream("b")
	Regist(b)
	Regist(a)
	Regist(a)
	assert.Equal(t, 2, Count())
	assert.Same(t, a, Get("a"))
	assert.Nil(t, Get("c"))

	infos := Infos()
	if assert.Len(t, infos, 2) {
		assert.Equal(t, "a", infos[0].Name)
		assert.Equal(t, "b", infos[1].Name)
	}

	t.Run("replace", func(t *testing.T) {
		a2 := newStream("a")
		Regist(a2)
		a.Wait() // 旧流被关闭
		assert.Same(t, a2, Get("a"))
		assert.Equal(t, ErrStreamClosed, a.WriteNALU(idrFirst))
	})

	t.Run("unregist", func(t *testing.T) {
		Unregist(b)
		b.Wait()
		assert.Nil(t, Get("b"))
		assert.Equal(t, 1, Count())
	})

	UnregistAll()
	assert.Equal(t, 0, Count())
}
