// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"encoding/base64"
	"testing"

	"github.com/cnotch/hevcparser/av/codec"
	"github.com/cnotch/queue"
	"github.com/stretchr/testify/assert"
)

func b64(s string) []byte {
	b, _ := base64.StdEncoding.DecodeString(s)
	return b
}

var (
	testVPS = b64("QAEMAf//AWAAAAMAkAAAAwAAAwBdlZgJ")
	testSPS = b64("QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC")
	testPPS = b64("RAFQTiWimCaChYhzIWQWkmQtamg=") // id 1
)

type frameRecorder [][]byte

func (fr *frameRecorder) WriteFrame(frame *codec.Frame) error {
	*fr = append(*fr, frame.Payload)
	return nil
}

func TestParamSetCache(t *testing.T) {
	cache := NewParamSetCache()

	t.Run("cache", func(t *testing.T) {
		assert.True(t, cache.CacheNALU(testPPS))
		assert.True(t, cache.CacheNALU(testSPS))
		assert.True(t, cache.CacheNALU(testVPS))
		assert.False(t, cache.CacheNALU([]byte{0x26, 0x01, 0xaf}))
		assert.False(t, cache.CacheNALU([]byte{0x42}))
		assert.Equal(t, 3, cache.Len())
	})

	t.Run("replace_same_id", func(t *testing.T) {
		assert.True(t, cache.CacheNALU(testVPS))
		assert.Equal(t, 3, cache.Len())
	})

	t.Run("write_order", func(t *testing.T) {
		var fr frameRecorder
		assert.NoError(t, cache.WriteTo(&fr))
		assert.Equal(t, frameRecorder{testVPS, testSPS, testPPS}, fr)
	})

	t.Run("push_to", func(t *testing.T) {
		q := queue.NewSyncQueue()
		n := cache.PushTo(q)
		assert.Equal(t, len(testVPS)+len(testSPS)+len(testPPS), n)
		first := q.Pop().(*codec.Frame)
		assert.Equal(t, testVPS, first.Payload)
	})

	t.Run("reset", func(t *testing.T) {
		cache.Reset()
		assert.Equal(t, 0, cache.Len())
	})
}
