// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken(t *testing.T) {
	tk := newToken(KindSPS)
	assert.Equal(t, KindSPS, tk.Kind())
	assert.Equal(t, 1, tk.Refs())
	assert.NotEqual(t, newToken(KindSPS).ID(), tk.ID())

	assert.Same(t, tk, tk.Retain())
	assert.Equal(t, 2, tk.Refs())
	assert.False(t, tk.Release())
	assert.True(t, tk.Release())
	assert.Panics(t, func() { tk.Release() })
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindVPS, "VPS"},
		{KindSPS, "SPS"},
		{KindPPS, "PPS"},
		{Kind(7), "Kind(7)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}
