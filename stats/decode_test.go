// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	total := NewDecode()
	sub1 := NewChildDecode(total)
	sub2 := NewChildDecode(total)

	t.Run("child", func(t *testing.T) {
		sub1.AddNALU()
		sub1.AddSlice()
		sub1.AddPicture()
		sample := sub1.GetSample()
		assert.Equal(t, int64(1), sample.NALUs)
		assert.Equal(t, int64(1), sample.Pictures)
	})

	t.Run("aggregate", func(t *testing.T) {
		sub2.AddNALU()
		sub2.AddSequence()
		sub2.AddParamUpdate()
		sub2.AddSkipped()
		sub2.AddPictureError()

		sample := total.GetSample()
		assert.Equal(t, int64(2), sample.NALUs)
		assert.Equal(t, int64(1), sample.Slices)
		assert.Equal(t, int64(1), sample.Sequences)
		assert.Equal(t, int64(1), sample.ParamUpdates)
		assert.Equal(t, int64(1), sample.Skipped)
		assert.Equal(t, int64(1), sample.PictureErrors)
		assert.Equal(t, int64(0), sub2.GetSample().Pictures)
	})

	t.Run("add", func(t *testing.T) {
		var sum DecodeSample
		sum.Add(sub1.GetSample())
		sum.Add(sub2.GetSample())
		assert.Equal(t, total.GetSample(), sum)
	})
}
