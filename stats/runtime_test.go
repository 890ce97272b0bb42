// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasureRuntime(t *testing.T) {
	proc := MeasureRuntime()
	assert.True(t, proc.Goroutines > 0)
	assert.True(t, proc.HeapInuse > 0)
	assert.True(t, proc.Uptime >= 0)
}
