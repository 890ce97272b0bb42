// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestH265RawSPS_DecodeString(t *testing.T) {
	tests := []struct {
		name    string
		b64     string
		wantW   int
		wantH   int
		wantFR  float64
		wantErr bool
	}{
		{
			"base64_1",
			"QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC",
			1280,
			720,
			float64(24000) / float64(1001),
			false,
		},
		{
			"base64_2",
			"QgEBBAgAAAMAnQgAAAMAAF2wAoCALRZZWaSTK4BAAAADAEAAAAeC",
			1280,
			720,
			30,
			false,
		},
		{
			"tpl500-265",
			"AAAAAUIBAQFgAAADAAADAAADAAADAJagAWggBln3ja5JMmuWMAgAAAMACAAAAwB4QA==",
			2880,
			1620,
			15,
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sps := &H265RawSPS{}
			if err := sps.DecodeString(tt.b64); (err != nil) != tt.wantErr {
				t.Errorf("RawSPS.Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if sps.Width() != tt.wantW {
				t.Errorf("RawSPS.Parse() Width = %v, wantWidth %v", sps.Width(), tt.wantW)
			}
			if sps.Height() != tt.wantH {
				t.Errorf("RawSPS.Parse() Height = %v, wantHeight %v", sps.Height(), tt.wantH)
			}
			if sps.FrameRate() != tt.wantFR {
				t.Errorf("RawSPS.Parse() FrameRate = %v, wantFrameRate %v", sps.FrameRate(), tt.wantFR)
			}
		})
	}
}

func TestH265RawSPS_RangeExtension(t *testing.T) {
	// Main 4:2:2 10 style stream: 1920x1088 coded with a 1080 conformance window,
	// two short-term RPS where the second is inter predicted.
	sps := &H265RawSPS{}
	err := sps.DecodeString("QgEBBAgAAAMAkAAAAwAAAwB7oAPAgBEHy5ZXkk2b6/tgKJA=")
	if !assert.NoError(t, err) {
		return
	}
	assert.True(t, sps.Valid)
	assert.Equal(t, uint8(ProfileFormatRangeExtensions), sps.Profile_tier_level.General_profile_idc)
	assert.Equal(t, uint8(123), sps.Profile_tier_level.General_level_idc)
	assert.Equal(t, uint16(1088), sps.Pic_height_in_luma_samples)
	assert.Equal(t, 1920, sps.Width())
	assert.Equal(t, 1080, sps.Height())
	assert.Equal(t, 0, sps.CropRectY)
	assert.Equal(t, uint8(1), sps.ChromaArrayType)
	assert.Equal(t, 5, sps.MaxDpbSize())
	assert.Equal(t, 64, sps.CtbSizeY())
	assert.Equal(t, uint32(0), sps.FpsNum)
	assert.Equal(t, uint32(1), sps.FpsDen)

	t.Run("st_ref_pic_set", func(t *testing.T) {
		assert.Equal(t, uint8(2), sps.Num_short_term_ref_pic_sets)
		rps0 := sps.St_ref_pic_set[0]
		assert.Equal(t, 2, rps0.NumDeltaPocs())
		assert.Equal(t, uint16(1), rps0.Delta_poc_s0_minus1[1])

		// POC 差值 -1,-3 经 deltaRps=-1 预测得到 -1,-2,-4
		rps1 := sps.St_ref_pic_set[1]
		assert.Equal(t, uint8(1), rps1.Inter_ref_pic_set_prediction_flag)
		assert.Equal(t, uint8(3), rps1.Num_negative_pics)
		assert.Equal(t, uint8(0), rps1.Num_positive_pics)
		assert.Equal(t, []uint16{0, 0, 1}, rps1.Delta_poc_s0_minus1[:3])
		assert.Equal(t, []uint8{1, 1, 1}, rps1.Used_by_curr_pic_s0_flag[:3])
	})

	t.Run("range_extension", func(t *testing.T) {
		assert.Equal(t, uint8(1), sps.Sps_extension_present_flag)
		assert.Equal(t, uint8(1), sps.Sps_range_extension_flag)
		assert.Equal(t, uint8(1), sps.Transform_skip_rotation_enabled_flag)
		assert.Equal(t, uint8(0), sps.Transform_skip_context_enabled_flag)
		assert.Equal(t, uint8(1), sps.Implicit_rdpcm_enabled_flag)
		assert.Equal(t, uint8(1), sps.High_precision_offsets_enabled_flag)
		assert.Equal(t, uint8(0), sps.Cabac_bypass_alignment_enabled_flag)
		assert.Equal(t, uint8(0), sps.Sps_scc_extension_flag)
	})
}

func TestH265RawSPS_Derived(t *testing.T) {
	sps := &H265RawSPS{}
	if !assert.NoError(t, sps.DecodeString("AAAAAUIBAQFgAAADAAADAAADAAADAJagAWggBln3ja5JMmuWMAgAAAMACAAAAwB4QA==")) {
		return
	}
	assert.Equal(t, uint16(1624), sps.Pic_height_in_luma_samples)
	assert.Equal(t, 1620, sps.CropRectHeight)
	assert.Equal(t, uint32(15), sps.FpsNum)
	assert.Equal(t, uint32(1), sps.FpsDen)
	assert.Equal(t, 2, sps.MaxDpbSize())
	assert.True(t, sps.IsFixedFrameRate())
}

func TestH265RawSPS_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte{0x42, 0x01}},
		{"pps", []byte{0x44, 0x01, 0xc1, 0x72, 0xb4, 0x62, 0x40}},
		{"truncated", []byte{0x42, 0x01, 0x01, 0x01, 0x60, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sps := &H265RawSPS{}
			assert.Error(t, sps.Decode(tt.data))
			assert.False(t, sps.Valid)
		})
	}
}

func Benchmark_SPSDecode(b *testing.B) {
	spsstr := "QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3ACQgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC"

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			sps := &H265RawSPS{}
			_ = sps.DecodeString(spsstr)
		}
	})
}
