// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 带 tiles、range 扩展和 SCC 扩展的 PPS
const testPPSExt = "RAFQTiWimCaChYhzIWQWkmQtamg="

func TestH265RawPPS_DecodeString(t *testing.T) {
	pps := &H265RawPPS{}
	if !assert.NoError(t, pps.DecodeString(testPPSExt)) {
		return
	}
	assert.True(t, pps.Valid)
	assert.Equal(t, uint8(1), pps.Pps_pic_parameter_set_id)
	assert.Equal(t, uint8(0), pps.Pps_seq_parameter_set_id)
	assert.Equal(t, uint8(1), pps.Sign_data_hiding_enabled_flag)
	assert.Equal(t, uint8(2), pps.Num_ref_idx_l0_default_active_minus1)
	assert.Equal(t, int8(-4), pps.Init_qp_minus26)
	assert.Equal(t, uint8(1), pps.Diff_cu_qp_delta_depth)
	assert.Equal(t, int8(-2), pps.Pps_cb_qp_offset)
	assert.Equal(t, int8(3), pps.Pps_cr_qp_offset)

	t.Run("tiles", func(t *testing.T) {
		assert.Equal(t, uint8(1), pps.Tiles_enabled_flag)
		assert.Equal(t, uint8(2), pps.Num_tile_columns_minus1)
		assert.Equal(t, uint8(1), pps.Num_tile_rows_minus1)
		assert.Equal(t, uint8(0), pps.Uniform_spacing_flag)
		assert.Equal(t, []uint16{9, 10}, pps.Column_width_minus1[:2])
		assert.Equal(t, uint16(7), pps.Row_height_minus1[0])
		assert.Equal(t, uint8(0), pps.Loop_filter_across_tiles_enabled_flag)
	})

	t.Run("deblocking", func(t *testing.T) {
		assert.Equal(t, uint8(1), pps.Pps_loop_filter_across_slices_enabled_flag)
		assert.Equal(t, uint8(1), pps.Deblocking_filter_override_enabled_flag)
		assert.Equal(t, int8(-1), pps.Pps_beta_offset_div2)
		assert.Equal(t, int8(2), pps.Pps_tc_offset_div2)
	})

	t.Run("range_extension", func(t *testing.T) {
		assert.Equal(t, uint8(1), pps.Pps_range_extension_flag)
		assert.Equal(t, uint8(1), pps.Log2_max_transform_skip_block_size_minus2)
		assert.Equal(t, uint8(1), pps.Cross_component_prediction_enabled_flag)
		assert.Equal(t, uint8(1), pps.Chroma_qp_offset_list_enabled_flag)
		assert.Equal(t, uint8(1), pps.Chroma_qp_offset_list_len_minus1)
		assert.Equal(t, []int8{1, 2}, pps.Cb_qp_offset_list[:2])
		assert.Equal(t, []int8{-1, -2}, pps.Cr_qp_offset_list[:2])
		assert.Equal(t, uint8(1), pps.Log2_sao_offset_scale_chroma)
	})

	t.Run("scc_extension", func(t *testing.T) {
		assert.Equal(t, uint8(1), pps.Pps_scc_extension_flag)
		assert.Equal(t, uint8(1), pps.Pps_curr_pic_ref_enabled_flag)
		assert.Equal(t, uint8(1), pps.Residual_adaptive_colour_transform_enabled_flag)
		assert.Equal(t, int8(0), pps.Pps_act_y_qp_offset_plus5)
		assert.Equal(t, int8(1), pps.Pps_act_cb_qp_offset_plus5)
		assert.Equal(t, int8(-1), pps.Pps_act_cr_qp_offset_plus3)
		assert.Equal(t, uint8(0), pps.Pps_palette_predictor_initializers_present_flag)
	})
}

func TestH265RawPPS_Link(t *testing.T) {
	sps := &H265RawSPS{}
	if !assert.NoError(t, sps.DecodeString("QgEBBAgAAAMAkAAAAwAAAwB7oAPAgBEHy5ZXkk2b6/tgKJA=")) {
		return
	}
	pps := &H265RawPPS{}
	if !assert.NoError(t, pps.DecodeString(testPPSExt)) {
		return
	}

	assert.NoError(t, pps.Link(sps))
	assert.Equal(t, 30, pps.PicWidthInCtbsY)
	assert.Equal(t, 17, pps.PicHeightInCtbsY)
	assert.Same(t, sps, pps.Sps)

	assert.Error(t, pps.Link(nil))
	other := *sps
	other.Sps_seq_parameter_set_id = 3
	assert.Error(t, pps.Link(&other))
}

func TestH265RawPPS_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"sps", []byte{0x42, 0x01, 0x01, 0x01, 0x60}},
		{"truncated", []byte{0x44, 0x01, 0x50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pps := &H265RawPPS{}
			assert.Error(t, pps.Decode(tt.data))
			assert.False(t, pps.Valid)
		})
	}
}
