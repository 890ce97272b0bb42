// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoder

import (
	"bytes"

	"github.com/cnotch/hevcparser/av/codec/hevc"
)

// 比较只覆盖会影响后端状态的字段；
// 上级参数集指针、缩放列表、参考图像集和扩展内容不参与比较

func vpsEqual(a, b *hevc.H265RawVPS) bool {
	return a.Vps_video_parameter_set_id == b.Vps_video_parameter_set_id &&
		a.Vps_base_layer_internal_flag == b.Vps_base_layer_internal_flag &&
		a.Vps_base_layer_available_flag == b.Vps_base_layer_available_flag &&
		a.Vps_max_layers_minus1 == b.Vps_max_layers_minus1 &&
		a.Vps_max_sub_layers_minus1 == b.Vps_max_sub_layers_minus1 &&
		a.Vps_temporal_id_nesting_flag == b.Vps_temporal_id_nesting_flag &&
		a.Vps_sub_layer_ordering_info_present_flag == b.Vps_sub_layer_ordering_info_present_flag &&
		a.Vps_max_layer_id == b.Vps_max_layer_id &&
		a.Vps_num_layer_sets_minus1 == b.Vps_num_layer_sets_minus1 &&
		a.Vps_timing_info_present_flag == b.Vps_timing_info_present_flag &&
		a.Vps_num_units_in_tick == b.Vps_num_units_in_tick &&
		a.Vps_time_scale == b.Vps_time_scale &&
		a.Vps_poc_proportional_to_timing_flag == b.Vps_poc_proportional_to_timing_flag &&
		a.Vps_num_ticks_poc_diff_one_minus1 == b.Vps_num_ticks_poc_diff_one_minus1 &&
		a.Vps_num_hrd_parameters == b.Vps_num_hrd_parameters &&
		uint16sEqual(a.Hrd_layer_set_idx, b.Hrd_layer_set_idx) &&
		bytes.Equal(a.Cprms_present_flag, b.Cprms_present_flag) &&
		a.Vps_extension_flag == b.Vps_extension_flag &&
		a.Valid == b.Valid
}

func spsEqual(a, b *hevc.H265RawSPS) bool {
	if a.Sps_seq_parameter_set_id != b.Sps_seq_parameter_set_id ||
		a.Sps_max_sub_layers_minus1 != b.Sps_max_sub_layers_minus1 ||
		a.Sps_temporal_id_nesting_flag != b.Sps_temporal_id_nesting_flag ||
		a.Chroma_format_idc != b.Chroma_format_idc ||
		a.Separate_colour_plane_flag != b.Separate_colour_plane_flag ||
		a.Pic_width_in_luma_samples != b.Pic_width_in_luma_samples ||
		a.Pic_height_in_luma_samples != b.Pic_height_in_luma_samples {
		return false
	}

	if a.Conformance_window_flag != b.Conformance_window_flag ||
		a.Conf_win_left_offset != b.Conf_win_left_offset ||
		a.Conf_win_right_offset != b.Conf_win_right_offset ||
		a.Conf_win_top_offset != b.Conf_win_top_offset ||
		a.Conf_win_bottom_offset != b.Conf_win_bottom_offset {
		return false
	}

	if a.Bit_depth_luma_minus8 != b.Bit_depth_luma_minus8 ||
		a.Bit_depth_chroma_minus8 != b.Bit_depth_chroma_minus8 ||
		a.Log2_max_pic_order_cnt_lsb_minus4 != b.Log2_max_pic_order_cnt_lsb_minus4 ||
		a.Sps_sub_layer_ordering_info_present_flag != b.Sps_sub_layer_ordering_info_present_flag ||
		a.Sps_max_dec_pic_buffering_minus1 != b.Sps_max_dec_pic_buffering_minus1 ||
		a.Sps_max_num_reorder_pics != b.Sps_max_num_reorder_pics ||
		a.Sps_max_latency_increase_plus1 != b.Sps_max_latency_increase_plus1 {
		return false
	}

	if a.Log2_min_luma_coding_block_size_minus3 != b.Log2_min_luma_coding_block_size_minus3 ||
		a.Log2_diff_max_min_luma_coding_block_size != b.Log2_diff_max_min_luma_coding_block_size ||
		a.Log2_min_luma_transform_block_size_minus2 != b.Log2_min_luma_transform_block_size_minus2 ||
		a.Log2_diff_max_min_luma_transform_block_size != b.Log2_diff_max_min_luma_transform_block_size ||
		a.Max_transform_hierarchy_depth_inter != b.Max_transform_hierarchy_depth_inter ||
		a.Max_transform_hierarchy_depth_intra != b.Max_transform_hierarchy_depth_intra ||
		a.Scaling_list_enabled_flag != b.Scaling_list_enabled_flag ||
		a.Sps_scaling_list_data_present_flag != b.Sps_scaling_list_data_present_flag ||
		a.Amp_enabled_flag != b.Amp_enabled_flag ||
		a.Sample_adaptive_offset_enabled_flag != b.Sample_adaptive_offset_enabled_flag {
		return false
	}

	if a.Pcm_enabled_flag != b.Pcm_enabled_flag ||
		a.Pcm_sample_bit_depth_luma_minus1 != b.Pcm_sample_bit_depth_luma_minus1 ||
		a.Pcm_sample_bit_depth_chroma_minus1 != b.Pcm_sample_bit_depth_chroma_minus1 ||
		a.Log2_min_pcm_luma_coding_block_size_minus3 != b.Log2_min_pcm_luma_coding_block_size_minus3 ||
		a.Log2_diff_max_min_pcm_luma_coding_block_size != b.Log2_diff_max_min_pcm_luma_coding_block_size ||
		a.Pcm_loop_filter_disabled_flag != b.Pcm_loop_filter_disabled_flag {
		return false
	}

	if a.Num_short_term_ref_pic_sets != b.Num_short_term_ref_pic_sets ||
		a.Long_term_ref_pics_present_flag != b.Long_term_ref_pics_present_flag ||
		a.Num_long_term_ref_pics_sps != b.Num_long_term_ref_pics_sps ||
		a.Sps_temporal_mvp_enabled_flag != b.Sps_temporal_mvp_enabled_flag ||
		a.Strong_intra_smoothing_enabled_flag != b.Strong_intra_smoothing_enabled_flag ||
		a.Vui_parameters_present_flag != b.Vui_parameters_present_flag {
		return false
	}

	if a.Sps_extension_present_flag != b.Sps_extension_present_flag ||
		a.Sps_range_extension_flag != b.Sps_range_extension_flag ||
		a.Sps_multilayer_extension_flag != b.Sps_multilayer_extension_flag ||
		a.Sps_3d_extension_flag != b.Sps_3d_extension_flag ||
		a.Sps_scc_extension_flag != b.Sps_scc_extension_flag ||
		a.Sps_extension_4bits != b.Sps_extension_4bits {
		return false
	}

	// 派生值
	return a.ChromaArrayType == b.ChromaArrayType &&
		a.CropRectWidth == b.CropRectWidth &&
		a.CropRectHeight == b.CropRectHeight &&
		a.CropRectX == b.CropRectX &&
		a.CropRectY == b.CropRectY &&
		a.FpsNum == b.FpsNum &&
		a.FpsDen == b.FpsDen &&
		a.Valid == b.Valid
}

func ppsEqual(a, b *hevc.H265RawPPS) bool {
	if a.Pps_pic_parameter_set_id != b.Pps_pic_parameter_set_id ||
		a.Dependent_slice_segments_enabled_flag != b.Dependent_slice_segments_enabled_flag ||
		a.Output_flag_present_flag != b.Output_flag_present_flag ||
		a.Num_extra_slice_header_bits != b.Num_extra_slice_header_bits ||
		a.Sign_data_hiding_enabled_flag != b.Sign_data_hiding_enabled_flag ||
		a.Cabac_init_present_flag != b.Cabac_init_present_flag ||
		a.Num_ref_idx_l0_default_active_minus1 != b.Num_ref_idx_l0_default_active_minus1 ||
		a.Num_ref_idx_l1_default_active_minus1 != b.Num_ref_idx_l1_default_active_minus1 ||
		a.Init_qp_minus26 != b.Init_qp_minus26 {
		return false
	}

	if a.Constrained_intra_pred_flag != b.Constrained_intra_pred_flag ||
		a.Transform_skip_enabled_flag != b.Transform_skip_enabled_flag ||
		a.Cu_qp_delta_enabled_flag != b.Cu_qp_delta_enabled_flag ||
		a.Diff_cu_qp_delta_depth != b.Diff_cu_qp_delta_depth ||
		a.Pps_cb_qp_offset != b.Pps_cb_qp_offset ||
		a.Pps_cr_qp_offset != b.Pps_cr_qp_offset ||
		a.Pps_slice_chroma_qp_offsets_present_flag != b.Pps_slice_chroma_qp_offsets_present_flag ||
		a.Weighted_pred_flag != b.Weighted_pred_flag ||
		a.Weighted_bipred_flag != b.Weighted_bipred_flag ||
		a.Transquant_bypass_enabled_flag != b.Transquant_bypass_enabled_flag {
		return false
	}

	if a.Tiles_enabled_flag != b.Tiles_enabled_flag ||
		a.Entropy_coding_sync_enabled_flag != b.Entropy_coding_sync_enabled_flag ||
		a.Num_tile_columns_minus1 != b.Num_tile_columns_minus1 ||
		a.Num_tile_rows_minus1 != b.Num_tile_rows_minus1 ||
		a.Uniform_spacing_flag != b.Uniform_spacing_flag ||
		a.Loop_filter_across_tiles_enabled_flag != b.Loop_filter_across_tiles_enabled_flag {
		return false
	}

	if a.Pps_loop_filter_across_slices_enabled_flag != b.Pps_loop_filter_across_slices_enabled_flag ||
		a.Deblocking_filter_control_present_flag != b.Deblocking_filter_control_present_flag ||
		a.Deblocking_filter_override_enabled_flag != b.Deblocking_filter_override_enabled_flag ||
		a.Pps_deblocking_filter_disabled_flag != b.Pps_deblocking_filter_disabled_flag ||
		a.Pps_beta_offset_div2 != b.Pps_beta_offset_div2 ||
		a.Pps_tc_offset_div2 != b.Pps_tc_offset_div2 {
		return false
	}

	return a.Pps_scaling_list_data_present_flag == b.Pps_scaling_list_data_present_flag &&
		a.Lists_modification_present_flag == b.Lists_modification_present_flag &&
		a.Log2_parallel_merge_level_minus2 == b.Log2_parallel_merge_level_minus2 &&
		a.Slice_segment_header_extension_present_flag == b.Slice_segment_header_extension_present_flag &&
		a.Pps_extension_present_flag == b.Pps_extension_present_flag &&
		a.Pps_range_extension_flag == b.Pps_range_extension_flag &&
		a.Pps_multilayer_extension_flag == b.Pps_multilayer_extension_flag &&
		a.Pps_3d_extension_flag == b.Pps_3d_extension_flag &&
		a.Pps_scc_extension_flag == b.Pps_scc_extension_flag &&
		a.Pps_extension_4bits == b.Pps_extension_4bits &&
		a.PicWidthInCtbsY == b.PicWidthInCtbsY &&
		a.PicHeightInCtbsY == b.PicHeightInCtbsY &&
		a.Valid == b.Valid
}

func uint16sEqual(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
