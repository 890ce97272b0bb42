// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
//
// Translate from FFmpeg cbs_h265.h cbs_h265_syntax_template.c
//
package hevc

import (
	"encoding/base64"
	"runtime/debug"

	"github.com/cnotch/hevcparser/utils"
	"github.com/cnotch/hevcparser/utils/bits"
	"github.com/pkg/errors"
)

// H265RawPPS 图像参数集
type H265RawPPS struct {
	Nal_unit_header H265RawNALUnitHeader

	Pps_pic_parameter_set_id uint8
	Pps_seq_parameter_set_id uint8

	Dependent_slice_segments_enabled_flag uint8
	Output_flag_present_flag              uint8
	Num_extra_slice_header_bits           uint8
	Sign_data_hiding_enabled_flag         uint8
	Cabac_init_present_flag               uint8

	Num_ref_idx_l0_default_active_minus1 uint8
	Num_ref_idx_l1_default_active_minus1 uint8

	Init_qp_minus26 int8

	Constrained_intra_pred_flag uint8
	Transform_skip_enabled_flag uint8
	Cu_qp_delta_enabled_flag    uint8
	Diff_cu_qp_delta_depth      uint8

	Pps_cb_qp_offset                         int8
	Pps_cr_qp_offset                         int8
	Pps_slice_chroma_qp_offsets_present_flag uint8

	Weighted_pred_flag   uint8
	Weighted_bipred_flag uint8

	Transquant_bypass_enabled_flag   uint8
	Tiles_enabled_flag               uint8
	Entropy_coding_sync_enabled_flag uint8

	Num_tile_columns_minus1               uint8
	Num_tile_rows_minus1                  uint8
	Uniform_spacing_flag                  uint8
	Column_width_minus1                   [HEVC_MAX_TILE_COLUMNS]uint16
	Row_height_minus1                     [HEVC_MAX_TILE_ROWS]uint16
	Loop_filter_across_tiles_enabled_flag uint8

	Pps_loop_filter_across_slices_enabled_flag uint8
	Deblocking_filter_control_present_flag     uint8
	Deblocking_filter_override_enabled_flag    uint8
	Pps_deblocking_filter_disabled_flag        uint8
	Pps_beta_offset_div2                       int8
	Pps_tc_offset_div2                         int8

	Pps_scaling_list_data_present_flag uint8
	Scaling_list                       *H265RawScalingList

	Lists_modification_present_flag             uint8
	Log2_parallel_merge_level_minus2            uint8
	Slice_segment_header_extension_present_flag uint8

	Pps_extension_present_flag    uint8
	Pps_range_extension_flag      uint8
	Pps_multilayer_extension_flag uint8
	Pps_3d_extension_flag         uint8
	Pps_scc_extension_flag        uint8
	Pps_extension_4bits           uint8

	// Range extension.
	Log2_max_transform_skip_block_size_minus2 uint8
	Cross_component_prediction_enabled_flag   uint8
	Chroma_qp_offset_list_enabled_flag        uint8
	Diff_cu_chroma_qp_offset_depth            uint8
	Chroma_qp_offset_list_len_minus1          uint8
	Cb_qp_offset_list                         [HEVC_MAX_CHROMA_QP_OFFSET_LIST]int8
	Cr_qp_offset_list                         [HEVC_MAX_CHROMA_QP_OFFSET_LIST]int8
	Log2_sao_offset_scale_luma                uint8
	Log2_sao_offset_scale_chroma              uint8

	// Screen content coding extension.
	Pps_curr_pic_ref_enabled_flag                   uint8
	Residual_adaptive_colour_transform_enabled_flag uint8
	Pps_slice_act_qp_offsets_present_flag           uint8
	Pps_act_y_qp_offset_plus5                       int8
	Pps_act_cb_qp_offset_plus5                      int8
	Pps_act_cr_qp_offset_plus3                      int8

	Pps_palette_predictor_initializers_present_flag uint8
	Pps_num_palette_predictor_initializers          uint8
	Monochrome_palette_flag                         uint8
	Luma_bit_depth_entry_minus8                     uint8
	Chroma_bit_depth_entry_minus8                   uint8
	Pps_palette_predictor_initializers              [3][HEVC_MAX_PALETTE_PREDICTOR_SIZE]uint16

	// 以下为链接 SPS 后的推导值
	PicWidthInCtbsY  int
	PicHeightInCtbsY int

	// Sps 关联的序列参数集，可为 nil
	Sps *H265RawSPS
	// Valid 解码成功后置位
	Valid bool
}

// DecodeString 从 base64 字串解码 pps NAL
func (pps *H265RawPPS) DecodeString(b64 string) error {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return err
	}
	return pps.Decode(data)
}

// Decode 从字节序列中解码 pps NAL，可以带起始码
func (pps *H265RawPPS) Decode(data []byte) (err error) {
	*pps = H265RawPPS{}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("RawPPS decode panic；r = %v \n %s", r, debug.Stack())
			pps.Valid = false
		}
	}()

	ppsWEB := utils.RemoveH264or5EmulationBytes(data)
	if len(ppsWEB) < 3 {
		return errors.New("the data is not enough")
	}

	r := bits.NewReader(ppsWEB)
	if err = pps.Nal_unit_header.decode(r); err != nil {
		return
	}

	if pps.Nal_unit_header.Nal_unit_type != NalPps {
		return errors.Errorf("nal unit type %d is not pps", pps.Nal_unit_header.Nal_unit_type)
	}

	pps.Pps_pic_parameter_set_id = r.ReadUe8()
	if pps.Pps_pic_parameter_set_id >= HEVC_MAX_PPS_COUNT {
		return errors.Errorf("invalid stream: pps id %d out of range", pps.Pps_pic_parameter_set_id)
	}
	pps.Pps_seq_parameter_set_id = r.ReadUe8()
	if pps.Pps_seq_parameter_set_id >= HEVC_MAX_SPS_COUNT {
		return errors.Errorf("invalid stream: sps id %d out of range", pps.Pps_seq_parameter_set_id)
	}

	pps.Dependent_slice_segments_enabled_flag = r.ReadBit()
	pps.Output_flag_present_flag = r.ReadBit()
	pps.Num_extra_slice_header_bits = r.ReadUint8(3)
	pps.Sign_data_hiding_enabled_flag = r.ReadBit()
	pps.Cabac_init_present_flag = r.ReadBit()

	pps.Num_ref_idx_l0_default_active_minus1 = r.ReadUe8()
	pps.Num_ref_idx_l1_default_active_minus1 = r.ReadUe8()

	pps.Init_qp_minus26 = r.ReadSe8()

	pps.Constrained_intra_pred_flag = r.ReadBit()
	pps.Transform_skip_enabled_flag = r.ReadBit()
	pps.Cu_qp_delta_enabled_flag = r.ReadBit()
	if pps.Cu_qp_delta_enabled_flag == 1 {
		pps.Diff_cu_qp_delta_depth = r.ReadUe8()
	}

	pps.Pps_cb_qp_offset = r.ReadSe8()
	pps.Pps_cr_qp_offset = r.ReadSe8()
	pps.Pps_slice_chroma_qp_offsets_present_flag = r.ReadBit()

	pps.Weighted_pred_flag = r.ReadBit()
	pps.Weighted_bipred_flag = r.ReadBit()

	pps.Transquant_bypass_enabled_flag = r.ReadBit()
	pps.Tiles_enabled_flag = r.ReadBit()
	pps.Entropy_coding_sync_enabled_flag = r.ReadBit()

	pps.Uniform_spacing_flag = 1
	pps.Loop_filter_across_tiles_enabled_flag = 1
	if pps.Tiles_enabled_flag == 1 {
		pps.Num_tile_columns_minus1 = r.ReadUe8()
		pps.Num_tile_rows_minus1 = r.ReadUe8()
		if int(pps.Num_tile_columns_minus1) >= HEVC_MAX_TILE_COLUMNS ||
			int(pps.Num_tile_rows_minus1) >= HEVC_MAX_TILE_ROWS {
			return errors.Errorf("invalid stream: tiles %dx%d out of range",
				pps.Num_tile_columns_minus1+1, pps.Num_tile_rows_minus1+1)
		}
		pps.Uniform_spacing_flag = r.ReadBit()
		if pps.Uniform_spacing_flag == 0 {
			for i := 0; i < int(pps.Num_tile_columns_minus1); i++ {
				pps.Column_width_minus1[i] = r.ReadUe16()
			}
			for i := 0; i < int(pps.Num_tile_rows_minus1); i++ {
				pps.Row_height_minus1[i] = r.ReadUe16()
			}
		}
		pps.Loop_filter_across_tiles_enabled_flag = r.ReadBit()
	}

	pps.Pps_loop_filter_across_slices_enabled_flag = r.ReadBit()
	pps.Deblocking_filter_control_present_flag = r.ReadBit()
	if pps.Deblocking_filter_control_present_flag == 1 {
		pps.Deblocking_filter_override_enabled_flag = r.ReadBit()
		pps.Pps_deblocking_filter_disabled_flag = r.ReadBit()
		if pps.Pps_deblocking_filter_disabled_flag == 0 {
			pps.Pps_beta_offset_div2 = r.ReadSe8()
			pps.Pps_tc_offset_div2 = r.ReadSe8()
		}
	}

	pps.Pps_scaling_list_data_present_flag = r.ReadBit()
	if pps.Pps_scaling_list_data_present_flag == 1 {
		pps.Scaling_list = new(H265RawScalingList)
		if err = pps.Scaling_list.decode(r); err != nil {
			return
		}
	}

	pps.Lists_modification_present_flag = r.ReadBit()
	pps.Log2_parallel_merge_level_minus2 = r.ReadUe8()
	pps.Slice_segment_header_extension_present_flag = r.ReadBit()

	pps.Pps_extension_present_flag = r.ReadBit()
	if pps.Pps_extension_present_flag == 1 {
		pps.Pps_range_extension_flag = r.ReadBit()
		pps.Pps_multilayer_extension_flag = r.ReadBit()
		pps.Pps_3d_extension_flag = r.ReadBit()
		pps.Pps_scc_extension_flag = r.ReadBit()
		pps.Pps_extension_4bits = r.ReadUint8(4)
	}

	if pps.Pps_range_extension_flag == 1 {
		if err = pps.decodeRangeExtension(r); err != nil {
			return
		}
	}
	// 多层和 3D 扩展不解析，其后的 SCC 扩展无法定位
	if pps.Pps_multilayer_extension_flag == 0 && pps.Pps_3d_extension_flag == 0 &&
		pps.Pps_scc_extension_flag == 1 {
		pps.decodeSccExtension(r)
	}

	pps.Valid = true
	return
}

func (pps *H265RawPPS) decodeRangeExtension(r *bits.Reader) error {
	if pps.Transform_skip_enabled_flag == 1 {
		pps.Log2_max_transform_skip_block_size_minus2 = r.ReadUe8()
	}
	pps.Cross_component_prediction_enabled_flag = r.ReadBit()
	pps.Chroma_qp_offset_list_enabled_flag = r.ReadBit()
	if pps.Chroma_qp_offset_list_enabled_flag == 1 {
		pps.Diff_cu_chroma_qp_offset_depth = r.ReadUe8()
		pps.Chroma_qp_offset_list_len_minus1 = r.ReadUe8()
		if int(pps.Chroma_qp_offset_list_len_minus1) >= HEVC_MAX_CHROMA_QP_OFFSET_LIST {
			return errors.Errorf("invalid stream: chroma_qp_offset_list_len_minus1 %d out of range",
				pps.Chroma_qp_offset_list_len_minus1)
		}
		for i := 0; i <= int(pps.Chroma_qp_offset_list_len_minus1); i++ {
			pps.Cb_qp_offset_list[i] = r.ReadSe8()
			pps.Cr_qp_offset_list[i] = r.ReadSe8()
		}
	}
	pps.Log2_sao_offset_scale_luma = r.ReadUe8()
	pps.Log2_sao_offset_scale_chroma = r.ReadUe8()
	return nil
}

func (pps *H265RawPPS) decodeSccExtension(r *bits.Reader) {
	pps.Pps_curr_pic_ref_enabled_flag = r.ReadBit()
	pps.Residual_adaptive_colour_transform_enabled_flag = r.ReadBit()
	if pps.Residual_adaptive_colour_transform_enabled_flag == 1 {
		pps.Pps_slice_act_qp_offsets_present_flag = r.ReadBit()
		pps.Pps_act_y_qp_offset_plus5 = r.ReadSe8()
		pps.Pps_act_cb_qp_offset_plus5 = r.ReadSe8()
		pps.Pps_act_cr_qp_offset_plus3 = r.ReadSe8()
	}

	pps.Pps_palette_predictor_initializers_present_flag = r.ReadBit()
	if pps.Pps_palette_predictor_initializers_present_flag == 1 {
		pps.Pps_num_palette_predictor_initializers = r.ReadUe8()
		if pps.Pps_num_palette_predictor_initializers > 0 {
			pps.Monochrome_palette_flag = r.ReadBit()
			pps.Luma_bit_depth_entry_minus8 = r.ReadUe8()
			numComps := 3
			if pps.Monochrome_palette_flag == 1 {
				numComps = 1
			} else {
				pps.Chroma_bit_depth_entry_minus8 = r.ReadUe8()
			}
			for comp := 0; comp < numComps; comp++ {
				bitDepth := int(pps.Luma_bit_depth_entry_minus8) + 8
				if comp > 0 {
					bitDepth = int(pps.Chroma_bit_depth_entry_minus8) + 8
				}
				for i := 0; i < int(pps.Pps_num_palette_predictor_initializers); i++ {
					pps.Pps_palette_predictor_initializers[comp][i] = r.ReadUint16(bitDepth)
				}
			}
		}
	}
}

// Link 关联序列参数集并计算以 CTB 为单位的图像尺寸
func (pps *H265RawPPS) Link(sps *H265RawSPS) error {
	if sps == nil {
		return errors.New("sps is nil")
	}
	if sps.Sps_seq_parameter_set_id != pps.Pps_seq_parameter_set_id {
		return errors.Errorf("pps %d refers to sps %d, got sps %d",
			pps.Pps_pic_parameter_set_id, pps.Pps_seq_parameter_set_id, sps.Sps_seq_parameter_set_id)
	}
	ctbSize := sps.CtbSizeY()
	pps.PicWidthInCtbsY = (int(sps.Pic_width_in_luma_samples) + ctbSize - 1) / ctbSize
	pps.PicHeightInCtbsY = (int(sps.Pic_height_in_luma_samples) + ctbSize - 1) / ctbSize
	pps.Sps = sps
	return nil
}
