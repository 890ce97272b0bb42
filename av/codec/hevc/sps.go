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

// H265RawScalingList scaling_list_data( )
type H265RawScalingList struct {
	Scaling_list_pred_mode_flag       [4][6]uint8
	Scaling_list_pred_matrix_id_delta [4][6]uint8
	Scaling_list_dc_coef_minus8       [4][6]int16
	Scaling_list_delta_coeff          [4][6][64]int8
}

func (sl *H265RawScalingList) decode(r *bits.Reader) error {
	for sizeId := 0; sizeId < 4; sizeId++ {
		step := 1 // (sizeId == 3 ? 3 : 1)
		if sizeId == 3 {
			step = 3
		}
		for matrixId := 0; matrixId < 6; matrixId += step {
			sl.Scaling_list_pred_mode_flag[sizeId][matrixId] = r.ReadBit()
			if sl.Scaling_list_pred_mode_flag[sizeId][matrixId] == 0 {
				sl.Scaling_list_pred_matrix_id_delta[sizeId][matrixId] = r.ReadUe8()
			} else {
				n := 1 << (4 + (sizeId << 1))
				if n > 64 {
					n = 64
				}
				if sizeId > 1 {
					sl.Scaling_list_dc_coef_minus8[sizeId-2][matrixId] = r.ReadSe16()
				}
				for i := 0; i < n; i++ {
					sl.Scaling_list_delta_coeff[sizeId][matrixId][i] = r.ReadSe8()
				}
			}
		}
	}
	return nil
}

// H265RawVUI vui_parameters( )
type H265RawVUI struct {
	Aspect_ratio_info_present_flag uint8
	Aspect_ratio_idc               uint8
	Sar_width                      uint16
	Sar_height                     uint16

	Overscan_info_present_flag uint8
	Overscan_appropriate_flag  uint8

	Video_signal_type_present_flag  uint8
	Video_format                    uint8
	Video_full_range_flag           uint8
	Colour_description_present_flag uint8
	Colour_primaries                uint8
	Transfer_characteristics        uint8
	Matrix_coefficients             uint8

	Chroma_loc_info_present_flag        uint8
	Chroma_sample_loc_type_top_field    uint8
	Chroma_sample_loc_type_bottom_field uint8

	Neutral_chroma_indication_flag uint8
	Field_seq_flag                 uint8
	Frame_field_info_present_flag  uint8

	Default_display_window_flag uint8
	Def_disp_win_left_offset    uint16
	Def_disp_win_right_offset   uint16
	Def_disp_win_top_offset     uint16
	Def_disp_win_bottom_offset  uint16

	Vui_timing_info_present_flag        uint8
	Vui_num_units_in_tick               uint32
	Vui_time_scale                      uint32
	Vui_poc_proportional_to_timing_flag uint8
	Vui_num_ticks_poc_diff_one_minus1   uint32
	Vui_hrd_parameters_present_flag     uint8
	Hrd_parameters                      H265RawHRDParameters

	Bitstream_restriction_flag              uint8
	Tiles_fixed_structure_flag              uint8
	Motion_vectors_over_pic_boundaries_flag uint8
	Restricted_ref_pic_lists_flag           uint8
	Min_spatial_segmentation_idc            uint16
	Max_bytes_per_pic_denom                 uint8
	Max_bits_per_min_cu_denom               uint8
	Log2_max_mv_length_horizontal           uint8
	Log2_max_mv_length_vertical             uint8
}

func (vui *H265RawVUI) setDefault() {
	vui.Aspect_ratio_idc = 0

	vui.Video_format = 5
	vui.Video_full_range_flag = 0
	vui.Colour_primaries = 2
	vui.Transfer_characteristics = 2
	vui.Matrix_coefficients = 2

	vui.Chroma_sample_loc_type_top_field = 0
	vui.Chroma_sample_loc_type_bottom_field = 0

	vui.setRestrictionDefault()
}

func (vui *H265RawVUI) setRestrictionDefault() {
	vui.Tiles_fixed_structure_flag = 0
	vui.Motion_vectors_over_pic_boundaries_flag = 1
	vui.Min_spatial_segmentation_idc = 0
	vui.Max_bytes_per_pic_denom = 2
	vui.Max_bits_per_min_cu_denom = 1
	vui.Log2_max_mv_length_horizontal = 15
	vui.Log2_max_mv_length_vertical = 15
}

func (vui *H265RawVUI) decode(r *bits.Reader, sps *H265RawSPS) error {
	vui.Aspect_ratio_info_present_flag = r.ReadBit()
	if vui.Aspect_ratio_info_present_flag == 1 {
		vui.Aspect_ratio_idc = r.ReadUint8(8)
		if vui.Aspect_ratio_idc == 255 {
			vui.Sar_width = r.ReadUint16(16)
			vui.Sar_height = r.ReadUint16(16)
		}
	} else {
		vui.Aspect_ratio_idc = 0
	}

	vui.Overscan_info_present_flag = r.ReadBit()
	if vui.Overscan_info_present_flag == 1 {
		vui.Overscan_appropriate_flag = r.ReadBit()
	}

	vui.Video_signal_type_present_flag = r.ReadBit()
	if vui.Video_signal_type_present_flag == 1 {
		vui.Video_format = r.ReadUint8(3)
		vui.Video_full_range_flag = r.ReadBit()
		vui.Colour_description_present_flag = r.ReadBit()
		if vui.Colour_description_present_flag == 1 {
			vui.Colour_primaries = r.ReadUint8(8)
			vui.Transfer_characteristics = r.ReadUint8(8)
			vui.Matrix_coefficients = r.ReadUint8(8)
		} else {
			vui.Colour_primaries = 2
			vui.Transfer_characteristics = 2
			vui.Matrix_coefficients = 2
		}
	} else {
		vui.Video_format = 5
		vui.Video_full_range_flag = 0
		vui.Colour_primaries = 2
		vui.Transfer_characteristics = 2
		vui.Matrix_coefficients = 2
	}

	vui.Chroma_loc_info_present_flag = r.ReadBit()
	if vui.Chroma_loc_info_present_flag == 1 {
		vui.Chroma_sample_loc_type_top_field = r.ReadUe8()
		vui.Chroma_sample_loc_type_bottom_field = r.ReadUe8()
	} else {
		vui.Chroma_sample_loc_type_top_field = 0
		vui.Chroma_sample_loc_type_bottom_field = 0
	}

	vui.Neutral_chroma_indication_flag = r.ReadBit()
	vui.Field_seq_flag = r.ReadBit()
	vui.Frame_field_info_present_flag = r.ReadBit()

	vui.Default_display_window_flag = r.ReadBit()
	if vui.Default_display_window_flag == 1 {
		vui.Def_disp_win_left_offset = r.ReadUe16()
		vui.Def_disp_win_right_offset = r.ReadUe16()
		vui.Def_disp_win_top_offset = r.ReadUe16()
		vui.Def_disp_win_bottom_offset = r.ReadUe16()
	}

	vui.Vui_timing_info_present_flag = r.ReadBit()
	if vui.Vui_timing_info_present_flag == 1 {
		vui.Vui_num_units_in_tick = r.ReadUint32(32)
		vui.Vui_time_scale = r.ReadUint32(32)
		vui.Vui_poc_proportional_to_timing_flag = r.ReadBit()
		if vui.Vui_poc_proportional_to_timing_flag == 1 {
			vui.Vui_num_ticks_poc_diff_one_minus1 = r.ReadUe()
		}

		vui.Vui_hrd_parameters_present_flag = r.ReadBit()
		if vui.Vui_hrd_parameters_present_flag == 1 {
			if err := vui.Hrd_parameters.decode(r, true, int(sps.Sps_max_sub_layers_minus1)); err != nil {
				return err
			}
		}
	}

	vui.Bitstream_restriction_flag = r.ReadBit()
	if vui.Bitstream_restriction_flag == 1 {
		vui.Tiles_fixed_structure_flag = r.ReadBit()
		vui.Motion_vectors_over_pic_boundaries_flag = r.ReadBit()
		vui.Restricted_ref_pic_lists_flag = r.ReadBit()
		vui.Min_spatial_segmentation_idc = r.ReadUe16()
		vui.Max_bytes_per_pic_denom = r.ReadUe8()
		vui.Max_bits_per_min_cu_denom = r.ReadUe8()
		vui.Log2_max_mv_length_horizontal = r.ReadUe8()
		vui.Log2_max_mv_length_vertical = r.ReadUe8()
	} else {
		vui.setRestrictionDefault()
	}

	return nil
}

// H265RawSTRefPicSet st_ref_pic_set( )，帧间预测形式会被还原为增量形式保存
type H265RawSTRefPicSet struct {
	Inter_ref_pic_set_prediction_flag uint8

	Delta_idx_minus1     uint8
	Delta_rps_sign       uint8
	Abs_delta_rps_minus1 uint16

	Used_by_curr_pic_flag [HEVC_MAX_REFS + 1]uint8
	Use_delta_flag        [HEVC_MAX_REFS + 1]uint8

	Num_negative_pics        uint8
	Num_positive_pics        uint8
	Delta_poc_s0_minus1      [HEVC_MAX_REFS]uint16
	Used_by_curr_pic_s0_flag [HEVC_MAX_REFS]uint8
	Delta_poc_s1_minus1      [HEVC_MAX_REFS]uint16
	Used_by_curr_pic_s1_flag [HEVC_MAX_REFS]uint8
}

// NumDeltaPocs 参考集中的图像总数
func (ps *H265RawSTRefPicSet) NumDeltaPocs() int {
	return int(ps.Num_negative_pics) + int(ps.Num_positive_pics)
}

func (ps *H265RawSTRefPicSet) decode(r *bits.Reader, stRpsIdx int, sps *H265RawSPS) error {
	if stRpsIdx != 0 {
		ps.Inter_ref_pic_set_prediction_flag = r.ReadBit()
	} else {
		ps.Inter_ref_pic_set_prediction_flag = 0
	}

	if ps.Inter_ref_pic_set_prediction_flag == 0 {
		ps.Num_negative_pics = r.ReadUe8()
		ps.Num_positive_pics = r.ReadUe8()
		if ps.NumDeltaPocs() >= HEVC_MAX_DPB_SIZE {
			return errors.Errorf("invalid stream: short-term ref pic set %d contains too many pictures", stRpsIdx)
		}

		for i := 0; i < int(ps.Num_negative_pics); i++ {
			ps.Delta_poc_s0_minus1[i] = r.ReadUe16()
			ps.Used_by_curr_pic_s0_flag[i] = r.ReadBit()
		}

		for i := 0; i < int(ps.Num_positive_pics); i++ {
			ps.Delta_poc_s1_minus1[i] = r.ReadUe16()
			ps.Used_by_curr_pic_s1_flag[i] = r.ReadBit()
		}
		return nil
	}

	if stRpsIdx == int(sps.Num_short_term_ref_pic_sets) {
		ps.Delta_idx_minus1 = r.ReadUe8()
	} else {
		ps.Delta_idx_minus1 = 0
	}

	refRpsIdx := stRpsIdx - (int(ps.Delta_idx_minus1) + 1)
	if refRpsIdx < 0 {
		return errors.Errorf("invalid stream: short-term ref pic set %d refers to set %d", stRpsIdx, refRpsIdx)
	}
	ref := &sps.St_ref_pic_set[refRpsIdx]
	refNeg := int(ref.Num_negative_pics)
	refPos := int(ref.Num_positive_pics)
	numDeltaPocs := refNeg + refPos

	ps.Delta_rps_sign = r.ReadBit()
	ps.Abs_delta_rps_minus1 = r.ReadUe16()
	deltaRps := (1 - 2*int(ps.Delta_rps_sign)) * (int(ps.Abs_delta_rps_minus1) + 1)

	numRefPics := 0
	for j := 0; j <= numDeltaPocs; j++ {
		ps.Used_by_curr_pic_flag[j] = r.ReadBit()
		if ps.Used_by_curr_pic_flag[j] == 0 {
			ps.Use_delta_flag[j] = r.ReadBit()
		} else {
			ps.Use_delta_flag[j] = 1
		}
		if ps.Use_delta_flag[j] == 1 {
			numRefPics++
		}
	}
	if numRefPics >= HEVC_MAX_DPB_SIZE {
		return errors.Errorf("invalid stream: short-term ref pic set %d contains too many pictures", stRpsIdx)
	}

	// 先把参考集展开为 POC 差值数组，按 7.4.8 预测，再转换回增量形式
	var refDeltaPocS0, refDeltaPocS1, deltaPocS0, deltaPocS1 [HEVC_MAX_REFS]int
	var usedS0, usedS1 [HEVC_MAX_REFS]uint8

	dPoc := 0
	for i := 0; i < refNeg; i++ {
		dPoc -= int(ref.Delta_poc_s0_minus1[i]) + 1
		refDeltaPocS0[i] = dPoc
	}
	dPoc = 0
	for i := 0; i < refPos; i++ {
		dPoc += int(ref.Delta_poc_s1_minus1[i]) + 1
		refDeltaPocS1[i] = dPoc
	}

	i := 0
	for j := refPos - 1; j >= 0; j-- {
		dPoc = refDeltaPocS1[j] + deltaRps
		if dPoc < 0 && ps.Use_delta_flag[refNeg+j] == 1 {
			deltaPocS0[i] = dPoc
			usedS0[i] = ps.Used_by_curr_pic_flag[refNeg+j]
			i++
		}
	}
	if deltaRps < 0 && ps.Use_delta_flag[numDeltaPocs] == 1 {
		deltaPocS0[i] = deltaRps
		usedS0[i] = ps.Used_by_curr_pic_flag[numDeltaPocs]
		i++
	}
	for j := 0; j < refNeg; j++ {
		dPoc = refDeltaPocS0[j] + deltaRps
		if dPoc < 0 && ps.Use_delta_flag[j] == 1 {
			deltaPocS0[i] = dPoc
			usedS0[i] = ps.Used_by_curr_pic_flag[j]
			i++
		}
	}

	ps.Num_negative_pics = uint8(i)
	for i := 0; i < int(ps.Num_negative_pics); i++ {
		if i == 0 {
			ps.Delta_poc_s0_minus1[i] = uint16(-deltaPocS0[i] - 1)
		} else {
			ps.Delta_poc_s0_minus1[i] = uint16(-(deltaPocS0[i] - deltaPocS0[i-1]) - 1)
		}
		ps.Used_by_curr_pic_s0_flag[i] = usedS0[i]
	}

	i = 0
	for j := refNeg - 1; j >= 0; j-- {
		dPoc = refDeltaPocS0[j] + deltaRps
		if dPoc > 0 && ps.Use_delta_flag[j] == 1 {
			deltaPocS1[i] = dPoc
			usedS1[i] = ps.Used_by_curr_pic_flag[j]
			i++
		}
	}
	if deltaRps > 0 && ps.Use_delta_flag[numDeltaPocs] == 1 {
		deltaPocS1[i] = deltaRps
		usedS1[i] = ps.Used_by_curr_pic_flag[numDeltaPocs]
		i++
	}
	for j := 0; j < refPos; j++ {
		dPoc = refDeltaPocS1[j] + deltaRps
		if dPoc > 0 && ps.Use_delta_flag[refNeg+j] == 1 {
			deltaPocS1[i] = dPoc
			usedS1[i] = ps.Used_by_curr_pic_flag[refNeg+j]
			i++
		}
	}

	ps.Num_positive_pics = uint8(i)
	for i := 0; i < int(ps.Num_positive_pics); i++ {
		if i == 0 {
			ps.Delta_poc_s1_minus1[i] = uint16(deltaPocS1[i] - 1)
		} else {
			ps.Delta_poc_s1_minus1[i] = uint16(deltaPocS1[i] - deltaPocS1[i-1] - 1)
		}
		ps.Used_by_curr_pic_s1_flag[i] = usedS1[i]
	}

	return nil
}

// H265RawSPS 序列参数集
type H265RawSPS struct {
	Nal_unit_header H265RawNALUnitHeader

	Sps_video_parameter_set_id uint8

	Sps_max_sub_layers_minus1    uint8
	Sps_temporal_id_nesting_flag uint8

	Profile_tier_level H265RawProfileTierLevel

	Sps_seq_parameter_set_id uint8

	Chroma_format_idc          uint8
	Separate_colour_plane_flag uint8

	Pic_width_in_luma_samples  uint16
	Pic_height_in_luma_samples uint16

	Conformance_window_flag uint8
	Conf_win_left_offset    uint16
	Conf_win_right_offset   uint16
	Conf_win_top_offset     uint16
	Conf_win_bottom_offset  uint16

	Bit_depth_luma_minus8   uint8
	Bit_depth_chroma_minus8 uint8

	Log2_max_pic_order_cnt_lsb_minus4 uint8

	Sps_sub_layer_ordering_info_present_flag uint8
	Sps_max_dec_pic_buffering_minus1         [HEVC_MAX_SUB_LAYERS]uint8
	Sps_max_num_reorder_pics                 [HEVC_MAX_SUB_LAYERS]uint8
	Sps_max_latency_increase_plus1           [HEVC_MAX_SUB_LAYERS]uint32

	Log2_min_luma_coding_block_size_minus3      uint8
	Log2_diff_max_min_luma_coding_block_size    uint8
	Log2_min_luma_transform_block_size_minus2   uint8
	Log2_diff_max_min_luma_transform_block_size uint8
	Max_transform_hierarchy_depth_inter         uint8
	Max_transform_hierarchy_depth_intra         uint8

	Scaling_list_enabled_flag          uint8
	Sps_scaling_list_data_present_flag uint8
	Scaling_list                       *H265RawScalingList

	Amp_enabled_flag                    uint8
	Sample_adaptive_offset_enabled_flag uint8

	Pcm_enabled_flag                             uint8
	Pcm_sample_bit_depth_luma_minus1             uint8
	Pcm_sample_bit_depth_chroma_minus1           uint8
	Log2_min_pcm_luma_coding_block_size_minus3   uint8
	Log2_diff_max_min_pcm_luma_coding_block_size uint8
	Pcm_loop_filter_disabled_flag                uint8

	Num_short_term_ref_pic_sets uint8
	St_ref_pic_set              []H265RawSTRefPicSet

	Long_term_ref_pics_present_flag uint8
	Num_long_term_ref_pics_sps      uint8
	Lt_ref_pic_poc_lsb_sps          [HEVC_MAX_LONG_TERM_REF_PICS]uint16
	Used_by_curr_pic_lt_sps_flag    [HEVC_MAX_LONG_TERM_REF_PICS]uint8

	Sps_temporal_mvp_enabled_flag       uint8
	Strong_intra_smoothing_enabled_flag uint8

	Vui_parameters_present_flag uint8
	Vui                         H265RawVUI

	Sps_extension_present_flag    uint8
	Sps_range_extension_flag      uint8
	Sps_multilayer_extension_flag uint8
	Sps_3d_extension_flag         uint8
	Sps_scc_extension_flag        uint8
	Sps_extension_4bits           uint8

	// Range extension.
	Transform_skip_rotation_enabled_flag    uint8
	Transform_skip_context_enabled_flag     uint8
	Implicit_rdpcm_enabled_flag             uint8
	Explicit_rdpcm_enabled_flag             uint8
	Extended_precision_processing_flag      uint8
	Intra_smoothing_disabled_flag           uint8
	High_precision_offsets_enabled_flag     uint8
	Persistent_rice_adaptation_enabled_flag uint8
	Cabac_bypass_alignment_enabled_flag     uint8

	// Multilayer extension.
	Inter_view_mv_vert_constraint_flag uint8

	// Screen content coding extension.
	Sps_curr_pic_ref_enabled_flag                   uint8
	Palette_mode_enabled_flag                       uint8
	Palette_max_size                                uint8
	Delta_palette_max_predictor_size                uint8
	Sps_palette_predictor_initializers_present_flag uint8
	Sps_num_palette_predictor_initializers_minus1   uint8
	Sps_palette_predictor_initializers              [3][HEVC_MAX_PALETTE_PREDICTOR_SIZE]uint16
	Motion_vector_resolution_control_idc            uint8
	Intra_boundary_filtering_disabled_flag          uint8

	// 以下为推导值
	ChromaArrayType uint8
	CropRectX       int
	CropRectY       int
	CropRectWidth   int
	CropRectHeight  int
	FpsNum          uint32
	FpsDen          uint32

	// Vps 关联的视频参数集，可为 nil
	Vps *H265RawVPS
	// Valid 解码成功后置位
	Valid bool
}

// Width 视频显示宽度（像素），已扣除一致性窗口
func (sps *H265RawSPS) Width() int {
	return sps.CropRectWidth
}

// Height 视频显示高度（像素），已扣除一致性窗口
func (sps *H265RawSPS) Height() int {
	return sps.CropRectHeight
}

// FrameRate Video frame rate
func (sps *H265RawSPS) FrameRate() float64 {
	if sps.Vui.Vui_num_units_in_tick == 0 {
		return 0.0
	}
	return float64(sps.Vui.Vui_time_scale) / float64(sps.Vui.Vui_num_units_in_tick)
}

// IsFixedFrameRate 是否固定帧率
func (sps *H265RawSPS) IsFixedFrameRate() bool {
	hrd := &sps.Vui.Hrd_parameters
	if sps.Vui.Vui_hrd_parameters_present_flag == 0 {
		return sps.Vui.Vui_timing_info_present_flag == 1
	}
	i := sps.Sps_max_sub_layers_minus1
	return hrd.Fixed_pic_rate_general_flag[i] == 1 || hrd.Fixed_pic_rate_within_cvs_flag[i] == 1
}

// MaxDpbSize 最高子层所需的解码图像缓冲数量
func (sps *H265RawSPS) MaxDpbSize() int {
	return int(sps.Sps_max_dec_pic_buffering_minus1[sps.Sps_max_sub_layers_minus1]) + 1
}

// BitDepthY 亮度位深
func (sps *H265RawSPS) BitDepthY() int {
	return int(sps.Bit_depth_luma_minus8) + 8
}

// BitDepthC 色度位深
func (sps *H265RawSPS) BitDepthC() int {
	return int(sps.Bit_depth_chroma_minus8) + 8
}

// CtbSizeY 编码树块尺寸
func (sps *H265RawSPS) CtbSizeY() int {
	return 1 << (sps.Log2_min_luma_coding_block_size_minus3 + 3 + sps.Log2_diff_max_min_luma_coding_block_size)
}

// SubWidthC 色度水平子采样因子 (表 6-1)
func (sps *H265RawSPS) SubWidthC() int {
	if sps.ChromaArrayType == 1 || sps.ChromaArrayType == 2 {
		return 2
	}
	return 1
}

// SubHeightC 色度垂直子采样因子 (表 6-1)
func (sps *H265RawSPS) SubHeightC() int {
	if sps.ChromaArrayType == 1 {
		return 2
	}
	return 1
}

// DecodeString 从 base64 字串解码 sps NAL
func (sps *H265RawSPS) DecodeString(b64 string) error {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return err
	}
	return sps.Decode(data)
}

// Decode 从字节序列中解码 sps NAL，可以带起始码
func (sps *H265RawSPS) Decode(data []byte) (err error) {
	*sps = H265RawSPS{}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("RawSPS decode panic；r = %v \n %s", r, debug.Stack())
			sps.Valid = false
		}
	}()

	spsWEB := utils.RemoveH264or5EmulationBytes(data)
	if len(spsWEB) < 4 {
		return errors.New("the data is not enough")
	}

	r := bits.NewReader(spsWEB)
	if err = sps.Nal_unit_header.decode(r); err != nil {
		return
	}

	if sps.Nal_unit_header.Nal_unit_type != NalSps {
		return errors.Errorf("nal unit type %d is not sps", sps.Nal_unit_header.Nal_unit_type)
	}

	sps.Sps_video_parameter_set_id = r.ReadUint8(4)

	sps.Sps_max_sub_layers_minus1 = r.ReadUint8(3)
	sps.Sps_temporal_id_nesting_flag = r.ReadBit()
	if err = sps.Profile_tier_level.decode(r, true, int(sps.Sps_max_sub_layers_minus1)); err != nil {
		return
	}

	sps.Sps_seq_parameter_set_id = r.ReadUe8()

	sps.Chroma_format_idc = r.ReadUe8()
	if sps.Chroma_format_idc == 3 {
		sps.Separate_colour_plane_flag = r.ReadBit()
	}
	sps.ChromaArrayType = sps.Chroma_format_idc
	if sps.Separate_colour_plane_flag == 1 {
		sps.ChromaArrayType = 0
	}

	sps.Pic_width_in_luma_samples = r.ReadUe16()
	sps.Pic_height_in_luma_samples = r.ReadUe16()

	sps.Conformance_window_flag = r.ReadBit()
	if sps.Conformance_window_flag == 1 {
		sps.Conf_win_left_offset = r.ReadUe16()
		sps.Conf_win_right_offset = r.ReadUe16()
		sps.Conf_win_top_offset = r.ReadUe16()
		sps.Conf_win_bottom_offset = r.ReadUe16()
	}

	sps.Bit_depth_luma_minus8 = r.ReadUe8()
	sps.Bit_depth_chroma_minus8 = r.ReadUe8()

	sps.Log2_max_pic_order_cnt_lsb_minus4 = r.ReadUe8()

	sps.Sps_sub_layer_ordering_info_present_flag = r.ReadBit()
	loopStart := sps.Sps_max_sub_layers_minus1
	if sps.Sps_sub_layer_ordering_info_present_flag == 1 {
		loopStart = 0
	}
	for i := loopStart; i <= sps.Sps_max_sub_layers_minus1; i++ {
		sps.Sps_max_dec_pic_buffering_minus1[i] = r.ReadUe8()
		sps.Sps_max_num_reorder_pics[i] = r.ReadUe8()
		sps.Sps_max_latency_increase_plus1[i] = r.ReadUe()
	}

	if sps.Sps_sub_layer_ordering_info_present_flag == 0 {
		for i := uint8(0); i < sps.Sps_max_sub_layers_minus1; i++ {
			sps.Sps_max_dec_pic_buffering_minus1[i] =
				sps.Sps_max_dec_pic_buffering_minus1[sps.Sps_max_sub_layers_minus1]
			sps.Sps_max_num_reorder_pics[i] =
				sps.Sps_max_num_reorder_pics[sps.Sps_max_sub_layers_minus1]
			sps.Sps_max_latency_increase_plus1[i] =
				sps.Sps_max_latency_increase_plus1[sps.Sps_max_sub_layers_minus1]
		}
	}

	sps.Log2_min_luma_coding_block_size_minus3 = r.ReadUe8()
	minCbLog2SizeY := sps.Log2_min_luma_coding_block_size_minus3 + 3

	sps.Log2_diff_max_min_luma_coding_block_size = r.ReadUe8()

	minCbSizeY := uint16(1) << minCbLog2SizeY
	if (sps.Pic_width_in_luma_samples%minCbSizeY) > 0 ||
		(sps.Pic_height_in_luma_samples%minCbSizeY) > 0 {
		return errors.Errorf("invalid dimensions: %dx%d not divisible by MinCbSizeY = %d",
			sps.Pic_width_in_luma_samples,
			sps.Pic_height_in_luma_samples,
			minCbSizeY)
	}

	sps.Log2_min_luma_transform_block_size_minus2 = r.ReadUe8()
	sps.Log2_diff_max_min_luma_transform_block_size = r.ReadUe8()

	sps.Max_transform_hierarchy_depth_inter = r.ReadUe8()
	sps.Max_transform_hierarchy_depth_intra = r.ReadUe8()

	sps.Scaling_list_enabled_flag = r.ReadBit()
	if sps.Scaling_list_enabled_flag == 1 {
		sps.Sps_scaling_list_data_present_flag = r.ReadBit()
		if sps.Sps_scaling_list_data_present_flag == 1 {
			sps.Scaling_list = new(H265RawScalingList)
			if err = sps.Scaling_list.decode(r); err != nil {
				return
			}
		}
	}

	sps.Amp_enabled_flag = r.ReadBit()
	sps.Sample_adaptive_offset_enabled_flag = r.ReadBit()

	sps.Pcm_enabled_flag = r.ReadBit()
	if sps.Pcm_enabled_flag == 1 {
		sps.Pcm_sample_bit_depth_luma_minus1 = r.ReadUint8(4)
		sps.Pcm_sample_bit_depth_chroma_minus1 = r.ReadUint8(4)

		sps.Log2_min_pcm_luma_coding_block_size_minus3 = r.ReadUe8()
		sps.Log2_diff_max_min_pcm_luma_coding_block_size = r.ReadUe8()

		sps.Pcm_loop_filter_disabled_flag = r.ReadBit()
	}

	sps.Num_short_term_ref_pic_sets = r.ReadUe8()
	if sps.Num_short_term_ref_pic_sets > HEVC_MAX_SHORT_TERM_REF_PIC_SETS {
		return errors.Errorf("invalid stream: num_short_term_ref_pic_sets %d out of range",
			sps.Num_short_term_ref_pic_sets)
	}
	if sps.Num_short_term_ref_pic_sets > 0 {
		sps.St_ref_pic_set = make([]H265RawSTRefPicSet, sps.Num_short_term_ref_pic_sets)
		for i := 0; i < int(sps.Num_short_term_ref_pic_sets); i++ {
			if err = sps.St_ref_pic_set[i].decode(r, i, sps); err != nil {
				return
			}
		}
	}

	sps.Long_term_ref_pics_present_flag = r.ReadBit()
	if sps.Long_term_ref_pics_present_flag == 1 {
		sps.Num_long_term_ref_pics_sps = r.ReadUe8()
		if sps.Num_long_term_ref_pics_sps > HEVC_MAX_LONG_TERM_REF_PICS {
			return errors.Errorf("invalid stream: num_long_term_ref_pics_sps %d out of range",
				sps.Num_long_term_ref_pics_sps)
		}
		for i := uint8(0); i < sps.Num_long_term_ref_pics_sps; i++ {
			sps.Lt_ref_pic_poc_lsb_sps[i] = r.ReadUint16(int(sps.Log2_max_pic_order_cnt_lsb_minus4 + 4))
			sps.Used_by_curr_pic_lt_sps_flag[i] = r.ReadBit()
		}
	}

	sps.Sps_temporal_mvp_enabled_flag = r.ReadBit()
	sps.Strong_intra_smoothing_enabled_flag = r.ReadBit()

	sps.Vui_parameters_present_flag = r.ReadBit()
	if sps.Vui_parameters_present_flag == 1 {
		if err = sps.Vui.decode(r, sps); err != nil {
			return
		}
	} else {
		sps.Vui.setDefault()
	}

	sps.Sps_extension_present_flag = r.ReadBit()
	if sps.Sps_extension_present_flag == 1 {
		sps.Sps_range_extension_flag = r.ReadBit()
		sps.Sps_multilayer_extension_flag = r.ReadBit()
		sps.Sps_3d_extension_flag = r.ReadBit()
		sps.Sps_scc_extension_flag = r.ReadBit()
		sps.Sps_extension_4bits = r.ReadUint8(4)
	}

	if sps.Sps_range_extension_flag == 1 {
		sps.decodeRangeExtension(r)
	}
	if sps.Sps_multilayer_extension_flag == 1 {
		sps.Inter_view_mv_vert_constraint_flag = r.ReadBit()
	}
	// 3D 扩展不解析，其后的 SCC 扩展无法定位
	if sps.Sps_3d_extension_flag == 0 && sps.Sps_scc_extension_flag == 1 {
		sps.decodeSccExtension(r)
	}

	sps.deriveValues()
	sps.Valid = true
	return
}

func (sps *H265RawSPS) decodeRangeExtension(r *bits.Reader) {
	sps.Transform_skip_rotation_enabled_flag = r.ReadBit()
	sps.Transform_skip_context_enabled_flag = r.ReadBit()
	sps.Implicit_rdpcm_enabled_flag = r.ReadBit()
	sps.Explicit_rdpcm_enabled_flag = r.ReadBit()
	sps.Extended_precision_processing_flag = r.ReadBit()
	sps.Intra_smoothing_disabled_flag = r.ReadBit()
	sps.High_precision_offsets_enabled_flag = r.ReadBit()
	sps.Persistent_rice_adaptation_enabled_flag = r.ReadBit()
	sps.Cabac_bypass_alignment_enabled_flag = r.ReadBit()
}

func (sps *H265RawSPS) decodeSccExtension(r *bits.Reader) {
	sps.Sps_curr_pic_ref_enabled_flag = r.ReadBit()
	sps.Palette_mode_enabled_flag = r.ReadBit()
	if sps.Palette_mode_enabled_flag == 1 {
		sps.Palette_max_size = r.ReadUe8()
		sps.Delta_palette_max_predictor_size = r.ReadUe8()

		sps.Sps_palette_predictor_initializers_present_flag = r.ReadBit()
		if sps.Sps_palette_predictor_initializers_present_flag == 1 {
			sps.Sps_num_palette_predictor_initializers_minus1 = r.ReadUe8()
			numComps := 3
			if sps.Chroma_format_idc == 0 {
				numComps = 1
			}
			for comp := 0; comp < numComps; comp++ {
				bitDepth := sps.BitDepthY()
				if comp > 0 {
					bitDepth = sps.BitDepthC()
				}
				for i := 0; i <= int(sps.Sps_num_palette_predictor_initializers_minus1); i++ {
					sps.Sps_palette_predictor_initializers[comp][i] = r.ReadUint16(bitDepth)
				}
			}
		}
	}
	sps.Motion_vector_resolution_control_idc = r.ReadUint8(2)
	sps.Intra_boundary_filtering_disabled_flag = r.ReadBit()
}

func (sps *H265RawSPS) deriveValues() {
	width := int(sps.Pic_width_in_luma_samples)
	height := int(sps.Pic_height_in_luma_samples)
	sps.CropRectWidth = width
	sps.CropRectHeight = height
	if sps.Conformance_window_flag == 1 {
		cropUnitX, cropUnitY := sps.SubWidthC(), sps.SubHeightC()
		sps.CropRectX = int(sps.Conf_win_left_offset) * cropUnitX
		sps.CropRectY = int(sps.Conf_win_top_offset) * cropUnitY
		sps.CropRectWidth = width -
			(int(sps.Conf_win_left_offset)+int(sps.Conf_win_right_offset))*cropUnitX
		sps.CropRectHeight = height -
			(int(sps.Conf_win_top_offset)+int(sps.Conf_win_bottom_offset))*cropUnitY
	}

	sps.FpsNum, sps.FpsDen = 0, 1
	if sps.Vui.Vui_timing_info_present_flag == 1 && sps.Vui.Vui_num_units_in_tick > 0 {
		sps.FpsNum = sps.Vui.Vui_time_scale
		sps.FpsDen = sps.Vui.Vui_num_units_in_tick
	}
}
