// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"github.com/cnotch/hevcparser/utils/bits"
)

// general_profile_idc 的取值 (A.3)
const (
	ProfileMain                  = 1
	ProfileMain10                = 2
	ProfileMainStillPicture      = 3
	ProfileFormatRangeExtensions = 4
	ProfileHighThroughput        = 5
	ProfileScreenContentCoding   = 9
)

// H265RawNALUnitHeader NAL 单元头
type H265RawNALUnitHeader struct {
	Nal_unit_type         uint8
	Nuh_layer_id          uint8
	Nuh_temporal_id_plus1 uint8
}

func (h *H265RawNALUnitHeader) decode(r *bits.Reader) (err error) {
	r.Skip(1) //forbidden_zero_bit
	h.Nal_unit_type = r.ReadUint8(6)
	h.Nuh_layer_id = r.ReadUint8(6)
	h.Nuh_temporal_id_plus1 = r.ReadUint8(3)
	return
}

// H265RawProfileTierLevel profile_tier_level( )
type H265RawProfileTierLevel struct {
	General_profile_space uint8
	General_tier_flag     uint8
	General_profile_idc   uint8

	General_profile_compatibility_flag [32]uint8
	GeneralProfileCompatibilityFlags   uint32 // shortcut flags 32bits

	General_progressive_source_flag    uint8
	General_interlaced_source_flag     uint8
	General_non_packed_constraint_flag uint8
	General_frame_only_constraint_flag uint8

	General_max_12bit_constraint_flag        uint8
	General_max_10bit_constraint_flag        uint8
	General_max_8bit_constraint_flag         uint8
	General_max_422chroma_constraint_flag    uint8
	General_max_420chroma_constraint_flag    uint8
	General_max_monochrome_constraint_flag   uint8
	General_intra_constraint_flag            uint8
	General_one_picture_only_constraint_flag uint8
	General_lower_bit_rate_constraint_flag   uint8
	General_max_14bit_constraint_flag        uint8

	General_inbld_flag              uint8
	GeneralConstraintIndicatorFlags uint64 // shortcut flags 48bits

	General_level_idc uint8

	Sub_layer_profile_present_flag [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_level_present_flag   [HEVC_MAX_SUB_LAYERS]uint8

	Sub_layer_profile_space [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_tier_flag     [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_profile_idc   [HEVC_MAX_SUB_LAYERS]uint8

	Sub_layer_profile_compatibility_flag [HEVC_MAX_SUB_LAYERS][32]uint8

	Sub_layer_progressive_source_flag    [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_interlaced_source_flag     [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_non_packed_constraint_flag [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_frame_only_constraint_flag [HEVC_MAX_SUB_LAYERS]uint8

	Sub_layer_max_12bit_constraint_flag        [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_max_10bit_constraint_flag        [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_max_8bit_constraint_flag         [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_max_422chroma_constraint_flag    [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_max_420chroma_constraint_flag    [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_max_monochrome_constraint_flag   [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_intra_constraint_flag            [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_one_picture_only_constraint_flag [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_lower_bit_rate_constraint_flag   [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_max_14bit_constraint_flag        [HEVC_MAX_SUB_LAYERS]uint8

	Sub_layer_inbld_flag [HEVC_MAX_SUB_LAYERS]uint8

	Sub_layer_level_idc [HEVC_MAX_SUB_LAYERS]uint8
}
type profile_compatible struct {
	profile_idc                uint8
	profile_compatibility_flag [32]uint8
}

func (pc profile_compatible) compatible(idc uint8) bool {
	return pc.profile_idc == idc || pc.profile_compatibility_flag[idc] == 1
}

func (ptl *H265RawProfileTierLevel) decode(r *bits.Reader,
	profile_present_flag bool, max_num_sub_layers_minus1 int) (err error) {

	if profile_present_flag {
		ptl.General_profile_space = r.ReadUint8(2)
		ptl.General_tier_flag = r.ReadBit()
		ptl.General_profile_idc = r.ReadUint8(5)

		ptl.GeneralProfileCompatibilityFlags = uint32(r.Peek(32))
		for j := 0; j < 32; j++ {
			ptl.General_profile_compatibility_flag[j] = r.ReadBit()
		}

		ptl.GeneralConstraintIndicatorFlags = r.Peek(48)
		ptl.General_progressive_source_flag = r.ReadBit()
		ptl.General_interlaced_source_flag = r.ReadBit()
		ptl.General_non_packed_constraint_flag = r.ReadBit()
		ptl.General_frame_only_constraint_flag = r.ReadBit()

		pc := profile_compatible{ptl.General_profile_idc, ptl.General_profile_compatibility_flag}
		if pc.compatible(4) || pc.compatible(5) ||
			pc.compatible(6) || pc.compatible(7) ||
			pc.compatible(8) || pc.compatible(9) ||
			pc.compatible(10) {
			ptl.General_max_12bit_constraint_flag = r.ReadBit()
			ptl.General_max_10bit_constraint_flag = r.ReadBit()
			ptl.General_max_8bit_constraint_flag = r.ReadBit()
			ptl.General_max_422chroma_constraint_flag = r.ReadBit()
			ptl.General_max_420chroma_constraint_flag = r.ReadBit()
			ptl.General_max_monochrome_constraint_flag = r.ReadBit()
			ptl.General_intra_constraint_flag = r.ReadBit()
			ptl.General_one_picture_only_constraint_flag = r.ReadBit()
			ptl.General_lower_bit_rate_constraint_flag = r.ReadBit()

			if pc.compatible(5) || pc.compatible(9) || pc.compatible(10) {
				ptl.General_max_14bit_constraint_flag = r.ReadBit()
				r.Skip(33) // general_reserved_zero_33bits

			} else {
				r.Skip(34) //general_reserved_zero_34bits
			}
		} else if pc.compatible(2) {
			r.Skip(7) // general_reserved_zero_7bits
			ptl.General_one_picture_only_constraint_flag = r.ReadBit()
			r.Skip(35) // general_reserved_zero_35bits
		} else {
			r.Skip(43) // general_reserved_zero_43bits
		}

		if pc.compatible(1) || pc.compatible(2) ||
			pc.compatible(3) || pc.compatible(4) ||
			pc.compatible(5) || pc.compatible(9) {
			ptl.General_inbld_flag = r.ReadBit()
		} else {
			r.Skip(1) // general_reserved_zero_bit
		}
	}

	ptl.General_level_idc = r.ReadUint8(8)

	for i := 0; i < max_num_sub_layers_minus1; i++ {
		ptl.Sub_layer_profile_present_flag[i] = r.ReadBit()
		ptl.Sub_layer_level_present_flag[i] = r.ReadBit()
	}

	if max_num_sub_layers_minus1 > 0 {
		for i := max_num_sub_layers_minus1; i < 8; i++ {
			r.Skip(2) // reserved_zero_2bits
		}
	}

	for i := 0; i < max_num_sub_layers_minus1; i++ {
		if ptl.Sub_layer_profile_present_flag[i] == 1 {
			ptl.Sub_layer_profile_space[i] = r.ReadUint8(2)
			ptl.Sub_layer_tier_flag[i] = r.ReadBit()
			ptl.Sub_layer_profile_idc[i] = r.ReadUint8(5)

			for j := 0; j < 32; j++ {
				ptl.Sub_layer_profile_compatibility_flag[i][j] = r.ReadBit()
			}

			ptl.Sub_layer_progressive_source_flag[i] = r.ReadBit()
			ptl.Sub_layer_interlaced_source_flag[i] = r.ReadBit()
			ptl.Sub_layer_non_packed_constraint_flag[i] = r.ReadBit()
			ptl.Sub_layer_frame_only_constraint_flag[i] = r.ReadBit()

			pc := profile_compatible{ptl.Sub_layer_profile_idc[i], ptl.Sub_layer_profile_compatibility_flag[i]}
			if pc.compatible(4) || pc.compatible(5) ||
				pc.compatible(6) || pc.compatible(7) ||
				pc.compatible(8) || pc.compatible(9) ||
				pc.compatible(10) {
				ptl.Sub_layer_max_12bit_constraint_flag[i] = r.ReadBit()
				ptl.Sub_layer_max_10bit_constraint_flag[i] = r.ReadBit()
				ptl.Sub_layer_max_8bit_constraint_flag[i] = r.ReadBit()
				ptl.Sub_layer_max_422chroma_constraint_flag[i] = r.ReadBit()
				ptl.Sub_layer_max_420chroma_constraint_flag[i] = r.ReadBit()
				ptl.Sub_layer_max_monochrome_constraint_flag[i] = r.ReadBit()
				ptl.Sub_layer_intra_constraint_flag[i] = r.ReadBit()
				ptl.Sub_layer_one_picture_only_constraint_flag[i] = r.ReadBit()
				ptl.Sub_layer_lower_bit_rate_constraint_flag[i] = r.ReadBit()

				if pc.compatible(5) || pc.compatible(9) || pc.compatible(10) {
					ptl.Sub_layer_max_14bit_constraint_flag[i] = r.ReadBit()
					r.Skip(33) // sub_layer_reserved_zero_33bits
				} else {
					r.Skip(34) // sub_layer_reserved_zero_34bits
				}
			} else if pc.compatible(2) {
				r.Skip(7) // sub_layer_reserved_zero_7bits
				ptl.Sub_layer_one_picture_only_constraint_flag[i] = r.ReadBit()
				r.Skip(35) // sub_layer_reserved_zero_35bits
			} else {
				r.Skip(43) // sub_layer_reserved_zero_43bits
			}

			if pc.compatible(1) || pc.compatible(2) ||
				pc.compatible(3) || pc.compatible(4) ||
				pc.compatible(5) || pc.compatible(9) {
				ptl.Sub_layer_inbld_flag[i] = r.ReadBit()
			} else {
				r.Skip(1) // sub_layer_reserved_zero_bit
			}
		}
		if ptl.Sub_layer_level_present_flag[i] == 1 {
			ptl.Sub_layer_level_idc[i] = r.ReadUint8(8)
		}
	}
	return
}
