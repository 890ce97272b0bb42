// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"github.com/cnotch/hevcparser/utils/bits"
)

type H265RawSubLayerHRDParameters struct {
	Bit_rate_value_minus1    [HEVC_MAX_CPB_CNT]uint32
	Cpb_size_value_minus1    [HEVC_MAX_CPB_CNT]uint32
	Cpb_size_du_value_minus1 [HEVC_MAX_CPB_CNT]uint32
	Bit_rate_du_value_minus1 [HEVC_MAX_CPB_CNT]uint32
	Cbr_flag                 [HEVC_MAX_CPB_CNT]uint8
}

func (shrd *H265RawSubLayerHRDParameters) decode(r *bits.Reader,
	sub_pic_hrd_params_present_flag bool, cpb_cnt_minus1 int) (err error) {
	for i := 0; i <= cpb_cnt_minus1; i++ {
		shrd.Bit_rate_value_minus1[i] = r.ReadUe()
		shrd.Cpb_size_value_minus1[i] = r.ReadUe()
		if sub_pic_hrd_params_present_flag {
			shrd.Cpb_size_du_value_minus1[i] = r.ReadUe()
			shrd.Bit_rate_du_value_minus1[i] = r.ReadUe()
		}
		shrd.Cbr_flag[i] = r.ReadBit()
	}
	return
}

// H265RawHRDParameters hrd_parameters( ), E.2.2
type H265RawHRDParameters struct {
	Nal_hrd_parameters_present_flag uint8
	Vcl_hrd_parameters_present_flag uint8

	Sub_pic_hrd_params_present_flag              uint8
	Tick_divisor_minus2                          uint8
	Du_cpb_removal_delay_increment_length_minus1 uint8
	Sub_pic_cpb_params_in_pic_timing_sei_flag    uint8
	Dpb_output_delay_du_length_minus1            uint8

	Bit_rate_scale    uint8
	Cpb_size_scale    uint8
	Cpb_size_du_scale uint8

	Initial_cpb_removal_delay_length_minus1 uint8
	Au_cpb_removal_delay_length_minus1      uint8
	Dpb_output_delay_length_minus1          uint8

	Fixed_pic_rate_general_flag     [HEVC_MAX_SUB_LAYERS]uint8
	Fixed_pic_rate_within_cvs_flag  [HEVC_MAX_SUB_LAYERS]uint8
	Elemental_duration_in_tc_minus1 [HEVC_MAX_SUB_LAYERS]uint16
	Low_delay_hrd_flag              [HEVC_MAX_SUB_LAYERS]uint8
	Cpb_cnt_minus1                  [HEVC_MAX_SUB_LAYERS]uint8
	Nal_sub_layer_hrd_parameters    [HEVC_MAX_SUB_LAYERS]H265RawSubLayerHRDParameters
	Vcl_sub_layer_hrd_parameters    [HEVC_MAX_SUB_LAYERS]H265RawSubLayerHRDParameters
}

func (hrd *H265RawHRDParameters) decode(r *bits.Reader,
	common_inf_present_flag bool, max_num_sub_layers_minus1 int) (err error) {
	if common_inf_present_flag {
		hrd.Nal_hrd_parameters_present_flag = r.ReadBit()
		hrd.Vcl_hrd_parameters_present_flag = r.ReadBit()

		if hrd.Nal_hrd_parameters_present_flag == 1 ||
			hrd.Vcl_hrd_parameters_present_flag == 1 {
			hrd.Sub_pic_hrd_params_present_flag = r.ReadBit()
			if hrd.Sub_pic_hrd_params_present_flag == 1 {
				hrd.Tick_divisor_minus2 = r.ReadUint8(8)
				hrd.Du_cpb_removal_delay_increment_length_minus1 = r.ReadUint8(5)
				hrd.Sub_pic_cpb_params_in_pic_timing_sei_flag = r.ReadBit()
				hrd.Dpb_output_delay_du_length_minus1 = r.ReadUint8(5)
			}

			hrd.Bit_rate_scale = r.ReadUint8(4)
			hrd.Cpb_size_scale = r.ReadUint8(4)
			if hrd.Sub_pic_hrd_params_present_flag == 1 {
				hrd.Cpb_size_du_scale = r.ReadUint8(4)

			}

			hrd.Initial_cpb_removal_delay_length_minus1 = r.ReadUint8(5)
			hrd.Au_cpb_removal_delay_length_minus1 = r.ReadUint8(5)
			hrd.Dpb_output_delay_length_minus1 = r.ReadUint8(5)
		} else {
			hrd.Sub_pic_hrd_params_present_flag = 0

			hrd.Initial_cpb_removal_delay_length_minus1 = 23
			hrd.Au_cpb_removal_delay_length_minus1 = 23
			hrd.Dpb_output_delay_length_minus1 = 23
		}
	}

	for i := 0; i <= max_num_sub_layers_minus1; i++ {
		hrd.Fixed_pic_rate_general_flag[i] = r.ReadBit()

		hrd.Fixed_pic_rate_within_cvs_flag[i] = 1
		if hrd.Fixed_pic_rate_general_flag[i] == 0 {
			hrd.Fixed_pic_rate_within_cvs_flag[i] = r.ReadBit()
		}

		if hrd.Fixed_pic_rate_within_cvs_flag[i] == 1 {
			hrd.Elemental_duration_in_tc_minus1[i] = r.ReadUe16()
			hrd.Low_delay_hrd_flag[i] = 0
		} else {
			hrd.Low_delay_hrd_flag[i] = r.ReadBit()
		}

		hrd.Cpb_cnt_minus1[i] = 0
		if hrd.Low_delay_hrd_flag[i] == 0 {
			hrd.Cpb_cnt_minus1[i] = r.ReadUe8()
		}

		if hrd.Nal_hrd_parameters_present_flag == 1 {
			hrd.Nal_sub_layer_hrd_parameters[i].decode(r, hrd.Sub_pic_hrd_params_present_flag == 1, int(hrd.Cpb_cnt_minus1[i]))
		}
		if hrd.Vcl_hrd_parameters_present_flag == 1 {
			hrd.Vcl_sub_layer_hrd_parameters[i].decode(r, hrd.Sub_pic_hrd_params_present_flag == 1, int(hrd.Cpb_cnt_minus1[i]))
		}
	}

	return
}
