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

// H265RawVPS 视频参数集
type H265RawVPS struct {
	Nal_unit_header H265RawNALUnitHeader

	Vps_video_parameter_set_id uint8

	Vps_base_layer_internal_flag  uint8
	Vps_base_layer_available_flag uint8
	Vps_max_layers_minus1         uint8
	Vps_max_sub_layers_minus1     uint8
	Vps_temporal_id_nesting_flag  uint8

	Profile_tier_level H265RawProfileTierLevel

	Vps_sub_layer_ordering_info_present_flag uint8
	Vps_max_dec_pic_buffering_minus1         [HEVC_MAX_SUB_LAYERS]uint8
	Vps_max_num_reorder_pics                 [HEVC_MAX_SUB_LAYERS]uint8
	Vps_max_latency_increase_plus1           [HEVC_MAX_SUB_LAYERS]uint32

	Vps_max_layer_id          uint8
	Vps_num_layer_sets_minus1 uint16
	Layer_id_included_flag    [][HEVC_MAX_LAYERS]uint8 //[HEVC_MAX_LAYER_SETS][HEVC_MAX_LAYERS]uint8

	Vps_timing_info_present_flag        uint8
	Vps_num_units_in_tick               uint32
	Vps_time_scale                      uint32
	Vps_poc_proportional_to_timing_flag uint8
	Vps_num_ticks_poc_diff_one_minus1   uint32
	Vps_num_hrd_parameters              uint16
	Hrd_layer_set_idx                   []uint16               //[HEVC_MAX_LAYER_SETS]uint16
	Cprms_present_flag                  []uint8                //[HEVC_MAX_LAYER_SETS]uint8
	Hrd_parameters                      []H265RawHRDParameters //[HEVC_MAX_LAYER_SETS]H265RawHRDParameters

	Vps_extension_flag uint8

	// Valid 解码成功后置位
	Valid bool
}

// DecodeString 从 base64 字串解码 vps NAL
func (vps *H265RawVPS) DecodeString(b64 string) error {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return err
	}
	return vps.Decode(data)
}

// Decode 从字节序列中解码 vps NAL，可以带起始码
func (vps *H265RawVPS) Decode(data []byte) (err error) {
	*vps = H265RawVPS{}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("RawVPS decode panic；r = %v \n %s", r, debug.Stack())
			vps.Valid = false
		}
	}()

	vpsWEB := utils.RemoveH264or5EmulationBytes(data)
	if len(vpsWEB) < 4 {
		return errors.New("the data is not enough")
	}

	r := bits.NewReader(vpsWEB)
	if err = vps.Nal_unit_header.decode(r); err != nil {
		return
	}

	if vps.Nal_unit_header.Nal_unit_type != NalVps {
		return errors.Errorf("nal unit type %d is not vps", vps.Nal_unit_header.Nal_unit_type)
	}

	vps.Vps_video_parameter_set_id = r.ReadUint8(4)

	vps.Vps_base_layer_internal_flag = r.ReadBit()
	vps.Vps_base_layer_available_flag = r.ReadBit()
	vps.Vps_max_layers_minus1 = r.ReadUint8(6)
	vps.Vps_max_sub_layers_minus1 = r.ReadUint8(3)
	vps.Vps_temporal_id_nesting_flag = r.ReadBit()

	if vps.Vps_max_sub_layers_minus1 == 0 &&
		vps.Vps_temporal_id_nesting_flag != 1 {
		return errors.New("invalid stream: vps_temporal_id_nesting_flag must be 1 if vps_max_sub_layers_minus1 is 0")
	}

	r.Skip(16) // vps_reserved_0xffff_16bits
	if err = vps.Profile_tier_level.decode(r, true, int(vps.Vps_max_sub_layers_minus1)); err != nil {
		return
	}

	vps.Vps_sub_layer_ordering_info_present_flag = r.ReadBit()
	i := vps.Vps_max_sub_layers_minus1
	if vps.Vps_sub_layer_ordering_info_present_flag == 1 {
		i = 0
	}
	for ; i <= vps.Vps_max_sub_layers_minus1; i++ {
		vps.Vps_max_dec_pic_buffering_minus1[i] = r.ReadUe8()
		vps.Vps_max_num_reorder_pics[i] = r.ReadUe8()
		vps.Vps_max_latency_increase_plus1[i] = r.ReadUe()
	}
	if vps.Vps_sub_layer_ordering_info_present_flag == 0 {
		for i := uint8(0); i < vps.Vps_max_sub_layers_minus1; i++ {
			vps.Vps_max_dec_pic_buffering_minus1[i] =
				vps.Vps_max_dec_pic_buffering_minus1[vps.Vps_max_sub_layers_minus1]
			vps.Vps_max_num_reorder_pics[i] =
				vps.Vps_max_num_reorder_pics[vps.Vps_max_sub_layers_minus1]
			vps.Vps_max_latency_increase_plus1[i] =
				vps.Vps_max_latency_increase_plus1[vps.Vps_max_sub_layers_minus1]
		}
	}

	vps.Vps_max_layer_id = r.ReadUint8(6)
	vps.Vps_num_layer_sets_minus1 = r.ReadUe16()
	vps.Layer_id_included_flag = make([][HEVC_MAX_LAYERS]uint8, vps.Vps_num_layer_sets_minus1+1)
	for i := uint16(1); i <= vps.Vps_num_layer_sets_minus1; i++ {
		for j := uint8(0); j <= vps.Vps_max_layer_id; j++ {
			vps.Layer_id_included_flag[i][j] = r.ReadBit()
		}
	}
	// 层集 0 只包含基本层
	vps.Layer_id_included_flag[0][0] = 1
	vps.Vps_timing_info_present_flag = r.ReadBit()
	if vps.Vps_timing_info_present_flag == 1 {
		vps.Vps_num_units_in_tick = r.ReadUint32(32)
		vps.Vps_time_scale = r.ReadUint32(32)
		vps.Vps_poc_proportional_to_timing_flag = r.ReadBit()
		if vps.Vps_poc_proportional_to_timing_flag == 1 {
			vps.Vps_num_ticks_poc_diff_one_minus1 = r.ReadUe()
		}

		vps.Vps_num_hrd_parameters = r.ReadUe16()
		if vps.Vps_num_hrd_parameters > 0 {
			vps.Hrd_layer_set_idx = make([]uint16, vps.Vps_num_hrd_parameters)
			vps.Cprms_present_flag = make([]uint8, vps.Vps_num_hrd_parameters)
			vps.Hrd_parameters = make([]H265RawHRDParameters, vps.Vps_num_hrd_parameters)
		}
		for i := uint16(0); i < vps.Vps_num_hrd_parameters; i++ {
			vps.Hrd_layer_set_idx[i] = r.ReadUe16()
			if i > 0 {
				vps.Cprms_present_flag[i] = r.ReadBit()
			} else {
				vps.Cprms_present_flag[0] = 1
			}
			if err = vps.Hrd_parameters[i].decode(r,
				vps.Cprms_present_flag[i] == 1,
				int(vps.Vps_max_sub_layers_minus1)); err != nil {
				return
			}
		}
	}

	vps.Vps_extension_flag = r.ReadBit()
	vps.Valid = true
	return
}
