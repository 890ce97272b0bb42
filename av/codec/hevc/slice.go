// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"github.com/cnotch/hevcparser/utils"
	"github.com/cnotch/hevcparser/utils/bits"
	"github.com/pkg/errors"
)

// SliceSegmentPrefix slice_segment_header( ) 的前几个语法元素，
// 足以完成图像分组和 PPS 查找
type SliceSegmentPrefix struct {
	Nal_unit_header H265RawNALUnitHeader

	First_slice_segment_in_pic_flag uint8
	No_output_of_prior_pics_flag    uint8
	Slice_pic_parameter_set_id      uint8
}

// Decode 从 VCL NAL 中解码片段头前缀，可以带起始码
func (p *SliceSegmentPrefix) Decode(nalu []byte) (err error) {
	*p = SliceSegmentPrefix{}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("slice segment prefix decode panic；r = %v", r)
		}
	}()

	// 前缀位于片段头的开始位置，只需去掉少量字节中的防竞争码
	nalu = utils.RemoveNaluSeparator(nalu)
	if len(nalu) > 16 {
		nalu = nalu[:16]
	}
	data := utils.RemoveH264or5EmulationBytes(nalu)
	if len(data) < 3 {
		return errors.New("the data is not enough")
	}

	r := bits.NewReader(data)
	if err = p.Nal_unit_header.decode(r); err != nil {
		return
	}
	if !IsVcl(p.Nal_unit_header.Nal_unit_type) {
		return errors.Errorf("nal unit type %d is not vcl", p.Nal_unit_header.Nal_unit_type)
	}

	p.First_slice_segment_in_pic_flag = r.ReadBit()
	if IsIrap(p.Nal_unit_header.Nal_unit_type) {
		p.No_output_of_prior_pics_flag = r.ReadBit()
	}
	p.Slice_pic_parameter_set_id = r.ReadUe8()
	if p.Slice_pic_parameter_set_id >= HEVC_MAX_PPS_COUNT {
		return errors.Errorf("invalid stream: pps id %d out of range", p.Slice_pic_parameter_set_id)
	}
	return nil
}
