// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"github.com/cnotch/hevcparser/av/codec"
	"github.com/cnotch/hevcparser/utils"
)

// MetadataIsReady .
func MetadataIsReady(vm *codec.VideoMeta) bool {
	vps := vm.Vps
	sps := vm.Sps
	pps := vm.Pps
	if len(vps) == 0 || len(sps) == 0 || len(pps) == 0 {
		return false
	}

	if vm.Width == 0 {
		// decode
		var rawsps H265RawSPS
		if err := rawsps.Decode(sps); err != nil {
			return false
		}
		vm.Width = rawsps.Width()
		vm.Height = rawsps.Height()
		vm.FixedFrameRate = rawsps.IsFixedFrameRate()
		vm.FrameRate = rawsps.FrameRate()
	}
	return true
}

// NalType 从 NAL 头的第一个字节获取 NAL 类型
func NalType(b byte) byte {
	return (b >> 1) & 0x3f
}

// NalTypeOf 返回 NAL 单元的类型，可以带起始码
func NalTypeOf(nalu []byte) byte {
	nalu = utils.RemoveNaluSeparator(nalu)
	if len(nalu) == 0 {
		return NalUnspec63
	}
	return NalType(nalu[0])
}

// IsVcl 是否是视频编码层(图像片) NAL
func IsVcl(nt byte) bool {
	return nt < NalVps
}

// IsIrap 是否随机接入点图像 (BLA, IDR, CRA 及保留的 IRAP 类型)
func IsIrap(nt byte) bool {
	return nt >= NalBlaWLp && nt <= NalIrapVcl23
}

// IsIdr 是否 IDR 图像
func IsIdr(nt byte) bool {
	return nt == NalIdrWRadl || nt == NalIdrNLp
}

// IsParameterSet 是否参数集 NAL
func IsParameterSet(nt byte) bool {
	return nt == NalVps || nt == NalSps || nt == NalPps
}
