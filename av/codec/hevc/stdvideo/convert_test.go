// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stdvideo

import (
	"testing"

	"github.com/cnotch/hevcparser/av/codec/hevc"
	"github.com/stretchr/testify/assert"
)

const (
	testVPS      = "QAEMAf//AWAAAAMAkAAAAwAAAwBdlZgJ"
	testSPS      = "QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC"
	testSPSRange = "QgEBBAgAAAMAkAAAAwAAAwB7oAPAgBEHy5ZXkk2b6/tgKJA="
	testPPSExt   = "RAFQTiWimCaChYhzIWQWkmQtamg="
)

func TestProfileIdcOf(t *testing.T) {
	tests := []struct {
		idc  uint8
		want ProfileIdc
	}{
		{1, ProfileIdcMain},
		{2, ProfileIdcMain10},
		{3, ProfileIdcMainStillPicture},
		{4, ProfileIdcFormatRangeExtensions},
		{9, ProfileIdcSccExtensions},
		{5, ProfileIdcInvalid},
		{0, ProfileIdcInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ProfileIdcOf(tt.idc))
		})
	}
}

func TestConvertVPS(t *testing.T) {
	vps := &hevc.H265RawVPS{}
	if !assert.NoError(t, vps.DecodeString(testVPS)) {
		return
	}

	d := ConvertVPS(vps)
	assert.Equal(t, uint8(0), d.VpsVideoParameterSetId)
	assert.Equal(t, uint8(0), d.VpsMaxSubLayersMinus1)
	assert.True(t, d.Flags.VpsTemporalIdNestingFlag)
	assert.True(t, d.Flags.VpsSubLayerOrderingInfoPresentFlag)
	assert.False(t, d.Flags.VpsTimingInfoPresentFlag)
	if assert.NotNil(t, d.DecPicBufMgr) {
		assert.Equal(t, uint8(4), d.DecPicBufMgr.MaxDecPicBufferingMinus1[0])
		assert.Equal(t, uint8(2), d.DecPicBufMgr.MaxNumReorderPics[0])
		assert.Equal(t, uint32(5), d.DecPicBufMgr.MaxLatencyIncreasePlus1[0])
	}

	// 每次转换得到独立的快照
	d2 := ConvertVPS(vps)
	assert.Equal(t, d, d2)
	assert.NotSame(t, d.DecPicBufMgr, d2.DecPicBufMgr)
}

func TestConvertSPS(t *testing.T) {
	sps := &hevc.H265RawSPS{}
	if !assert.NoError(t, sps.DecodeString(testSPS)) {
		return
	}

	d := ConvertSPS(sps)
	assert.Equal(t, ProfileIdcMain, d.ProfileIdc)
	assert.Equal(t, LevelIdc(93), d.LevelIdc)
	assert.Equal(t, uint32(1280), d.PicWidthInLumaSamples)
	assert.Equal(t, uint32(720), d.PicHeightInLumaSamples)
	assert.Equal(t, sps.Sps_seq_parameter_set_id, d.SpsSeqParameterSetId)
	assert.Equal(t, sps.Chroma_format_idc, d.ChromaFormatIdc)
	assert.Equal(t, sps.Num_short_term_ref_pic_sets, d.NumShortTermRefPicSets)
	assert.False(t, d.Flags.SpsRangeExtensionFlag)

	if assert.NotNil(t, d.DecPicBufMgr) {
		assert.Equal(t, uint8(4), d.DecPicBufMgr.MaxDecPicBufferingMinus1[0])
		assert.Equal(t, uint8(2), d.DecPicBufMgr.MaxNumReorderPics[0])
		assert.Equal(t, uint32(5), d.DecPicBufMgr.MaxLatencyIncreasePlus1[0])
	}

	t.Run("vui", func(t *testing.T) {
		if !assert.NotNil(t, d.SequenceParameterSetVui) {
			return
		}
		vui := d.SequenceParameterSetVui
		assert.True(t, d.Flags.VuiParametersPresentFlag)
		assert.True(t, vui.Flags.VuiTimingInfoPresentFlag)
		assert.Equal(t, uint32(1001), vui.VuiNumUnitsInTick)
		assert.Equal(t, uint32(24000), vui.VuiTimeScale)
	})

	t.Run("no_vui", func(t *testing.T) {
		raw := *sps
		raw.Vui_parameters_present_flag = 0
		assert.Nil(t, ConvertSPS(&raw).SequenceParameterSetVui)
	})
}

func TestConvertSPS_RangeExtension(t *testing.T) {
	sps := &hevc.H265RawSPS{}
	if !assert.NoError(t, sps.DecodeString(testSPSRange)) {
		return
	}

	d := ConvertSPS(sps)
	assert.Equal(t, ProfileIdcFormatRangeExtensions, d.ProfileIdc)
	assert.Equal(t, LevelIdc(123), d.LevelIdc)
	assert.Equal(t, uint32(1920), d.PicWidthInLumaSamples)
	assert.Equal(t, uint32(1088), d.PicHeightInLumaSamples)
	assert.True(t, d.Flags.SpsRangeExtensionFlag)
	assert.True(t, d.Flags.TransformSkipRotationEnabledFlag)
	assert.False(t, d.Flags.TransformSkipContextEnabledFlag)
	assert.True(t, d.Flags.ImplicitRdpcmEnabledFlag)
	assert.True(t, d.Flags.HighPrecisionOffsetsEnabledFlag)
	assert.False(t, d.Flags.CabacBypassAlignmentEnabledFlag)

	t.Run("flag_cleared", func(t *testing.T) {
		raw := *sps
		raw.Sps_range_extension_flag = 0
		d := ConvertSPS(&raw)
		assert.False(t, d.Flags.TransformSkipRotationEnabledFlag)
		assert.False(t, d.Flags.ImplicitRdpcmEnabledFlag)
		assert.False(t, d.Flags.HighPrecisionOffsetsEnabledFlag)
	})

	t.Run("scc_guard", func(t *testing.T) {
		raw := *sps
		raw.Palette_mode_enabled_flag = 1
		raw.Palette_max_size = 32
		d := ConvertSPS(&raw)
		assert.False(t, d.Flags.PaletteModeEnabledFlag)
		assert.Equal(t, uint8(0), d.PaletteMaxSize)

		raw.Sps_scc_extension_flag = 1
		d = ConvertSPS(&raw)
		assert.True(t, d.Flags.PaletteModeEnabledFlag)
		assert.Equal(t, uint8(32), d.PaletteMaxSize)
	})
}

func TestConvertPPS(t *testing.T) {
	pps := &hevc.H265RawPPS{}
	if !assert.NoError(t, pps.DecodeString(testPPSExt)) {
		return
	}

	d := ConvertPPS(pps)
	assert.Equal(t, uint8(1), d.PpsPicParameterSetId)
	assert.Equal(t, uint8(0), d.PpsSeqParameterSetId)
	assert.True(t, d.Flags.SignDataHidingEnabledFlag)
	assert.Equal(t, uint8(2), d.NumRefIdxL0DefaultActiveMinus1)
	assert.Equal(t, int8(-4), d.InitQpMinus26)
	assert.Equal(t, int8(-2), d.PpsCbQpOffset)
	assert.Equal(t, int8(3), d.PpsCrQpOffset)
	assert.Equal(t, int8(-1), d.PpsBetaOffsetDiv2)
	assert.Equal(t, int8(2), d.PpsTcOffsetDiv2)

	t.Run("tiles", func(t *testing.T) {
		assert.True(t, d.Flags.TilesEnabledFlag)
		assert.False(t, d.Flags.UniformSpacingFlag)
		assert.False(t, d.Flags.LoopFilterAcrossTilesEnabledFlag)
		assert.Equal(t, uint8(2), d.NumTileColumnsMinus1)
		assert.Equal(t, uint8(1), d.NumTileRowsMinus1)
		assert.Equal(t, []uint16{9, 10, 0}, d.ColumnWidthMinus1[:3])
		assert.Equal(t, []uint16{7, 0}, d.RowHeightMinus1[:2])
	})

	t.Run("range_extension", func(t *testing.T) {
		assert.True(t, d.Flags.PpsRangeExtensionFlag)
		assert.True(t, d.Flags.CrossComponentPredictionEnabledFlag)
		assert.True(t, d.Flags.ChromaQpOffsetListEnabledFlag)
		assert.Equal(t, uint8(1), d.Log2MaxTransformSkipBlockSizeMinus2)
		assert.Equal(t, uint8(1), d.ChromaQpOffsetListLenMinus1)
		assert.Equal(t, []int8{1, 2}, d.CbQpOffsetList[:2])
		assert.Equal(t, []int8{-1, -2}, d.CrQpOffsetList[:2])
		assert.Equal(t, uint8(1), d.Log2SaoOffsetScaleChroma)
	})

	t.Run("scc_extension", func(t *testing.T) {
		assert.True(t, d.Flags.PpsCurrPicRefEnabledFlag)
		assert.True(t, d.Flags.ResidualAdaptiveColourTransformEnabledFlag)
		assert.Equal(t, int8(0), d.PpsActYQpOffsetPlus5)
		assert.Equal(t, int8(1), d.PpsActCbQpOffsetPlus5)
		assert.Equal(t, int8(-1), d.PpsActCrQpOffsetPlus3)
	})

	t.Run("range_flag_cleared", func(t *testing.T) {
		raw := *pps
		raw.Pps_range_extension_flag = 0
		d := ConvertPPS(&raw)
		assert.False(t, d.Flags.CrossComponentPredictionEnabledFlag)
		assert.Equal(t, [ChromaQpOffsetListSize]int8{}, d.CbQpOffsetList)
		assert.Equal(t, uint8(0), d.Log2SaoOffsetScaleChroma)
	})
}
