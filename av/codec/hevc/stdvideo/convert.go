// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stdvideo

import (
	"github.com/cnotch/hevcparser/av/codec/hevc"
)

func flag(v uint8) bool { return v != 0 }

// ProfileIdcOf 把 general_profile_idc 映射到描述符 profile，
// 不支持的 profile 返回 ProfileIdcInvalid
func ProfileIdcOf(idc uint8) ProfileIdc {
	switch idc {
	case hevc.ProfileMain:
		return ProfileIdcMain
	case hevc.ProfileMain10:
		return ProfileIdcMain10
	case hevc.ProfileMainStillPicture:
		return ProfileIdcMainStillPicture
	case hevc.ProfileFormatRangeExtensions:
		return ProfileIdcFormatRangeExtensions
	case hevc.ProfileScreenContentCoding:
		return ProfileIdcSccExtensions
	default:
		return ProfileIdcInvalid
	}
}

// ConvertVPS 转换视频参数集，每次调用返回新的描述符
func ConvertVPS(vps *hevc.H265RawVPS) *VideoParameterSet {
	mgr := &DecPicBufMgr{}
	copy(mgr.MaxLatencyIncreasePlus1[:], vps.Vps_max_latency_increase_plus1[:])
	copy(mgr.MaxDecPicBufferingMinus1[:], vps.Vps_max_dec_pic_buffering_minus1[:])
	copy(mgr.MaxNumReorderPics[:], vps.Vps_max_num_reorder_pics[:])

	return &VideoParameterSet{
		Flags: VideoParameterSetFlags{
			VpsTemporalIdNestingFlag:           flag(vps.Vps_temporal_id_nesting_flag),
			VpsSubLayerOrderingInfoPresentFlag: flag(vps.Vps_sub_layer_ordering_info_present_flag),
			VpsTimingInfoPresentFlag:           flag(vps.Vps_timing_info_present_flag),
			VpsPocProportionalToTimingFlag:     flag(vps.Vps_poc_proportional_to_timing_flag),
		},
		VpsVideoParameterSetId:      vps.Vps_video_parameter_set_id,
		VpsMaxSubLayersMinus1:       vps.Vps_max_sub_layers_minus1,
		VpsNumUnitsInTick:           vps.Vps_num_units_in_tick,
		VpsTimeScale:                vps.Vps_time_scale,
		VpsNumTicksPocDiffOneMinus1: vps.Vps_num_ticks_poc_diff_one_minus1,
		DecPicBufMgr:                mgr,
	}
}

// ConvertVUI 转换 SPS 的 VUI 参数
func ConvertVUI(vui *hevc.H265RawVUI) *SequenceParameterSetVui {
	return &SequenceParameterSetVui{
		Flags: SequenceParameterSetVuiFlags{
			AspectRatioInfoPresentFlag:         flag(vui.Aspect_ratio_info_present_flag),
			OverscanInfoPresentFlag:            flag(vui.Overscan_info_present_flag),
			OverscanAppropriateFlag:            flag(vui.Overscan_appropriate_flag),
			VideoSignalTypePresentFlag:         flag(vui.Video_signal_type_present_flag),
			VideoFullRangeFlag:                 flag(vui.Video_full_range_flag),
			ColourDescriptionPresentFlag:       flag(vui.Colour_description_present_flag),
			ChromaLocInfoPresentFlag:           flag(vui.Chroma_loc_info_present_flag),
			NeutralChromaIndicationFlag:        flag(vui.Neutral_chroma_indication_flag),
			FieldSeqFlag:                       flag(vui.Field_seq_flag),
			FrameFieldInfoPresentFlag:          flag(vui.Frame_field_info_present_flag),
			DefaultDisplayWindowFlag:           flag(vui.Default_display_window_flag),
			VuiTimingInfoPresentFlag:           flag(vui.Vui_timing_info_present_flag),
			VuiPocProportionalToTimingFlag:     flag(vui.Vui_poc_proportional_to_timing_flag),
			VuiHrdParametersPresentFlag:        flag(vui.Vui_hrd_parameters_present_flag),
			BitstreamRestrictionFlag:           flag(vui.Bitstream_restriction_flag),
			TilesFixedStructureFlag:            flag(vui.Tiles_fixed_structure_flag),
			MotionVectorsOverPicBoundariesFlag: flag(vui.Motion_vectors_over_pic_boundaries_flag),
			RestrictedRefPicListsFlag:          flag(vui.Restricted_ref_pic_lists_flag),
		},
		AspectRatioIdc:                 vui.Aspect_ratio_idc,
		SarWidth:                       vui.Sar_width,
		SarHeight:                      vui.Sar_height,
		VideoFormat:                    vui.Video_format,
		ColourPrimaries:                vui.Colour_primaries,
		TransferCharacteristics:        vui.Transfer_characteristics,
		MatrixCoeffs:                   vui.Matrix_coefficients,
		ChromaSampleLocTypeTopField:    vui.Chroma_sample_loc_type_top_field,
		ChromaSampleLocTypeBottomField: vui.Chroma_sample_loc_type_bottom_field,
		DefDispWinLeftOffset:           vui.Def_disp_win_left_offset,
		DefDispWinRightOffset:          vui.Def_disp_win_right_offset,
		DefDispWinTopOffset:            vui.Def_disp_win_top_offset,
		DefDispWinBottomOffset:         vui.Def_disp_win_bottom_offset,
		VuiNumUnitsInTick:              vui.Vui_num_units_in_tick,
		VuiTimeScale:                   vui.Vui_time_scale,
		VuiNumTicksPocDiffOneMinus1:    vui.Vui_num_ticks_poc_diff_one_minus1,
		MinSpatialSegmentationIdc:      vui.Min_spatial_segmentation_idc,
		MaxBytesPerPicDenom:            vui.Max_bytes_per_pic_denom,
		MaxBitsPerMinCuDenom:           vui.Max_bits_per_min_cu_denom,
		Log2MaxMvLengthHorizontal:      vui.Log2_max_mv_length_horizontal,
		Log2MaxMvLengthVertical:        vui.Log2_max_mv_length_vertical,
	}
}

// ConvertSPS 转换序列参数集，每次调用返回新的描述符。
// VUI 仅在 vui_parameters_present_flag 置位时填充，扩展字段仅在对应扩展标志置位时填充。
func ConvertSPS(sps *hevc.H265RawSPS) *SequenceParameterSet {
	mgr := &DecPicBufMgr{}
	copy(mgr.MaxLatencyIncreasePlus1[:], sps.Sps_max_latency_increase_plus1[:])
	copy(mgr.MaxDecPicBufferingMinus1[:], sps.Sps_max_dec_pic_buffering_minus1[:])
	copy(mgr.MaxNumReorderPics[:], sps.Sps_max_num_reorder_pics[:])

	ptl := &sps.Profile_tier_level
	d := &SequenceParameterSet{
		Flags: SpsFlags{
			SpsTemporalIdNestingFlag:        flag(sps.Sps_temporal_id_nesting_flag),
			SeparateColourPlaneFlag:         flag(sps.Separate_colour_plane_flag),
			ScalingListEnabledFlag:          flag(sps.Scaling_list_enabled_flag),
			SpsScalingListDataPresentFlag:   flag(sps.Sps_scaling_list_data_present_flag),
			AmpEnabledFlag:                  flag(sps.Amp_enabled_flag),
			SampleAdaptiveOffsetEnabledFlag: flag(sps.Sample_adaptive_offset_enabled_flag),
			PcmEnabledFlag:                  flag(sps.Pcm_enabled_flag),
			PcmLoopFilterDisabledFlag:       flag(sps.Pcm_loop_filter_disabled_flag),
			LongTermRefPicsPresentFlag:      flag(sps.Long_term_ref_pics_present_flag),
			SpsTemporalMvpEnabledFlag:       flag(sps.Sps_temporal_mvp_enabled_flag),
			StrongIntraSmoothingEnabledFlag: flag(sps.Strong_intra_smoothing_enabled_flag),
			VuiParametersPresentFlag:        flag(sps.Vui_parameters_present_flag),
			SpsExtensionPresentFlag:         flag(sps.Sps_extension_present_flag),
			SpsRangeExtensionFlag:           flag(sps.Sps_range_extension_flag),
			SpsSccExtensionFlag:             flag(sps.Sps_scc_extension_flag),
		},
		ProfileIdc:                           ProfileIdcOf(ptl.General_profile_idc),
		LevelIdc:                             LevelIdc(ptl.General_level_idc),
		PicWidthInLumaSamples:                uint32(sps.Pic_width_in_luma_samples),
		PicHeightInLumaSamples:               uint32(sps.Pic_height_in_luma_samples),
		SpsVideoParameterSetId:               sps.Sps_video_parameter_set_id,
		SpsMaxSubLayersMinus1:                sps.Sps_max_sub_layers_minus1,
		SpsSeqParameterSetId:                 sps.Sps_seq_parameter_set_id,
		ChromaFormatIdc:                      sps.Chroma_format_idc,
		BitDepthLumaMinus8:                   sps.Bit_depth_luma_minus8,
		BitDepthChromaMinus8:                 sps.Bit_depth_chroma_minus8,
		Log2MaxPicOrderCntLsbMinus4:          sps.Log2_max_pic_order_cnt_lsb_minus4,
		Log2MinLumaCodingBlockSizeMinus3:     sps.Log2_min_luma_coding_block_size_minus3,
		Log2DiffMaxMinLumaCodingBlockSize:    sps.Log2_diff_max_min_luma_coding_block_size,
		Log2MinLumaTransformBlockSizeMinus2:  sps.Log2_min_luma_transform_block_size_minus2,
		Log2DiffMaxMinLumaTransformBlockSize: sps.Log2_diff_max_min_luma_transform_block_size,
		MaxTransformHierarchyDepthInter:      sps.Max_transform_hierarchy_depth_inter,
		MaxTransformHierarchyDepthIntra:      sps.Max_transform_hierarchy_depth_intra,
		NumShortTermRefPicSets:               sps.Num_short_term_ref_pic_sets,
		NumLongTermRefPicsSps:                sps.Num_long_term_ref_pics_sps,
		PcmSampleBitDepthLumaMinus1:          sps.Pcm_sample_bit_depth_luma_minus1,
		PcmSampleBitDepthChromaMinus1:        sps.Pcm_sample_bit_depth_chroma_minus1,
		Log2MinPcmLumaCodingBlockSizeMinus3:  sps.Log2_min_pcm_luma_coding_block_size_minus3,
		Log2DiffMaxMinPcmLumaCodingBlockSize: sps.Log2_diff_max_min_pcm_luma_coding_block_size,
		ConfWinLeftOffset:                    uint32(sps.Conf_win_left_offset),
		ConfWinRightOffset:                   uint32(sps.Conf_win_right_offset),
		ConfWinTopOffset:                     uint32(sps.Conf_win_top_offset),
		ConfWinBottomOffset:                  uint32(sps.Conf_win_bottom_offset),
		DecPicBufMgr:                         mgr,
	}

	if sps.Sps_range_extension_flag == 1 {
		d.Flags.TransformSkipRotationEnabledFlag = flag(sps.Transform_skip_rotation_enabled_flag)
		d.Flags.TransformSkipContextEnabledFlag = flag(sps.Transform_skip_context_enabled_flag)
		d.Flags.ImplicitRdpcmEnabledFlag = flag(sps.Implicit_rdpcm_enabled_flag)
		d.Flags.ExplicitRdpcmEnabledFlag = flag(sps.Explicit_rdpcm_enabled_flag)
		d.Flags.ExtendedPrecisionProcessingFlag = flag(sps.Extended_precision_processing_flag)
		d.Flags.IntraSmoothingDisabledFlag = flag(sps.Intra_smoothing_disabled_flag)
		d.Flags.HighPrecisionOffsetsEnabledFlag = flag(sps.High_precision_offsets_enabled_flag)
		d.Flags.PersistentRiceAdaptationEnabledFlag = flag(sps.Persistent_rice_adaptation_enabled_flag)
		d.Flags.CabacBypassAlignmentEnabledFlag = flag(sps.Cabac_bypass_alignment_enabled_flag)
	}

	if sps.Sps_scc_extension_flag == 1 {
		d.Flags.SpsCurrPicRefEnabledFlag = flag(sps.Sps_curr_pic_ref_enabled_flag)
		d.Flags.PaletteModeEnabledFlag = flag(sps.Palette_mode_enabled_flag)
		d.Flags.SpsPalettePredictorInitializerPresentFlag = flag(sps.Sps_palette_predictor_initializers_present_flag)
		d.Flags.IntraBoundaryFilteringDisabledFlag = flag(sps.Intra_boundary_filtering_disabled_flag)
		d.PaletteMaxSize = sps.Palette_max_size
		d.DeltaPaletteMaxPredictorSize = sps.Delta_palette_max_predictor_size
		d.MotionVectorResolutionControlIdc = sps.Motion_vector_resolution_control_idc
		d.SpsNumPalettePredictorInitializerMinus1 = sps.Sps_num_palette_predictor_initializers_minus1
	}

	if sps.Vui_parameters_present_flag == 1 {
		d.SequenceParameterSetVui = ConvertVUI(&sps.Vui)
	}
	return d
}

// ConvertPPS 转换图像参数集，每次调用返回新的描述符。
// tile 宽高表按原样拷贝，扩展字段仅在对应扩展标志置位时填充。
func ConvertPPS(pps *hevc.H265RawPPS) *PictureParameterSet {
	d := &PictureParameterSet{
		Flags: PpsFlags{
			DependentSliceSegmentsEnabledFlag:      flag(pps.Dependent_slice_segments_enabled_flag),
			OutputFlagPresentFlag:                  flag(pps.Output_flag_present_flag),
			SignDataHidingEnabledFlag:              flag(pps.Sign_data_hiding_enabled_flag),
			CabacInitPresentFlag:                   flag(pps.Cabac_init_present_flag),
			ConstrainedIntraPredFlag:               flag(pps.Constrained_intra_pred_flag),
			TransformSkipEnabledFlag:               flag(pps.Transform_skip_enabled_flag),
			CuQpDeltaEnabledFlag:                   flag(pps.Cu_qp_delta_enabled_flag),
			PpsSliceChromaQpOffsetsPresentFlag:     flag(pps.Pps_slice_chroma_qp_offsets_present_flag),
			WeightedPredFlag:                       flag(pps.Weighted_pred_flag),
			WeightedBipredFlag:                     flag(pps.Weighted_bipred_flag),
			TransquantBypassEnabledFlag:            flag(pps.Transquant_bypass_enabled_flag),
			TilesEnabledFlag:                       flag(pps.Tiles_enabled_flag),
			EntropyCodingSyncEnabledFlag:           flag(pps.Entropy_coding_sync_enabled_flag),
			UniformSpacingFlag:                     flag(pps.Uniform_spacing_flag),
			LoopFilterAcrossTilesEnabledFlag:       flag(pps.Loop_filter_across_tiles_enabled_flag),
			PpsLoopFilterAcrossSlicesEnabledFlag:   flag(pps.Pps_loop_filter_across_slices_enabled_flag),
			DeblockingFilterControlPresentFlag:     flag(pps.Deblocking_filter_control_present_flag),
			DeblockingFilterOverrideEnabledFlag:    flag(pps.Deblocking_filter_override_enabled_flag),
			PpsDeblockingFilterDisabledFlag:        flag(pps.Pps_deblocking_filter_disabled_flag),
			PpsScalingListDataPresentFlag:          flag(pps.Pps_scaling_list_data_present_flag),
			ListsModificationPresentFlag:           flag(pps.Lists_modification_present_flag),
			SliceSegmentHeaderExtensionPresentFlag: flag(pps.Slice_segment_header_extension_present_flag),
			PpsExtensionPresentFlag:                flag(pps.Pps_extension_present_flag),
			PpsRangeExtensionFlag:                  flag(pps.Pps_range_extension_flag),
		},
		PpsPicParameterSetId:           pps.Pps_pic_parameter_set_id,
		PpsSeqParameterSetId:           pps.Pps_seq_parameter_set_id,
		NumExtraSliceHeaderBits:        pps.Num_extra_slice_header_bits,
		NumRefIdxL0DefaultActiveMinus1: pps.Num_ref_idx_l0_default_active_minus1,
		NumRefIdxL1DefaultActiveMinus1: pps.Num_ref_idx_l1_default_active_minus1,
		InitQpMinus26:                  pps.Init_qp_minus26,
		DiffCuQpDeltaDepth:             pps.Diff_cu_qp_delta_depth,
		PpsCbQpOffset:                  pps.Pps_cb_qp_offset,
		PpsCrQpOffset:                  pps.Pps_cr_qp_offset,
		NumTileColumnsMinus1:           pps.Num_tile_columns_minus1,
		NumTileRowsMinus1:              pps.Num_tile_rows_minus1,
		PpsBetaOffsetDiv2:              pps.Pps_beta_offset_div2,
		PpsTcOffsetDiv2:                pps.Pps_tc_offset_div2,
		Log2ParallelMergeLevelMinus2:   pps.Log2_parallel_merge_level_minus2,
	}
	copy(d.ColumnWidthMinus1[:], pps.Column_width_minus1[:])
	copy(d.RowHeightMinus1[:], pps.Row_height_minus1[:])

	if pps.Pps_range_extension_flag == 1 {
		d.Flags.CrossComponentPredictionEnabledFlag = flag(pps.Cross_component_prediction_enabled_flag)
		d.Flags.ChromaQpOffsetListEnabledFlag = flag(pps.Chroma_qp_offset_list_enabled_flag)
		d.Log2MaxTransformSkipBlockSizeMinus2 = pps.Log2_max_transform_skip_block_size_minus2
		d.DiffCuChromaQpOffsetDepth = pps.Diff_cu_chroma_qp_offset_depth
		d.ChromaQpOffsetListLenMinus1 = pps.Chroma_qp_offset_list_len_minus1
		copy(d.CbQpOffsetList[:], pps.Cb_qp_offset_list[:])
		copy(d.CrQpOffsetList[:], pps.Cr_qp_offset_list[:])
		d.Log2SaoOffsetScaleLuma = pps.Log2_sao_offset_scale_luma
		d.Log2SaoOffsetScaleChroma = pps.Log2_sao_offset_scale_chroma
	}

	if pps.Pps_scc_extension_flag == 1 {
		d.Flags.PpsCurrPicRefEnabledFlag = flag(pps.Pps_curr_pic_ref_enabled_flag)
		d.Flags.ResidualAdaptiveColourTransformEnabledFlag = flag(pps.Residual_adaptive_colour_transform_enabled_flag)
		d.Flags.PpsSliceActQpOffsetsPresentFlag = flag(pps.Pps_slice_act_qp_offsets_present_flag)
		d.Flags.PpsPalettePredictorInitializerPresentFlag = flag(pps.Pps_palette_predictor_initializers_present_flag)
		d.Flags.MonochromePaletteFlag = flag(pps.Monochrome_palette_flag)
		d.PpsActYQpOffsetPlus5 = pps.Pps_act_y_qp_offset_plus5
		d.PpsActCbQpOffsetPlus5 = pps.Pps_act_cb_qp_offset_plus5
		d.PpsActCrQpOffsetPlus3 = pps.Pps_act_cr_qp_offset_plus3
		d.PpsNumPalettePredictorInitializers = pps.Pps_num_palette_predictor_initializers
		d.LumaBitDepthEntryMinus8 = pps.Luma_bit_depth_entry_minus8
		d.ChromaBitDepthEntryMinus8 = pps.Chroma_bit_depth_entry_minus8
	}
	return d
}
