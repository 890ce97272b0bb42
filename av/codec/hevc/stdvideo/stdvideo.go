// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stdvideo 定义解码后端使用的 H.265 固定布局参数描述符
// (对应 Vulkan StdVideoH265*)，并提供从已解析参数集到描述符的转换。
package stdvideo

// 固定数组的长度
const (
	SubLayersListSize              = 7
	ChromaQpOffsetListSize         = 6
	ChromaQpOffsetTileColsListSize = 19
	ChromaQpOffsetTileRowsListSize = 21
)

// ProfileIdc 描述符中的 profile
type ProfileIdc uint32

// ProfileIdc 的取值
const (
	ProfileIdcMain                  ProfileIdc = 1
	ProfileIdcMain10                ProfileIdc = 2
	ProfileIdcMainStillPicture      ProfileIdc = 3
	ProfileIdcFormatRangeExtensions ProfileIdc = 4
	ProfileIdcSccExtensions         ProfileIdc = 9
	ProfileIdcInvalid               ProfileIdc = 0x7FFFFFFF
)

var profileNames = map[ProfileIdc]string{
	ProfileIdcMain:                  "Main",
	ProfileIdcMain10:                "Main10",
	ProfileIdcMainStillPicture:      "MainStillPicture",
	ProfileIdcFormatRangeExtensions: "FormatRangeExtensions",
	ProfileIdcSccExtensions:         "SccExtensions",
}

func (p ProfileIdc) String() string {
	if name, ok := profileNames[p]; ok {
		return name
	}
	return "Invalid"
}

// LevelIdc general_level_idc 原值 (level * 30)
type LevelIdc uint32

// DecPicBufMgr 各子层的解码图像缓冲限制
type DecPicBufMgr struct {
	MaxLatencyIncreasePlus1  [SubLayersListSize]uint32
	MaxDecPicBufferingMinus1 [SubLayersListSize]uint8
	MaxNumReorderPics        [SubLayersListSize]uint8
}

// VideoParameterSetFlags VPS 标志
type VideoParameterSetFlags struct {
	VpsTemporalIdNestingFlag           bool
	VpsSubLayerOrderingInfoPresentFlag bool
	VpsTimingInfoPresentFlag           bool
	VpsPocProportionalToTimingFlag     bool
}

// VideoParameterSet VPS 描述符
type VideoParameterSet struct {
	Flags                       VideoParameterSetFlags
	VpsVideoParameterSetId      uint8
	VpsMaxSubLayersMinus1       uint8
	VpsNumUnitsInTick           uint32
	VpsTimeScale                uint32
	VpsNumTicksPocDiffOneMinus1 uint32
	DecPicBufMgr                *DecPicBufMgr
}

// SequenceParameterSetVuiFlags VUI 标志
type SequenceParameterSetVuiFlags struct {
	AspectRatioInfoPresentFlag         bool
	OverscanInfoPresentFlag            bool
	OverscanAppropriateFlag            bool
	VideoSignalTypePresentFlag         bool
	VideoFullRangeFlag                 bool
	ColourDescriptionPresentFlag       bool
	ChromaLocInfoPresentFlag           bool
	NeutralChromaIndicationFlag        bool
	FieldSeqFlag                       bool
	FrameFieldInfoPresentFlag          bool
	DefaultDisplayWindowFlag           bool
	VuiTimingInfoPresentFlag           bool
	VuiPocProportionalToTimingFlag     bool
	VuiHrdParametersPresentFlag        bool
	BitstreamRestrictionFlag           bool
	TilesFixedStructureFlag            bool
	MotionVectorsOverPicBoundariesFlag bool
	RestrictedRefPicListsFlag          bool
}

// SequenceParameterSetVui SPS 的 VUI 描述符
type SequenceParameterSetVui struct {
	Flags                          SequenceParameterSetVuiFlags
	AspectRatioIdc                 uint8
	SarWidth                       uint16
	SarHeight                      uint16
	VideoFormat                    uint8
	ColourPrimaries                uint8
	TransferCharacteristics        uint8
	MatrixCoeffs                   uint8
	ChromaSampleLocTypeTopField    uint8
	ChromaSampleLocTypeBottomField uint8
	DefDispWinLeftOffset           uint16
	DefDispWinRightOffset          uint16
	DefDispWinTopOffset            uint16
	DefDispWinBottomOffset         uint16
	VuiNumUnitsInTick              uint32
	VuiTimeScale                   uint32
	VuiNumTicksPocDiffOneMinus1    uint32
	MinSpatialSegmentationIdc      uint16
	MaxBytesPerPicDenom            uint8
	MaxBitsPerMinCuDenom           uint8
	Log2MaxMvLengthHorizontal      uint8
	Log2MaxMvLengthVertical        uint8
}

// SpsFlags SPS 标志
type SpsFlags struct {
	SpsTemporalIdNestingFlag        bool
	SeparateColourPlaneFlag         bool
	ScalingListEnabledFlag          bool
	SpsScalingListDataPresentFlag   bool
	AmpEnabledFlag                  bool
	SampleAdaptiveOffsetEnabledFlag bool
	PcmEnabledFlag                  bool
	PcmLoopFilterDisabledFlag       bool
	LongTermRefPicsPresentFlag      bool
	SpsTemporalMvpEnabledFlag       bool
	StrongIntraSmoothingEnabledFlag bool
	VuiParametersPresentFlag        bool
	SpsExtensionPresentFlag         bool
	SpsRangeExtensionFlag           bool
	SpsSccExtensionFlag             bool

	// range extension
	TransformSkipRotationEnabledFlag    bool
	TransformSkipContextEnabledFlag     bool
	ImplicitRdpcmEnabledFlag            bool
	ExplicitRdpcmEnabledFlag            bool
	ExtendedPrecisionProcessingFlag     bool
	IntraSmoothingDisabledFlag          bool
	HighPrecisionOffsetsEnabledFlag     bool
	PersistentRiceAdaptationEnabledFlag bool
	CabacBypassAlignmentEnabledFlag     bool

	// screen content coding extension
	SpsCurrPicRefEnabledFlag                  bool
	PaletteModeEnabledFlag                    bool
	SpsPalettePredictorInitializerPresentFlag bool
	IntraBoundaryFilteringDisabledFlag        bool
}

// SequenceParameterSet SPS 描述符
type SequenceParameterSet struct {
	Flags                                   SpsFlags
	ProfileIdc                              ProfileIdc
	LevelIdc                                LevelIdc
	PicWidthInLumaSamples                   uint32
	PicHeightInLumaSamples                  uint32
	SpsVideoParameterSetId                  uint8
	SpsMaxSubLayersMinus1                   uint8
	SpsSeqParameterSetId                    uint8
	ChromaFormatIdc                         uint8
	BitDepthLumaMinus8                      uint8
	BitDepthChromaMinus8                    uint8
	Log2MaxPicOrderCntLsbMinus4             uint8
	Log2MinLumaCodingBlockSizeMinus3        uint8
	Log2DiffMaxMinLumaCodingBlockSize       uint8
	Log2MinLumaTransformBlockSizeMinus2     uint8
	Log2DiffMaxMinLumaTransformBlockSize    uint8
	MaxTransformHierarchyDepthInter         uint8
	MaxTransformHierarchyDepthIntra         uint8
	NumShortTermRefPicSets                  uint8
	NumLongTermRefPicsSps                   uint8
	PcmSampleBitDepthLumaMinus1             uint8
	PcmSampleBitDepthChromaMinus1           uint8
	Log2MinPcmLumaCodingBlockSizeMinus3     uint8
	Log2DiffMaxMinPcmLumaCodingBlockSize    uint8
	ConfWinLeftOffset                       uint32
	ConfWinRightOffset                      uint32
	ConfWinTopOffset                        uint32
	ConfWinBottomOffset                     uint32
	PaletteMaxSize                          uint8
	DeltaPaletteMaxPredictorSize            uint8
	MotionVectorResolutionControlIdc        uint8
	SpsNumPalettePredictorInitializerMinus1 uint8
	DecPicBufMgr                            *DecPicBufMgr
	SequenceParameterSetVui                 *SequenceParameterSetVui
}

// PpsFlags PPS 标志
type PpsFlags struct {
	DependentSliceSegmentsEnabledFlag          bool
	OutputFlagPresentFlag                      bool
	SignDataHidingEnabledFlag                  bool
	CabacInitPresentFlag                       bool
	ConstrainedIntraPredFlag                   bool
	TransformSkipEnabledFlag                   bool
	CuQpDeltaEnabledFlag                       bool
	PpsSliceChromaQpOffsetsPresentFlag         bool
	WeightedPredFlag                           bool
	WeightedBipredFlag                         bool
	TransquantBypassEnabledFlag                bool
	TilesEnabledFlag                           bool
	EntropyCodingSyncEnabledFlag               bool
	UniformSpacingFlag                         bool
	LoopFilterAcrossTilesEnabledFlag           bool
	PpsLoopFilterAcrossSlicesEnabledFlag       bool
	DeblockingFilterControlPresentFlag         bool
	DeblockingFilterOverrideEnabledFlag        bool
	PpsDeblockingFilterDisabledFlag            bool
	PpsScalingListDataPresentFlag              bool
	ListsModificationPresentFlag               bool
	SliceSegmentHeaderExtensionPresentFlag     bool
	PpsExtensionPresentFlag                    bool
	CrossComponentPredictionEnabledFlag        bool
	ChromaQpOffsetListEnabledFlag              bool
	PpsCurrPicRefEnabledFlag                   bool
	ResidualAdaptiveColourTransformEnabledFlag bool
	PpsSliceActQpOffsetsPresentFlag            bool
	PpsPalettePredictorInitializerPresentFlag  bool
	MonochromePaletteFlag                      bool
	PpsRangeExtensionFlag                      bool
}

// PictureParameterSet PPS 描述符
type PictureParameterSet struct {
	Flags                               PpsFlags
	PpsPicParameterSetId                uint8
	PpsSeqParameterSetId                uint8
	NumExtraSliceHeaderBits             uint8
	NumRefIdxL0DefaultActiveMinus1      uint8
	NumRefIdxL1DefaultActiveMinus1      uint8
	InitQpMinus26                       int8
	DiffCuQpDeltaDepth                  uint8
	PpsCbQpOffset                       int8
	PpsCrQpOffset                       int8
	NumTileColumnsMinus1                uint8
	NumTileRowsMinus1                   uint8
	ColumnWidthMinus1                   [ChromaQpOffsetTileColsListSize]uint16
	RowHeightMinus1                     [ChromaQpOffsetTileRowsListSize]uint16
	PpsBetaOffsetDiv2                   int8
	PpsTcOffsetDiv2                     int8
	Log2ParallelMergeLevelMinus2        uint8
	Log2MaxTransformSkipBlockSizeMinus2 uint8
	DiffCuChromaQpOffsetDepth           uint8
	ChromaQpOffsetListLenMinus1         uint8
	CbQpOffsetList                      [ChromaQpOffsetListSize]int8
	CrQpOffsetList                      [ChromaQpOffsetListSize]int8
	Log2SaoOffsetScaleLuma              uint8
	Log2SaoOffsetScaleChroma            uint8
	PpsActYQpOffsetPlus5                int8
	PpsActCbQpOffsetPlus5               int8
	PpsActCrQpOffsetPlus3               int8
	PpsNumPalettePredictorInitializers  uint8
	LumaBitDepthEntryMinus8             uint8
	ChromaBitDepthEntryMinus8           uint8
}
