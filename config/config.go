// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
)

// 输入格式
const (
	FormatAuto   = "auto"
	FormatAnnexB = "annexb"
	FormatRTP    = "rtp"
	FormatHVCC   = "hvcc"
)

// config 解析器配置
type config struct {
	OutOfBandPicParams bool      `json:"oob_pic_params"`   // 每幅图像独立派生参数集描述符
	MaxRefSlots        int       `json:"max_ref_slots"`    // 参考表容量
	Profile            string    `json:"profile"`          // 输入的 profile 名称
	FpsNum             int       `json:"fps_num"`          // 输入帧率分子，0 表示从 SPS 获取
	FpsDen             int       `json:"fps_den"`          // 输入帧率分母
	StatsInterval      int       `json:"stats_interval"`   // 统计输出间隔（秒），0 表示关闭
	InputFormat        string    `json:"input_format"`     // 输入格式
	SdpPath            string    `json:"sdp,omitempty"`    // 预置参数集的 SDP 文件
	ReportPath         string    `json:"report,omitempty"` // 解析结果的 JSON 文件
	Log                LogConfig `json:"log"`              // 日志配置
}

func (c *config) initFlags() {
	flag.BoolVar(&c.OutOfBandPicParams, "oob-pic-params", false,
		"Determines if sps/pps descriptors are derived for every picture")
	flag.IntVar(&c.MaxRefSlots, "max-ref-slots", 16,
		"Set the maximum number of reference slots (1~16)")
	flag.StringVar(&c.Profile, "profile", "", "Set the profile name of the input")
	flag.IntVar(&c.FpsNum, "fps-num", 0,
		"Set the frame rate numerator, 0 means using the timing info in sps")
	flag.IntVar(&c.FpsDen, "fps-den", 0, "Set the frame rate denominator")
	flag.IntVar(&c.StatsInterval, "stats-interval", 5,
		"Set the interval in seconds to log statistics, 0 disables it")
	flag.StringVar(&c.InputFormat, "input-format", FormatAuto,
		"Set the input format (auto|annexb|rtp|hvcc)")
	flag.StringVar(&c.SdpPath, "sdp", "",
		"Set the sdp file to seed the parameter sets")
	flag.StringVar(&c.ReportPath, "report", "",
		"Set the json file to write the parse results to")

	// 初始化日志配置
	c.Log.initFlags()
}

func (c *config) normalize() {
	if c.MaxRefSlots < 1 || c.MaxRefSlots > 16 {
		c.MaxRefSlots = 16
	}
	if c.StatsInterval < 0 {
		c.StatsInterval = 0
	}
	switch c.InputFormat {
	case FormatAnnexB, FormatRTP, FormatHVCC:
	default:
		c.InputFormat = FormatAuto
	}
}
