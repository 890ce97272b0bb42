// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cnotch/hevcparser/av/decoder"
	cfg "github.com/cnotch/loader"
	"github.com/cnotch/xlog"
)

// 服务名
const (
	Vendor  = "CAOHONGJU"
	Name    = "hevcparser"
	Version = "V1.0.0"
)

var (
	globalC *config
)

// InitConfig 初始化 Config
func InitConfig() {
	exe, err := os.Executable()
	if err != nil {
		xlog.Panic(err.Error())
	}

	configPath := filepath.Join(filepath.Dir(exe), Name+".conf")

	globalC = new(config)
	globalC.initFlags()

	// 创建或加载配置文件
	if err := cfg.Load(globalC,
		&cfg.JSONLoader{Path: configPath, CreatedIfNonExsit: true},
		&cfg.EnvLoader{Prefix: strings.ToUpper(Name)},
		&cfg.FlagLoader{}); err != nil {
		// 异常，直接退出
		xlog.Panic(err.Error())
	}
	globalC.normalize()

	// 初始化日志
	globalC.Log.initLogger()
}

// DecoderOptions 解码器选项
func DecoderOptions() decoder.Options {
	if globalC == nil {
		return decoder.Options{MaxRefSlots: decoder.MaxRefSlots}
	}
	return decoder.Options{
		OutOfBandPictureParams: globalC.OutOfBandPicParams,
		MaxRefSlots:            globalC.MaxRefSlots,
		Profile:                globalC.Profile,
		FpsNum:                 globalC.FpsNum,
		FpsDen:                 globalC.FpsDen,
	}
}

// StatsInterval 统计输出间隔，0 表示关闭
func StatsInterval() time.Duration {
	if globalC == nil {
		return 5 * time.Second
	}
	return time.Duration(globalC.StatsInterval) * time.Second
}

// InputFormat 输入格式
func InputFormat() string {
	if globalC == nil {
		return FormatAuto
	}
	return globalC.InputFormat
}

// SdpPath 预置参数集的 SDP 文件
func SdpPath() string {
	if globalC == nil {
		return ""
	}
	return globalC.SdpPath
}

// ReportPath 解析结果的 JSON 文件
func ReportPath() string {
	if globalC == nil {
		return ""
	}
	return globalC.ReportPath
}

// Inputs 命令行中的输入文件
func Inputs() []string {
	if !flag.Parsed() {
		return nil
	}
	return flag.Args()
}

// DetectFormat 根据配置和文件扩展名确定输入格式
func DetectFormat(path string) string {
	if f := InputFormat(); f != FormatAuto {
		return f
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rtp", ".rtpdump":
		return FormatRTP
	case ".hvcc":
		return FormatHVCC
	default:
		return FormatAnnexB
	}
}
