// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"sync"
	"syscall"

	"github.com/cnotch/hevcparser/av/codec"
	"github.com/cnotch/hevcparser/av/format/sdp"
	"github.com/cnotch/hevcparser/config"
	"github.com/cnotch/hevcparser/media"
	"github.com/cnotch/hevcparser/media/cache"
	"github.com/cnotch/hevcparser/stats"
	"github.com/cnotch/hevcparser/utils"
	"github.com/cnotch/scheduler"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Service 解析服务对象(程序的入口)
type Service struct {
	context context.Context
	cancel  context.CancelFunc
	logger  *xlog.Logger
	meta    *codec.VideoMeta     // SDP 中的视频元数据
	seed    *cache.ParamSetCache // 预置的参数集

	l       sync.Mutex
	results []*Result
}

// NewService 创建服务
func NewService(ctx context.Context, l *xlog.Logger) (s *Service, err error) {
	ctx, cancel := context.WithCancel(ctx)
	s = &Service{
		context: ctx,
		cancel:  cancel,
		logger:  l,
		seed:    cache.NewParamSetCache(),
	}

	if path := config.SdpPath(); path != "" {
		if err = s.loadSdp(path); err != nil {
			cancel()
			return nil, err
		}
	}

	// 启动定时输出统计
	if interval := config.StatsInterval(); interval > 0 {
		scheduler.PeriodFunc(interval, interval, s.logStats,
			"The task of logging decode statistics")
	}

	s.logger.Info("service configured")
	return s, nil
}

func (s *Service) loadSdp(path string) error {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read sdp `%s`", path)
	}

	meta := &codec.VideoMeta{}
	if err = sdp.ParseMetadata(string(raw), meta); err != nil {
		return errors.WithMessagef(err, "parse sdp `%s`", path)
	}

	for _, ps := range meta.ParameterSets() {
		if !s.seed.CacheNALU(ps) {
			s.logger.Warnf("ignore invalid parameter set in sdp `%s`", path)
		}
	}
	s.meta = meta
	s.logger.Infof("sdp loaded: %s %dx%d, %d parameter sets",
		meta.Codec, meta.Width, meta.Height, s.seed.Len())
	return nil
}

// Run 并发解析全部输入文件，返回第一个错误
func (s *Service) Run(inputs []string) error {
	defer s.Close()
	s.hookSignals()

	if len(inputs) == 0 {
		return errors.New("no input file")
	}

	g, ctx := errgroup.WithContext(s.context)
	g.SetLimit(runtime.NumCPU())
	for _, input := range inputs {
		path := input
		g.Go(func() error {
			result, err := s.ParseFile(ctx, path)
			if err != nil {
				return errors.WithMessagef(err, "parse `%s`", path)
			}
			s.logResult(result)
			s.l.Lock()
			s.results = append(s.results, result)
			s.l.Unlock()
			return nil
		})
	}

	err := g.Wait()
	s.logStats()

	if path := config.ReportPath(); path != "" {
		if werr := s.writeReport(path); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// writeReport 按输入名称顺序写出解析结果
func (s *Service) writeReport(path string) error {
	s.l.Lock()
	results := append([]*Result(nil), s.results...)
	s.l.Unlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Info.Name < results[j].Info.Name
	})
	if err := utils.EncodeJSONFile(path, results); err != nil {
		return errors.Wrapf(err, "write report `%s`", path)
	}
	s.logger.Infof("report written to %s", path)
	return nil
}

// Close 结束服务
func (s *Service) Close() {
	if s.cancel != nil {
		s.cancel()
	}

	// 停止计划任务
	jobs := scheduler.Jobs()
	for _, job := range jobs {
		job.Cancel()
	}

	// 清空注册
	media.UnregistAll()
}

func (s *Service) logResult(result *Result) {
	r := result.Report
	s.logger.Infof("%s: %d sequences (%dx%d, dpb %d), %d pictures, %d slices, %d bytes, max refs %d, unhandled %d",
		result.Info.Name, r.Sequences, r.Sequence.CodedWidth, r.Sequence.CodedHeight,
		r.Sequence.MinNumDecodeSurfaces, r.Pictures, r.Slices, r.BitstreamBytes, r.MaxRefs, r.Unhandled)
	if r.OutstandingBuffers != 0 {
		s.logger.Warnf("%s: %d picture buffers not released", result.Info.Name, r.OutstandingBuffers)
	}
}

func (s *Service) logStats() {
	decode := stats.TotalDecode.GetSample()
	flow := stats.TotalFlow.GetSample()
	proc := stats.MeasureRuntime()

	s.logger.Infof("streams %d, nalus %d, pictures %d, sequences %d, skipped %d, errors %d, in %dKB, out %dKB",
		media.Count(), decode.NALUs, decode.Pictures, decode.Sequences,
		decode.Skipped, decode.PictureErrors, flow.InBytes/1024, flow.OutBytes/1024)
	s.logger.Debugf("cpu %.2f%%, priv %dKB, heap %dKB, goroutines %d, uptime %ds",
		proc.CPU, proc.Priv, proc.HeapInuse, proc.Goroutines, proc.Uptime)
}

// OnSignal starts the signal processing and makes su
func (s *Service) hookSignals() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for sig := range c {
			s.onSignal(sig)
		}
	}()
}

// OnSignal will be called when a OS-level signal is received.
func (s *Service) onSignal(sig os.Signal) {
	switch sig {
	case syscall.SIGTERM:
		fallthrough
	case syscall.SIGINT:
		s.logger.Warn(fmt.Sprintf("received signal %s, exiting...", sig.String()))
		s.cancel()
	}
}
