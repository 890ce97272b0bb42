// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

// VideoMeta 视频元数据
type VideoMeta struct {
	Codec          string  `json:"codec"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	FixedFrameRate bool    `json:"fixedframerate,omitempty"`
	FrameRate      float64 `json:"framerate,omitempty"`
	DataRate       float64 `json:"datarate,omitempty"`
	ClockRate      int     `json:"clockrate,omitempty"`
	Profile        string  `json:"profile,omitempty"`
	Sps            []byte  `json:"-"`
	Pps            []byte  `json:"-"`
	Vps            []byte  `json:"-"`
}

// ParameterSets 按 VPS、SPS、PPS 顺序返回非空的参数集
func (vm *VideoMeta) ParameterSets() [][]byte {
	pss := make([][]byte, 0, 3)
	for _, ps := range [][]byte{vm.Vps, vm.Sps, vm.Pps} {
		if len(ps) > 0 {
			pss = append(pss, ps)
		}
	}
	return pss
}

// WriteParameterSets 把参数集作为帧写入 w
func (vm *VideoMeta) WriteParameterSets(w FrameWriter) error {
	for _, ps := range vm.ParameterSets() {
		if err := w.WriteFrame(&Frame{Payload: ps}); err != nil {
			return err
		}
	}
	return nil
}
