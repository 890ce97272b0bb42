// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/cnotch/hevcparser/av/decoder"
	"github.com/cnotch/hevcparser/media/cache"
	"github.com/cnotch/hevcparser/stats"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) []byte {
	b, _ := base64.StdEncoding.DecodeString(s)
	return b
}

var (
	testVPS      = b64("QAEMAf//AWAAAAMAkAAAAwAAAwBdlZgJ")
	testSPS      = b64("QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC")
	testSPSRange = b64("QgEBBAgAAAMAkAAAAwAAAwB7oAPAgBEHy5ZXkk2b6/tgKJA=")
	testPPS      = b64("RAFQTiWimCaChYhzIWQWkmQtamg=") // id 1, sps 0

	// 片段头前缀：first_slice_segment_in_pic_flag, [no_output_of_prior_pics_flag], pps id 1
	idrFirst   = []byte{0x26, 0x01, 0x90, 0xaf, 0x00}
	idrNext    = []byte{0x26, 0x01, 0x10, 0x55}
	trailFirst = []byte{0x02, 0x01, 0xa0, 0x12}
	trailNext  = []byte{0x02, 0x01, 0x20, 0x34}
	prefixSEI  = []byte{0x4e, 0x01, 0x05, 0x01, 0x80}
)

var errDecode = errors.New("decode failure")

type recordBackend struct {
	*ProbeBackend
	pictures   []decoder.PictureData
	timestamps []int64
	failDecode bool
}

func newRecordBackend() *recordBackend {
	return &recordBackend{ProbeBackend: NewProbeBackend()}
}

func (b *recordBackend) DecodePicture(pd *decoder.PictureData) error {
	if b.failDecode {
		return errDecode
	}
	if err := b.ProbeBackend.DecodePicture(pd); err != nil {
		return err
	}
	b.pictures = append(b.pictures, *pd)
	return nil
}

func (b *recordBackend) DisplayPicture(buf decoder.PictureBuffer, timestamp int64) error {
	b.timestamps = append(b.timestamps, timestamp)
	return b.ProbeBackend.DisplayPicture(buf, timestamp)
}

func runStream(t *testing.T, backend decoder.Backend, opts decoder.Options, nalus [][]byte, options ...Option) (*Stream, stats.Decode) {
	decode := stats.NewDecode()
	options = append(options, DecodeStats(decode), FlowStats(stats.NewFlow()))
	s := NewStream("test", decoder.New(backend, opts, nil), nil, options...)
	for _, nalu := range nalus {
		require.NoError(t, s.WriteNALU(nalu))
	}
	require.NoError(t, s.Close())
	s.Wait()
	return s, decode
}

func TestStream_Decode(t *testing.T) {
	backend := newRecordBackend()
	s, decode := runStream(t, backend, decoder.Options{}, [][]byte{
		testVPS, testSPS, testPPS,
		idrFirst, idrNext,
		trailFirst, trailNext,
		prefixSEI,
		trailFirst,
	})

	report := backend.Report()
	assert.Equal(t, 1, report.Sequences)
	assert.Equal(t, 1280, report.Sequence.CodedWidth)
	assert.Equal(t, 6, report.Sequence.MinNumDecodeSurfaces)
	assert.Equal(t, 1, report.SpsUpdates)
	assert.Equal(t, 1, report.PpsUpdates)
	assert.Equal(t, 3, report.Pictures)
	assert.Equal(t, 5, report.Slices)
	assert.Equal(t, 3, report.Displayed)
	assert.Equal(t, 1, report.Unhandled)
	assert.Equal(t, 2, report.MaxRefs)
	assert.Equal(t, 0, report.OutstandingBuffers)

	require.Len(t, backend.pictures, 3)
	t.Run("idr", func(t *testing.T) {
		pd := backend.pictures[0]
		assert.Equal(t, int32(0), pd.PictureOrderCount)
		assert.True(t, pd.Hevc.IrapPicFlag)
		assert.True(t, pd.Hevc.IdrPicFlag)
		assert.True(t, pd.IntraPicFlag)
		assert.Equal(t, 2, pd.NumSlices)
		assert.Equal(t, 0, pd.Hevc.Refs.Len())
	})

	t.Run("refs", func(t *testing.T) {
		pd := backend.pictures[1]
		assert.Equal(t, int32(1), pd.PictureOrderCount)
		assert.False(t, pd.Hevc.IrapPicFlag)
		assert.Equal(t, int32(1), pd.Hevc.NumPocStCurrBefore)
		assert.Equal(t, int8(0), pd.Hevc.Refs.StCurrBefore[0])

		pd = backend.pictures[2]
		assert.Equal(t, int32(2), pd.PictureOrderCount)
		assert.Equal(t, 1, pd.NumSlices)
		assert.Equal(t, int32(2), pd.Hevc.NumPocStCurrBefore)
		assert.Equal(t, []int8{1, 0, decoder.UnresolvedIndex}, pd.Hevc.Refs.StCurrBefore[:3])
		assert.Equal(t, int8(decoder.UnresolvedIndex), pd.Hevc.Refs.StCurrAfter[0])
	})

	t.Run("global_descriptors", func(t *testing.T) {
		assert.Same(t, backend.pictures[0].Hevc.StdSPS, backend.pictures[2].Hevc.StdSPS)
		assert.NotNil(t, backend.pictures[0].Hevc.SPSToken)
	})

	t.Run("timestamps", func(t *testing.T) {
		num, den := 24000.0, 1001.0
		duration := int64(100 * float64(time.Second) * den / num)
		assert.Equal(t, []int64{0, duration / 100, 2 * duration / 100}, backend.timestamps)
	})

	t.Run("stats", func(t *testing.T) {
		sample := decode.GetSample()
		assert.Equal(t, int64(9), sample.NALUs)
		assert.Equal(t, int64(5), sample.Slices)
		assert.Equal(t, int64(3), sample.Pictures)
		assert.Equal(t, int64(1), sample.Sequences)
		assert.Equal(t, int64(3), sample.ParamUpdates)
		assert.Equal(t, int64(0), sample.Skipped)
		assert.Equal(t, int64(0), sample.PictureErrors)
		assert.Equal(t, "test", s.Info().Name)
		assert.Equal(t, 3, s.ParamSets().Len())
	})
}

func TestStream_OutOfBandParams(t *testing.T) {
	backend := newRecordBackend()
	runStream(t, backend, decoder.Options{OutOfBandPictureParams: true}, [][]byte{
		testVPS, testSPS, testPPS, idrFirst, trailFirst,
	})

	require.Len(t, backend.pictures, 2)
	assert.NotSame(t, backend.pictures[0].Hevc.StdSPS, backend.pictures[1].Hevc.StdSPS)
	assert.Equal(t, backend.pictures[0].Hevc.StdSPS, backend.pictures[1].Hevc.StdSPS)
	assert.Equal(t, 1, backend.Report().SpsUpdates)
}

func TestStream_Skips(t *testing.T) {
	tests := []struct {
		name        string
		nalus       [][]byte
		wantPics    int
		wantSkipped int64
	}{
		{"wait_irap", [][]byte{testVPS, testSPS, testPPS, trailFirst, trailNext, idrFirst}, 1, 2},
		{"missing_pps", [][]byte{testVPS, testSPS, idrFirst, idrNext}, 0, 2},
		{"pps_without_sps", [][]byte{testVPS, testPPS, idrFirst}, 0, 2},
		{"lost_first_slice", [][]byte{testVPS, testSPS, testPPS, idrNext, idrFirst}, 1, 1},
		{"short_nalu", [][]byte{{0x26}, testVPS, testSPS, testPPS, idrFirst}, 1, 1},
		{"bad_sps", [][]byte{{0x42, 0x01, 0xff}, testVPS}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newRecordBackend()
			_, decode := runStream(t, backend, decoder.Options{}, tt.nalus)
			assert.Equal(t, tt.wantPics, backend.Report().Pictures)
			assert.Equal(t, tt.wantSkipped, decode.GetSample().Skipped)
			assert.Equal(t, 0, backend.Report().OutstandingBuffers)
		})
	}
}

func TestStream_NewSequence(t *testing.T) {
	backend := newRecordBackend()
	_, decode := runStream(t, backend, decoder.Options{}, [][]byte{
		testVPS, testSPS, testPPS, idrFirst, trailFirst,
		testSPS, idrFirst, // 相同的 SPS 不产生新序列
		testSPSRange, testPPS, idrFirst, trailFirst,
	})

	report := backend.Report()
	assert.Equal(t, 2, report.Sequences)
	assert.Equal(t, 1920, report.Sequence.CodedWidth)
	assert.Equal(t, 2, report.SpsUpdates)
	assert.Equal(t, 5, report.Pictures)
	assert.Equal(t, int64(2), decode.GetSample().Sequences)
	assert.Equal(t, 0, report.OutstandingBuffers)
}

func TestStream_PictureErrors(t *testing.T) {
	backend := newRecordBackend()
	backend.failDecode = true
	_, decode := runStream(t, backend, decoder.Options{}, [][]byte{
		testVPS, testSPS, testPPS, idrFirst, trailFirst, trailFirst,
	})

	sample := decode.GetSample()
	assert.Equal(t, int64(0), sample.Pictures)
	assert.Equal(t, int64(3), sample.PictureErrors)
	assert.Equal(t, 0, backend.Report().Displayed)
	assert.Equal(t, 0, backend.Report().OutstandingBuffers)
}

func TestStream_Seed(t *testing.T) {
	seed := cache.NewParamSetCache()
	for _, ps := range [][]byte{testVPS, testSPS, testPPS} {
		require.True(t, seed.CacheNALU(ps))
	}

	backend := newRecordBackend()
	runStream(t, backend, decoder.Options{}, [][]byte{idrFirst, trailFirst}, Seed(seed))
	assert.Equal(t, 2, backend.Report().Pictures)
	assert.Equal(t, 1, backend.Report().SpsUpdates)
}

func TestStream_NoBackend(t *testing.T) {
	_, decode := runStream(t, nil, decoder.Options{}, [][]byte{
		testVPS, testSPS, testPPS, idrFirst, trailFirst, prefixSEI,
	})
	assert.Equal(t, int64(2), decode.GetSample().Pictures)
}

func TestStream_Close(t *testing.T) {
	s := NewStream("closed", decoder.New(nil, decoder.Options{}, nil), nil)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.Equal(t, ErrStreamClosed, s.WriteNALU(idrFirst))
	s.Wait()
}
