package mp4encoder

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// timescale of the video track: one tick per millisecond.
const timescale = 1000

// mux wraps H.264 access units into a fragmented MP4 with one sample per
// unit and the given per-sample durations.
func mux(units []accessUnit, durations []time.Duration, width, height int) ([]byte, error) {
	if len(units) == 0 {
		return nil, ErrNoFrames
	}
	if len(units) != len(durations) {
		return nil, fmt.Errorf("%w: %d units, %d durations", ErrFrameCountMismatch, len(units), len(durations))
	}

	const trackID = 1

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "und")
	trak := init.Moov.Trak

	sps, pps, err := extractSPSPPS(units)
	if err != nil {
		return nil, fmt.Errorf("extract SPS/PPS: %w", err)
	}
	avcC, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{pps}, true)
	if err != nil {
		return nil, fmt.Errorf("create avcC: %w", err)
	}

	avc1 := mp4.CreateVisualSampleEntryBox("avc1", uint16(width), uint16(height), avcC)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(avc1)
	trak.Tkhd.Width = mp4.Fixed32(width << 16)
	trak.Tkhd.Height = mp4.Fixed32(height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}

	var decodeTime uint64
	for i, u := range units {
		dur := uint32(durations[i].Milliseconds())
		if dur == 0 {
			dur = 1
		}
		flags := mp4.NonSyncSampleFlags
		if u.keyframe {
			flags = mp4.SyncSampleFlags
		}
		data := toAVCC(u)
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(data)),
				Dur:   dur,
			},
			DecodeTime: decodeTime,
			Data:       data,
		})
		decodeTime += uint64(dur)
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}
	return buf.Bytes(), nil
}
