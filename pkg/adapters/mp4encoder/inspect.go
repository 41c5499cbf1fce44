package mp4encoder

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Info describes the video track of an MP4 file.
type Info struct {
	Codec     string // "h264", "av1", "hevc" or "unknown"
	Width     int
	Height    int
	Samples   int
	Keyframes int
	Duration  time.Duration
}

// Inspect reads an MP4 file and reports its video track.
func Inspect(data []byte) (Info, error) {
	f, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := f.Moov
	if f.IsFragmented() && f.Init != nil {
		moov = f.Init.Moov
	}
	if moov == nil {
		return Info{}, ErrNoVideoTrack
	}

	var trak *mp4.TrakBox
	for _, t := range moov.Traks {
		if t.Mdia != nil && t.Mdia.Hdlr != nil && t.Mdia.Hdlr.HandlerType == "vide" {
			trak = t
			break
		}
	}
	if trak == nil {
		return Info{}, ErrNoVideoTrack
	}

	info := Info{
		Codec:  codecOf(trak),
		Width:  int(uint32(trak.Tkhd.Width) >> 16),
		Height: int(uint32(trak.Tkhd.Height) >> 16),
	}
	ts := uint32(timescale)
	if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale > 0 {
		ts = trak.Mdia.Mdhd.Timescale
	}

	if !f.IsFragmented() {
		stbl := trak.Mdia.Minf.Stbl
		if stbl.Stsz != nil {
			info.Samples = int(stbl.Stsz.SampleNumber)
		}
		if stbl.Stss != nil {
			info.Keyframes = len(stbl.Stss.SampleNumber)
		} else {
			info.Keyframes = info.Samples
		}
		if trak.Mdia.Mdhd != nil {
			info.Duration = ticks(trak.Mdia.Mdhd.Duration, ts)
		}
		return info, nil
	}

	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trak.Tkhd.TrackID {
				trex = t
			}
		}
	}

	var total uint64
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return Info{}, fmt.Errorf("get samples: %w", err)
			}
			for _, s := range samples {
				info.Samples++
				if s.Flags == mp4.SyncSampleFlags {
					info.Keyframes++
				}
				total += uint64(s.Dur)
			}
		}
	}
	info.Duration = ticks(total, ts)
	return info, nil
}

func ticks(n uint64, ts uint32) time.Duration {
	return time.Duration(n) * time.Second / time.Duration(ts)
}

func codecOf(trak *mp4.TrakBox) string {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return "unknown"
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return "h264"
		case "av01":
			return "av1"
		case "hvc1", "hev1":
			return "hevc"
		}
	}
	return "unknown"
}
