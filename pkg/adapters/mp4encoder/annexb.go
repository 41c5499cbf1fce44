package mp4encoder

import "fmt"

const (
	nalIDR = 5
	nalSPS = 7
	nalPPS = 8
	nalAUD = 9
)

// accessUnit is the set of NAL units that make up one coded picture.
type accessUnit struct {
	nalus    [][]byte
	keyframe bool
}

// parseAnnexB parses Annex B byte stream into individual NAL units.
func parseAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := 0
	i := 0

	for i < len(data) {
		// Start code is 0x00 0x00 0x01 or 0x00 0x00 0x00 0x01
		if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 {
			startCodeLen := 0
			if data[i+2] == 1 {
				startCodeLen = 3
			} else if i+3 < len(data) && data[i+2] == 0 && data[i+3] == 1 {
				startCodeLen = 4
			}

			if startCodeLen > 0 {
				if i > start {
					nalus = append(nalus, data[start:i])
				}
				i += startCodeLen
				start = i
				continue
			}
		}
		i++
	}

	if start < len(data) {
		nalus = append(nalus, data[start:])
	}
	return nalus
}

func nalType(nalu []byte) byte {
	if len(nalu) == 0 {
		return 0
	}
	return nalu[0] & 0x1F
}

// splitAccessUnits groups an Annex B stream written with access unit
// delimiters into one access unit per picture. Delimiters are dropped.
func splitAccessUnits(stream []byte) []accessUnit {
	var units []accessUnit
	var cur *accessUnit

	for _, nalu := range parseAnnexB(stream) {
		if len(nalu) == 0 {
			continue
		}
		if nalType(nalu) == nalAUD || cur == nil {
			units = append(units, accessUnit{})
			cur = &units[len(units)-1]
			if nalType(nalu) == nalAUD {
				continue
			}
		}
		cur.nalus = append(cur.nalus, nalu)
		if nalType(nalu) == nalIDR {
			cur.keyframe = true
		}
	}

	// A trailing delimiter opens an empty unit.
	if n := len(units); n > 0 && len(units[n-1].nalus) == 0 {
		units = units[:n-1]
	}
	return units
}

// extractSPSPPS returns the first SPS and PPS found in units.
func extractSPSPPS(units []accessUnit) (sps, pps []byte, err error) {
	for _, u := range units {
		for _, nalu := range u.nalus {
			switch nalType(nalu) {
			case nalSPS:
				if sps == nil {
					sps = append([]byte(nil), nalu...)
				}
			case nalPPS:
				if pps == nil {
					pps = append([]byte(nil), nalu...)
				}
			}
		}
		if sps != nil && pps != nil {
			return sps, pps, nil
		}
	}
	if sps == nil {
		return nil, nil, fmt.Errorf("SPS not found")
	}
	return nil, nil, fmt.Errorf("PPS not found")
}

// toAVCC writes the NAL units of u with 4-byte length prefixes, leaving out
// parameter sets which live in the avcC box.
func toAVCC(u accessUnit) []byte {
	size := 0
	for _, nalu := range u.nalus {
		size += 4 + len(nalu)
	}
	out := make([]byte, 0, size)
	for _, nalu := range u.nalus {
		if t := nalType(nalu); t == nalSPS || t == nalPPS {
			continue
		}
		n := len(nalu)
		out = append(out, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
		out = append(out, nalu...)
	}
	return out
}
