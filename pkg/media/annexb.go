package media

import "encoding/binary"

// H.264 NAL unit types used by the pipeline.
const (
	NALSlice = 1
	NALIDR   = 5
	NALSEI   = 6
	NALSPS   = 7
	NALPPS   = 8
	NALAUD   = 9
)

// SplitAnnexB splits an Annex B byte stream into NAL units, dropping the
// 3- or 4-byte start codes.
func SplitAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := 0
	i := 0

	for i < len(data) {
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

// NALType returns the H.264 NAL unit type of nalu.
func NALType(nalu []byte) int {
	if len(nalu) == 0 {
		return 0
	}
	return int(nalu[0] & 0x1F)
}

// ContainsIDR reports whether an Annex B access unit carries an IDR slice.
func ContainsIDR(data []byte) bool {
	for _, nalu := range SplitAnnexB(data) {
		if NALType(nalu) == NALIDR {
			return true
		}
	}
	return false
}

// ParameterSets returns the first SPS and PPS found in an Annex B access unit.
func ParameterSets(data []byte) (sps, pps []byte) {
	for _, nalu := range SplitAnnexB(data) {
		switch NALType(nalu) {
		case NALSPS:
			if sps == nil {
				sps = append([]byte(nil), nalu...)
			}
		case NALPPS:
			if pps == nil {
				pps = append([]byte(nil), nalu...)
			}
		}
	}
	return sps, pps
}

// AnnexBToAVCC converts an Annex B access unit to 4-byte length-prefixed
// NAL units. Parameter sets and access unit delimiters are dropped; they
// belong in the sample description.
func AnnexBToAVCC(data []byte) []byte {
	nalus := SplitAnnexB(data)
	out := make([]byte, 0, len(data)+4*len(nalus))
	for _, nalu := range nalus {
		switch NALType(nalu) {
		case NALSPS, NALPPS, NALAUD:
			continue
		}
		out = binary.BigEndian.AppendUint32(out, uint32(len(nalu)))
		out = append(out, nalu...)
	}
	return out
}
