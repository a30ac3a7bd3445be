package media

import (
	"bytes"
	"testing"
)

func TestSplitAnnexB(t *testing.T) {
	data := []byte{
		0, 0, 0, 1, 0x09, 0xF0, // AUD
		0, 0, 0, 1, 0x67, 1, 2, // SPS
		0, 0, 1, 0x68, 3,       // PPS, 3-byte start code
		0, 0, 1, 0x65, 4, 5, 6, // IDR
	}
	nalus := SplitAnnexB(data)
	if len(nalus) != 4 {
		t.Fatalf("got %d NAL units, want 4", len(nalus))
	}
	types := []int{NALAUD, NALSPS, NALPPS, NALIDR}
	for i, n := range nalus {
		if NALType(n) != types[i] {
			t.Errorf("nal %d type = %d, want %d", i, NALType(n), types[i])
		}
	}
	if !ContainsIDR(data) {
		t.Error("expected IDR")
	}

	sps, pps := ParameterSets(data)
	if !bytes.Equal(sps, []byte{0x67, 1, 2}) || !bytes.Equal(pps, []byte{0x68, 3}) {
		t.Errorf("sps=%x pps=%x", sps, pps)
	}

	avcc := AnnexBToAVCC(data)
	want := []byte{0, 0, 0, 4, 0x65, 4, 5, 6}
	if !bytes.Equal(avcc, want) {
		t.Errorf("AnnexBToAVCC = %x, want %x", avcc, want)
	}
}

func TestContainsIDR_NonIDR(t *testing.T) {
	if ContainsIDR([]byte{0, 0, 1, 0x41, 9, 9}) {
		t.Error("P slice reported as IDR")
	}
	if ContainsIDR(nil) {
		t.Error("empty data reported as IDR")
	}
}
