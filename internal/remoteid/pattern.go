package remoteid

import (
	"bytes"

	"github.com/skywatch/dronerid/internal/core/domain"
)

// patternGroup is a named family of authentic Remote ID byte prefixes
// searched as a fallback when no structured message is recognized,
// per §4.6.
type patternGroup struct {
	name     string
	prefixes [][]byte
}

var authenticPatternGroups = []patternGroup{
	{
		name: "dji_remote_id",
		prefixes: [][]byte{
			[]byte("DJI-RID-"),
			[]byte("MAVIC"),
			[]byte("MINI"),
			[]byte("AIR"),
			[]byte("FPV"),
		},
	},
	{
		name: "astm_f3411",
		prefixes: [][]byte{
			{0x0D, 0x00},
			{0x25, 0x00},
			{0x1A, 0x00},
		},
	},
	{
		name: "opendroneid",
		prefixes: [][]byte{
			{0xFA, 0x0B, 0xBC},
		},
	},
}

// scanPatterns searches data for the first matching authentic prefix
// and produces a pattern-detection record, per §4.6. For the
// dji_remote_id family, the UAS ID is taken as the bytes from the match
// up to the next NUL byte, mirroring the original decoder's heuristic.
func scanPatterns(data []byte) (*domain.RemoteIDRecord, bool) {
	for _, group := range authenticPatternGroups {
		for _, prefix := range group.prefixes {
			idx := bytes.Index(data, prefix)
			if idx < 0 {
				continue
			}

			uasID := "PATTERN_" + group.name
			if group.name == "dji_remote_id" {
				remaining := data[idx:]
				if end := bytes.IndexByte(remaining, 0x00); end > len(prefix) {
					uasID = string(bytes.Map(asciiOrDrop, remaining[:end]))
				}
			}

			return &domain.RemoteIDRecord{
				BasicID: &domain.BasicID{
					UASID:        uasID,
					UASIDType:    domain.UASIDTypePatternDetection,
					PatternGroup: group.name,
				},
				Transport: domain.TransportPatternDetected,
			}, true
		}
	}
	return nil, false
}

func asciiOrDrop(r rune) rune {
	if r < 0 || r > 127 {
		return -1
	}
	return r
}
