// Package hopping parses the channel-plan mini-language, computes
// channel center frequencies, and drives the round-robin hop loop
// against the Sample Source's retune port.
package hopping

import (
	"fmt"
	"strconv"
	"strings"
)

// commonUNIIChannels are the 5 GHz channels the `common` token expands
// to, per §4.8.
var commonUNIIChannels = []int{36, 40, 44, 48, 149, 153, 157, 161}

// Channel pairs a band-qualified 802.11 channel number with its band,
// since channel numbers collide between 2.4 GHz and 5 GHz.
type Channel struct {
	Number int
	Is5GHz bool
}

// CenterFreqHz computes the channel's center frequency, per §4.8:
// 2412 + 5*(ch-1) MHz on 2.4 GHz, 5000 + 5*ch MHz on 5 GHz.
func (c Channel) CenterFreqHz() float64 {
	if c.Is5GHz {
		return (5000 + 5*float64(c.Number)) * 1e6
	}
	return (2412 + 5*float64(c.Number-1)) * 1e6
}

// ParsePlan parses the channel-plan mini-language of §4.8:
//   - "all" expands to channels 1-13 on 2.4 GHz plus the common UNII
//     set on 5 GHz.
//   - "1,6,11" is a literal comma-separated list of 2.4 GHz channels.
//   - "2g:" and "5g:" prefixes scope a sub-expression to a band.
//   - "a-b" ranges expand inclusively.
//   - "common" on 5 GHz expands to the UNII set above.
func ParsePlan(expr string) ([]Channel, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("hopping: empty channel plan")
	}
	if expr == "all" {
		var channels []Channel
		for ch := 1; ch <= 13; ch++ {
			channels = append(channels, Channel{Number: ch, Is5GHz: false})
		}
		for _, ch := range commonUNIIChannels {
			channels = append(channels, Channel{Number: ch, Is5GHz: true})
		}
		return channels, nil
	}

	var channels []Channel
	for _, segment := range strings.Split(expr, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		is5GHz := false
		switch {
		case strings.HasPrefix(segment, "2g:"):
			segment = strings.TrimPrefix(segment, "2g:")
		case strings.HasPrefix(segment, "5g:"):
			segment = strings.TrimPrefix(segment, "5g:")
			is5GHz = true
		}

		for _, token := range strings.Split(segment, "/") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			parsed, err := parseToken(token, is5GHz)
			if err != nil {
				return nil, fmt.Errorf("hopping: parsing channel plan %q: %w", expr, err)
			}
			channels = append(channels, parsed...)
		}
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("hopping: channel plan %q produced no channels", expr)
	}
	return channels, nil
}

func parseToken(token string, is5GHz bool) ([]Channel, error) {
	if token == "common" {
		channels := make([]Channel, len(commonUNIIChannels))
		for i, ch := range commonUNIIChannels {
			channels[i] = Channel{Number: ch, Is5GHz: true}
		}
		return channels, nil
	}

	if lo, hi, ok := splitRange(token); ok {
		loN, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid range start %q: %w", lo, err)
		}
		hiN, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid range end %q: %w", hi, err)
		}
		if hiN < loN {
			return nil, fmt.Errorf("invalid range %q: end before start", token)
		}
		channels := make([]Channel, 0, hiN-loN+1)
		for ch := loN; ch <= hiN; ch++ {
			channels = append(channels, Channel{Number: ch, Is5GHz: is5GHz})
		}
		return channels, nil
	}

	n, err := strconv.Atoi(token)
	if err != nil {
		return nil, fmt.Errorf("unknown channel token %q: %w", token, err)
	}
	return []Channel{{Number: n, Is5GHz: is5GHz}}, nil
}

func splitRange(token string) (lo, hi string, ok bool) {
	idx := strings.Index(token, "-")
	if idx <= 0 || idx == len(token)-1 {
		return "", "", false
	}
	return token[:idx], token[idx+1:], true
}
