package hopping

import "testing"

func TestParsePlan_All(t *testing.T) {
	channels, err := ParsePlan("all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 13+8 {
		t.Fatalf("expected 21 channels, got %d", len(channels))
	}
	if channels[0].Number != 1 || channels[0].Is5GHz {
		t.Errorf("expected first channel 1 (2.4GHz), got %+v", channels[0])
	}
	if channels[13].Number != 36 || !channels[13].Is5GHz {
		t.Errorf("expected 14th channel 36 (5GHz), got %+v", channels[13])
	}
}

func TestParsePlan_LiteralList(t *testing.T) {
	channels, err := ParsePlan("1,6,11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 6, 11}
	if len(channels) != len(want) {
		t.Fatalf("expected %d channels, got %d", len(want), len(channels))
	}
	for i, ch := range channels {
		if ch.Number != want[i] || ch.Is5GHz {
			t.Errorf("channel %d: got %+v, want number %d on 2.4GHz", i, ch, want[i])
		}
	}
}

// TestParsePlan_ScenarioF reproduces spec.md's literal Scenario F:
// "2g:1-3,5g:36/40" must resolve to the exact frequency list
// {2.412e9, 2.417e9, 2.422e9, 5.180e9, 5.200e9}.
func TestParsePlan_ScenarioF(t *testing.T) {
	channels, err := ParsePlan("2g:1-3,5g:36/40")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantFreqs := []float64{2.412e9, 2.417e9, 2.422e9, 5.180e9, 5.200e9}
	if len(channels) != len(wantFreqs) {
		t.Fatalf("expected %d channels, got %d (%+v)", len(wantFreqs), len(channels), channels)
	}
	for i, ch := range channels {
		got := ch.CenterFreqHz()
		if diff := got - wantFreqs[i]; diff > 1 || diff < -1 {
			t.Errorf("channel %d: got freq %v, want %v", i, got, wantFreqs[i])
		}
	}
}

func TestParsePlan_Common(t *testing.T) {
	channels, err := ParsePlan("5g:common")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != len(commonUNIIChannels) {
		t.Fatalf("expected %d channels, got %d", len(commonUNIIChannels), len(channels))
	}
	for _, ch := range channels {
		if !ch.Is5GHz {
			t.Errorf("expected all common channels to be 5GHz, got %+v", ch)
		}
	}
}

func TestParsePlan_EmptyIsError(t *testing.T) {
	if _, err := ParsePlan(""); err == nil {
		t.Error("expected error for empty plan")
	}
	if _, err := ParsePlan("   "); err == nil {
		t.Error("expected error for whitespace-only plan")
	}
}

func TestParsePlan_InvalidRangeIsError(t *testing.T) {
	if _, err := ParsePlan("5-2"); err == nil {
		t.Error("expected error for descending range")
	}
}

func TestParsePlan_UnknownTokenIsError(t *testing.T) {
	if _, err := ParsePlan("not-a-channel-token-xyz"); err == nil {
		t.Error("expected error for garbage token")
	}
}

func TestChannel_CenterFreqHz(t *testing.T) {
	ch1 := Channel{Number: 1, Is5GHz: false}
	if got := ch1.CenterFreqHz(); got != 2.412e9 {
		t.Errorf("channel 1: got %v, want 2.412e9", got)
	}
	ch36 := Channel{Number: 36, Is5GHz: true}
	if got := ch36.CenterFreqHz(); got != 5.180e9 {
		t.Errorf("channel 36: got %v, want 5.180e9", got)
	}
}
