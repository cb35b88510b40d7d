package hopping

import (
	"context"
	"testing"

	"github.com/skywatch/dronerid/internal/core/domain"
)

type fakeSource struct {
	configured []float64
	failNext   bool
}

func (f *fakeSource) Configure(ctx context.Context, centerFreq, sampleRate, gainDB float64) error {
	if f.failNext {
		f.failNext = false
		return context.DeadlineExceeded
	}
	f.configured = append(f.configured, centerFreq)
	return nil
}

func (f *fakeSource) ReadBlock(ctx context.Context, length int) (*domain.SampleBlock, error) {
	return nil, nil
}

func (f *fakeSource) Close() error { return nil }

func TestSDRSwitcher_SetChannel_ResolvesFrequency(t *testing.T) {
	plan := []Channel{{Number: 1, Is5GHz: false}, {Number: 36, Is5GHz: true}}
	src := &fakeSource{}
	sw := NewSDRSwitcher(src, plan, 20e6, 30)

	if err := sw.SetChannel(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.configured) != 1 || src.configured[0] != 2.412e9 {
		t.Errorf("expected configure to 2.412e9, got %v", src.configured)
	}

	if err := sw.SetChannel(context.Background(), 36); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.configured) != 2 || src.configured[1] != 5.180e9 {
		t.Errorf("expected configure to 5.180e9, got %v", src.configured)
	}
}

func TestSDRSwitcher_UnknownChannelIsError(t *testing.T) {
	plan := []Channel{{Number: 1, Is5GHz: false}}
	src := &fakeSource{}
	sw := NewSDRSwitcher(src, plan, 20e6, 30)

	if err := sw.SetChannel(context.Background(), 99); err == nil {
		t.Error("expected error for channel outside the plan")
	}
}

func TestSDRSwitcher_PropagatesConfigureError(t *testing.T) {
	plan := []Channel{{Number: 1, Is5GHz: false}}
	src := &fakeSource{failNext: true}
	sw := NewSDRSwitcher(src, plan, 20e6, 30)

	if err := sw.SetChannel(context.Background(), 1); err == nil {
		t.Error("expected Configure error to propagate")
	}
}
