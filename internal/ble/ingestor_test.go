package ble

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBLESource struct {
	mu        sync.Mutex
	scanCalls int
	batches   [][]*domain.CandidateFrame
	failFirst bool
}

func (f *fakeBLESource) Scan(ctx context.Context) (<-chan *domain.CandidateFrame, error) {
	f.mu.Lock()
	f.scanCalls++
	call := f.scanCalls
	f.mu.Unlock()

	if f.failFirst && call == 1 {
		return nil, fmt.Errorf("adapter hiccup")
	}

	ch := make(chan *domain.CandidateFrame)
	var batch []*domain.CandidateFrame
	f.mu.Lock()
	if len(f.batches) > 0 {
		batch = f.batches[0]
		f.batches = f.batches[1:]
	}
	f.mu.Unlock()

	go func() {
		defer close(ch)
		for _, fr := range batch {
			select {
			case ch <- fr:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (f *fakeBLESource) Close() error { return nil }

type fakeDecoder struct {
	decodeFn func(*domain.CandidateFrame) (*domain.RemoteIDRecord, error)
}

func (f *fakeDecoder) Decode(frame *domain.CandidateFrame) (*domain.RemoteIDRecord, error) {
	return f.decodeFn(frame)
}

func TestIngestor_EmitsValidRecords(t *testing.T) {
	frames := []*domain.CandidateFrame{
		{Data: []byte("hello-drone")},
		{Data: []byte("world-drone")},
	}
	src := &fakeBLESource{batches: [][]*domain.CandidateFrame{frames}}
	dec := &fakeDecoder{decodeFn: func(f *domain.CandidateFrame) (*domain.RemoteIDRecord, error) {
		return &domain.RemoteIDRecord{BasicID: &domain.BasicID{UASID: string(f.Data), UASIDType: domain.UASIDTypeSerialNumber}}, nil
	}}

	in := NewIngestor(src, dec)
	out := make(chan *domain.RemoteIDRecord, 10)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- in.Run(ctx, out) }()

	var got []string
	timeout := time.After(200 * time.Millisecond)
loop:
	for {
		select {
		case rec := <-out:
			got = append(got, rec.BasicID.UASID)
			if len(got) == 2 {
				break loop
			}
		case <-timeout:
			break loop
		}
	}
	cancel()
	<-done

	assert.ElementsMatch(t, []string{"hello-drone", "world-drone"}, got)
}

func TestIngestor_SkipsShortPayloads(t *testing.T) {
	frames := []*domain.CandidateFrame{{Data: []byte("ab")}}
	src := &fakeBLESource{batches: [][]*domain.CandidateFrame{frames}}
	called := false
	dec := &fakeDecoder{decodeFn: func(f *domain.CandidateFrame) (*domain.RemoteIDRecord, error) {
		called = true
		return &domain.RemoteIDRecord{}, nil
	}}

	in := NewIngestor(src, dec)
	out := make(chan *domain.RemoteIDRecord, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_ = in.Run(ctx, out)
	assert.False(t, called, "decoder must not be offered a payload shorter than 5 bytes")
}

func TestIngestor_SkipsInvalidRecords(t *testing.T) {
	frames := []*domain.CandidateFrame{{Data: []byte("hello")}}
	src := &fakeBLESource{batches: [][]*domain.CandidateFrame{frames}}
	dec := &fakeDecoder{decodeFn: func(f *domain.CandidateFrame) (*domain.RemoteIDRecord, error) {
		return &domain.RemoteIDRecord{}, nil // Valid() is false: no fields set
	}}

	in := NewIngestor(src, dec)
	out := make(chan *domain.RemoteIDRecord, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_ = in.Run(ctx, out)
	select {
	case <-out:
		t.Fatal("an invalid record must not be emitted")
	default:
	}
}

func TestIngestor_RestartsAfterScanError(t *testing.T) {
	frames := []*domain.CandidateFrame{{Data: []byte("hello")}}
	src := &fakeBLESource{failFirst: true, batches: [][]*domain.CandidateFrame{nil, frames}}
	dec := &fakeDecoder{decodeFn: func(f *domain.CandidateFrame) (*domain.RemoteIDRecord, error) {
		return &domain.RemoteIDRecord{BasicID: &domain.BasicID{UASID: "SERIAL-X", UASIDType: domain.UASIDTypeSerialNumber}}, nil
	}}

	in := NewIngestor(src, dec)
	out := make(chan *domain.RemoteIDRecord, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	require.NoError(t, func() error {
		errc := make(chan error, 1)
		go func() { errc <- in.Run(ctx, out) }()
		select {
		case rec := <-out:
			assert.Equal(t, "SERIAL-X", rec.BasicID.UASID)
			cancel()
			<-errc
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}())
}

func TestNextBackoff_ClampsToMax(t *testing.T) {
	d := minBackoff
	for i := 0; i < 20; i++ {
		d = nextBackoff(d)
	}
	assert.Equal(t, maxBackoff, d)
}
