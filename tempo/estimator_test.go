package tempo

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// impulseTrain returns a signal of the given length with unit impulses
// every period frames, starting at frame 0.
func impulseTrain(length, period int) []float64 {
	signal := make([]float64, length)
	for i := 0; i < length; i += period {
		signal[i] = 1.0
	}
	return signal
}

func TestNewEstimatorValidation(t *testing.T) {
	if _, err := NewEstimator(0, nil); err == nil {
		t.Fatal("expected error for zero frame rate")
	}
	if _, err := NewEstimator(-100, nil); err == nil {
		t.Fatal("expected error for negative frame rate")
	}

	if _, err := NewEstimator(100, &Config{MinBPM: 0, MaxBPM: 240}); err == nil {
		t.Fatal("expected error for non-positive MinBPM")
	}
	if _, err := NewEstimator(100, &Config{MinBPM: 240, MaxBPM: 40}); err == nil {
		t.Fatal("expected error for inverted BPM bounds")
	}

	e, err := NewEstimator(100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.config.MinBPM != DefaultMinBPM || e.config.MaxBPM != DefaultMaxBPM {
		t.Fatalf("default BPM bounds mismatch: got [%g, %g]", e.config.MinBPM, e.config.MaxBPM)
	}
	if e.FrameRate() != 100 {
		t.Fatalf("frame rate mismatch: got %g", e.FrameRate())
	}
}

func TestEstimateEmptySignal(t *testing.T) {
	e, _ := NewEstimator(100, nil)

	if _, err := e.Estimate(nil); !errors.Is(err, ErrEmptyActivations) {
		t.Fatalf("expected ErrEmptyActivations, got %v", err)
	}

	// shorter than the smallest candidate interval (25 frames at 100 fps)
	if _, err := e.Estimate(make([]float64, 10)); !errors.Is(err, ErrEmptyActivations) {
		t.Fatalf("expected ErrEmptyActivations, got %v", err)
	}
}

func TestEstimateInvalidLagRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinBPM = 240
	cfg.MaxBPM = 240
	e, err := NewEstimator(100, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := e.Estimate(make([]float64, 300)); !errors.Is(err, ErrInvalidLagRange) {
		t.Fatalf("expected ErrInvalidLagRange, got %v", err)
	}
}

func TestEstimateNoPeriodicity(t *testing.T) {
	e, _ := NewEstimator(100, nil)

	res, err := e.Estimate(make([]float64, 300))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(res.Tempo1) || !math.IsNaN(res.Tempo2) {
		t.Fatalf("expected NoTempo sentinels, got %v", res)
	}
	if res.Strength != 0 {
		t.Fatalf("strength mismatch: got %f want 0", res.Strength)
	}
	if res.HasTempo() {
		t.Fatal("HasTempo should be false without periodicity")
	}
}

func TestEstimateSinglePeriod(t *testing.T) {
	// narrow the BPM range so only the 50-frame interval is in scope
	cfg := DefaultConfig()
	cfg.MinBPM = 100
	e, err := NewEstimator(100, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := e.Estimate(impulseTrain(501, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Tempo1-120.0) > 1e-6 {
		t.Fatalf("tempo1 mismatch: got %f want 120", res.Tempo1)
	}
	if !math.IsNaN(res.Tempo2) {
		t.Fatalf("expected NoTempo for tempo2, got %f", res.Tempo2)
	}
	if res.Strength != 1 {
		t.Fatalf("strength mismatch: got %f want 1", res.Strength)
	}
	if !res.HasTempo() {
		t.Fatal("HasTempo should be true")
	}
}

func TestEstimateImpulseTrain(t *testing.T) {
	// unit impulses every 50 frames from 0 through 500: period 50 frames,
	// 120 BPM at 100 fps; the half-tempo reading appears at lag 100
	e, _ := NewEstimator(100, nil)

	res, err := e.Estimate(impulseTrain(501, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Tempo1-120.0) > 1e-6 {
		t.Fatalf("tempo1 mismatch: got %f want 120", res.Tempo1)
	}
	if math.Abs(res.Tempo2-60.0) > 1e-6 {
		t.Fatalf("tempo2 mismatch: got %f want 60", res.Tempo2)
	}
	// ten pairs at lag 50 against nine at lag 100
	if res.Strength <= 0.5 || res.Strength >= 0.8 {
		t.Fatalf("strength out of range: got %f", res.Strength)
	}
}

func TestEstimateEdgeTruncationBias(t *testing.T) {
	e, _ := NewEstimator(100, nil)

	// With only five impulses, activation smoothing truncates the bumps at
	// frames 0 and 200 and the autocorrelation genuinely peaks at lag 49,
	// one bin short of the true period.
	short, err := e.Estimate(impulseTrain(201, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(short.Tempo1-6000.0/49.0) > 1e-6 {
		t.Fatalf("short train tempo1 mismatch: got %f want %f", short.Tempo1, 6000.0/49.0)
	}

	// enough interior periods outweigh the edge bias and the exact period
	// is recovered
	long, err := e.Estimate(impulseTrain(501, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(long.Tempo1-120.0) > 1e-6 {
		t.Fatalf("long train tempo1 mismatch: got %f want 120", long.Tempo1)
	}
}

func TestEstimateImpulseTrainWithGrouping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GroupingDev = 0.04
	e, err := NewEstimator(100, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the 120 BPM reading already dominates; consolidating the 60 BPM
	// harmonic must keep it on top
	res, err := e.Estimate(impulseTrain(501, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Tempo1-120.0) > 1e-6 {
		t.Fatalf("tempo1 mismatch: got %f want 120", res.Tempo1)
	}
	if math.Abs(res.Tempo2-60.0) > 1e-6 {
		t.Fatalf("tempo2 mismatch: got %f want 60", res.Tempo2)
	}
}

func TestBPMLagRoundTrip(t *testing.T) {
	cases := []struct {
		frameRate float64
		bpm       float64
	}{
		{100, 40},
		{100, 240},
		{50, 90},
		{44100.0 / 441.0, 128},
	}
	for _, c := range cases {
		lag := math.Floor(60.0 * c.frameRate / c.bpm)
		recovered := 60.0 * c.frameRate / lag
		if recovered < c.bpm {
			t.Fatalf("fps %g bpm %g: recovered %f below bound", c.frameRate, c.bpm, recovered)
		}
		if (recovered-c.bpm)/c.bpm > 0.05 {
			t.Fatalf("fps %g bpm %g: recovered %f outside rounding tolerance", c.frameRate, c.bpm, recovered)
		}
	}
}

func TestResultString(t *testing.T) {
	res := Result{Tempo1: 120, Tempo2: 60, Strength: 0.571}
	s := res.String()
	if strings.Count(s, "\t") != 2 {
		t.Fatalf("expected two tab separators, got %q", s)
	}
	if !strings.HasPrefix(s, "120.00\t") {
		t.Fatalf("unexpected rendering: %q", s)
	}
}
