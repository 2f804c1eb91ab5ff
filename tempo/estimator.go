package tempo

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-tempo/algorithms/periodicity"
	"github.com/RyanBlaney/sonido-tempo/algorithms/smoothing"
	"github.com/RyanBlaney/sonido-tempo/logging"
)

var (
	// ErrEmptyActivations is returned when the activation signal is empty
	// or shorter than the smallest candidate beat interval.
	ErrEmptyActivations = errors.New("empty activation signal")

	// ErrInvalidLagRange is returned when the BPM bounds and frame rate
	// yield no testable beat intervals. This is a configuration mistake,
	// distinct from "no periodicity found".
	ErrInvalidLagRange = errors.New("invalid lag range")
)

// NoTempo is the sentinel reported when no (secondary) tempo is found.
var NoTempo = math.NaN()

// Result holds the two most dominant tempi of an activation signal and the
// relative strength of the first. Tempo2 is NoTempo when only one tempo is
// found (Strength is then 1.0); both are NoTempo when the signal has no
// detectable periodicity (Strength 0).
type Result struct {
	Tempo1   float64 `json:"tempo1"`
	Tempo2   float64 `json:"tempo2"`
	Strength float64 `json:"strength"`
}

// HasTempo reports whether any tempo was detected.
func (r Result) HasTempo() bool {
	return !math.IsNaN(r.Tempo1)
}

// String renders the result in the tab-separated reporting format.
func (r Result) String() string {
	return fmt.Sprintf("%.2f\t%.2f\t%.2f", r.Tempo1, r.Tempo2, r.Strength)
}

// Estimator estimates the dominant tempo of a piece of music from a beat
// activation signal: a per-frame confidence score at a fixed frame rate,
// typically the output of a beat detection network. The estimator is a
// pure function of its inputs and safe for concurrent use.
type Estimator struct {
	frameRate float64
	config    *Config
	logger    logging.Logger
}

// NewEstimator creates an estimator for activation signals at the given
// frame rate (frames per second). A nil config uses DefaultConfig.
func NewEstimator(frameRate float64, config *Config) (*Estimator, error) {
	if frameRate <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %g", frameRate)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MinBPM <= 0 || config.MaxBPM < config.MinBPM {
		return nil, fmt.Errorf("invalid BPM bounds [%g, %g]", config.MinBPM, config.MaxBPM)
	}

	logger := logging.WithFields(logging.Fields{
		"component":  "tempo_estimator",
		"frame_rate": frameRate,
	})

	return &Estimator{
		frameRate: frameRate,
		config:    config,
		logger:    logger,
	}, nil
}

// FrameRate returns the frame rate the estimator was created with.
func (e *Estimator) FrameRate() float64 {
	return e.frameRate
}

// Estimate detects the two most dominant tempi of the activation signal.
//
// The signal is smoothed and autocorrelated over the beat intervals
// implied by the BPM bounds, the resulting interval histogram is smoothed
// again, and its peaks are ranked by magnitude. With a non-zero
// GroupingDev, harmonically related peaks (double or triple tempo within
// the tolerance) are consolidated before ranking.
func (e *Estimator) Estimate(activations []float64) (Result, error) {
	if len(activations) == 0 {
		return Result{}, ErrEmptyActivations
	}

	// convert the detection parameters to frames
	actSmooth := int(math.Round(e.frameRate * e.config.ActSmooth))
	minLag := int(math.Floor(60.0 * e.frameRate / e.config.MaxBPM))
	maxLag := int(math.Ceil(60.0 * e.frameRate / e.config.MinBPM))

	if minLag < 1 || maxLag <= minLag {
		return Result{}, fmt.Errorf("%w: BPM bounds [%g, %g] at %g fps map to lags [%d, %d)",
			ErrInvalidLagRange, e.config.MinBPM, e.config.MaxBPM, e.frameRate, minLag, maxLag)
	}
	if minLag >= len(activations) {
		return Result{}, fmt.Errorf("%w: %d frames cannot hold a beat interval of %d frames",
			ErrEmptyActivations, len(activations), minLag)
	}

	e.logger.Debug("Building interval histogram", logging.Fields{
		"frames":     len(activations),
		"act_smooth": actSmooth,
		"min_lag":    minLag,
		"max_lag":    maxLag,
	})

	var actSpec smoothing.Spec
	if actSmooth > 0 {
		actSpec = smoothing.KernelSize(actSmooth)
	}
	histogram, err := periodicity.BuildHistogram(activations, actSpec, minLag, maxLag)
	if err != nil {
		return Result{}, err
	}

	if e.config.HistSmooth > 0 {
		histogram, err = histogram.Smooth(smoothing.KernelSize(e.config.HistSmooth))
		if err != nil {
			return Result{}, err
		}
	}

	tempi := histogram.Tempi(e.frameRate)
	peaks := periodicity.FindPeaks(histogram.Bins)

	switch len(peaks) {
	case 0:
		// no peaks, no tempo; a valid result, not an error
		e.logger.Debug("No periodicity found")
		return Result{Tempo1: NoTempo, Tempo2: NoTempo, Strength: 0}, nil
	case 1:
		return Result{Tempo1: tempi[peaks[0]], Tempo2: NoTempo, Strength: 1}, nil
	default:
		ranked := periodicity.RankPeaks(peaks, histogram.Bins)
		if e.config.GroupingDev > 0 {
			ranked = groupTempi(ranked, histogram.Bins, tempi, e.config.GroupingDev)
		}
		top1, top2 := ranked[0], ranked[1]
		strength := histogram.Bins[top1] / (histogram.Bins[top1] + histogram.Bins[top2])
		return Result{Tempo1: tempi[top1], Tempo2: tempi[top2], Strength: strength}, nil
	}
}
