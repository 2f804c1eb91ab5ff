package tempo

// Default detection parameters, matching the values the upstream beat
// tracking networks were tuned with.
const (
	DefaultActSmooth   = 0.13
	DefaultHistSmooth  = 5
	DefaultMinBPM      = 40.0
	DefaultMaxBPM      = 240.0
	DefaultGroupingDev = 0.0
)

// Config holds the tempo detection parameters.
type Config struct {
	// ActSmooth is the activation smoothing window in seconds. 0 disables
	// activation smoothing.
	ActSmooth float64 `json:"act_smooth"`

	// HistSmooth is the histogram smoothing window in bins. 0 disables
	// histogram smoothing.
	HistSmooth int `json:"hist_smooth"`

	// MinBPM and MaxBPM bound the detectable tempo range.
	MinBPM float64 `json:"min_bpm"`
	MaxBPM float64 `json:"max_bpm"`

	// GroupingDev is the allowed deviation in log2/log3 space when grouping
	// harmonically related tempi. 0 disables grouping.
	GroupingDev float64 `json:"grouping_dev"`
}

// DefaultConfig returns the default detection parameters
func DefaultConfig() *Config {
	return &Config{
		ActSmooth:   DefaultActSmooth,
		HistSmooth:  DefaultHistSmooth,
		MinBPM:      DefaultMinBPM,
		MaxBPM:      DefaultMaxBPM,
		GroupingDev: DefaultGroupingDev,
	}
}
