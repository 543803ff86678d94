package pulseox

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "300ms" or "3s".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("pulseox: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config collects every named constant of the pipeline so estimators can be
// exercised with synthetic waveforms and the calibration can be adjusted
// against reference hardware without touching code.
type Config struct {
	// SamplePeriod is the duration of one acquisition tick (both channels).
	SamplePeriod Duration `yaml:"sample_period"`
	// Settle is how long to wait after switching LEDs before sampling, to
	// let the phototransistor stabilize.
	Settle Duration `yaml:"settle"`

	// ThresholdFraction is the k in threshold = min + k*(max-min).
	ThresholdFraction float64 `yaml:"threshold_fraction"`
	// WarmupWindow is the number of samples per channel before the adaptive
	// threshold is considered valid.
	WarmupWindow int `yaml:"warmup_window"`
	// NoiseFloor is the minimum max-min span, in ADC counts, below which the
	// threshold freezes instead of collapsing to a degenerate band.
	NoiseFloor uint16 `yaml:"noise_floor"`

	// Refractory suppresses beat detections closer together than a
	// physiologically plausible interval.
	Refractory Duration `yaml:"refractory"`
	// BeatTimeout is how long the heart rate stays valid after the last
	// detected beat before it decays to unknown.
	BeatTimeout Duration `yaml:"beat_timeout"`

	// SpO2Window is the number of sample pairs the AC/DC ratio is computed
	// over.
	SpO2Window int `yaml:"spo2_window"`
	// CalibrationA and CalibrationB map the red/IR ratio R to a saturation
	// percentage as SpO2 = A - B*R. The defaults are placeholders to be
	// calibrated against reference hardware.
	CalibrationA float64 `yaml:"calibration_a"`
	CalibrationB float64 `yaml:"calibration_b"`

	// RefreshEvery throttles display frames. It must not be shorter than
	// SamplePeriod to be effective.
	RefreshEvery Duration `yaml:"refresh_every"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures the logger built by the binary.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`
	// Format is "console" or "json".
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration matching the reference wiring:
// 20 Hz acquisition, 5 ms LED settle, midpoint threshold over a 3.2 s
// window and the stock linear SpO2 calibration.
func DefaultConfig() Config {
	return Config{
		SamplePeriod:      Duration(50 * time.Millisecond),
		Settle:            Duration(5 * time.Millisecond),
		ThresholdFraction: 0.5,
		WarmupWindow:      64,
		NoiseFloor:        48,
		Refractory:        Duration(300 * time.Millisecond),
		BeatTimeout:       Duration(3 * time.Second),
		SpO2Window:        64,
		CalibrationA:      104,
		CalibrationB:      17,
		RefreshEvery:      Duration(50 * time.Millisecond),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Absent keys keep their
// default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("pulseox: could not read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("pulseox: could not parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run on.
func (c Config) Validate() error {
	if c.SamplePeriod <= 0 {
		return fmt.Errorf("pulseox: sample_period must be positive, got %v", c.SamplePeriod.Std())
	}
	if c.Settle <= 0 || 2*c.Settle >= c.SamplePeriod {
		return fmt.Errorf("pulseox: settle must be positive and fit twice within sample_period, got %v", c.Settle.Std())
	}
	if c.ThresholdFraction <= 0 || c.ThresholdFraction >= 1 {
		return fmt.Errorf("pulseox: threshold_fraction must be in (0,1), got %v", c.ThresholdFraction)
	}
	if c.WarmupWindow < 2 {
		return fmt.Errorf("pulseox: warmup_window must be at least 2, got %d", c.WarmupWindow)
	}
	if c.Refractory <= 0 {
		return fmt.Errorf("pulseox: refractory must be positive, got %v", c.Refractory.Std())
	}
	if c.BeatTimeout <= c.Refractory {
		return fmt.Errorf("pulseox: beat_timeout must exceed refractory, got %v", c.BeatTimeout.Std())
	}
	if c.SpO2Window < spo2MinWindow {
		return fmt.Errorf("pulseox: spo2_window must be at least %d, got %d", spo2MinWindow, c.SpO2Window)
	}
	if c.CalibrationB <= 0 {
		return fmt.Errorf("pulseox: calibration_b must be positive, got %v", c.CalibrationB)
	}
	if c.RefreshEvery <= 0 {
		return fmt.Errorf("pulseox: refresh_every must be positive, got %v", c.RefreshEvery.Std())
	}
	return nil
}
