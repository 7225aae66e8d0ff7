// Package benchconfig loads the bench harness's airframe/gain starting
// point from a YAML file, so a bench run can be repeated against a
// specific vehicle's tuning without editing Go source.
//
// Grounded on the pack's use of gopkg.in/yaml.v3 for declarative
// configuration (doismellburning-samoyed's device-id loader); this package
// uses struct tags rather than samoyed's map[string]interface{} decode,
// since the bench config has a small, fixed shape known up front.
package benchconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flightcore/fwautotune/pkg/airframe"
	"github.com/flightcore/fwautotune/pkg/bench"
)

// File is the on-disk shape of a bench config file.
type File struct {
	Axis  string  `yaml:"axis"`
	Limit Limit   `yaml:"limit"`
	Level int     `yaml:"autotune_level"`
	Gains Gains   `yaml:"gains"`
	Seed  int64   `yaml:"seed"`
}

// Limit holds the centi-degree attitude limits airframe.Params exposes.
type Limit struct {
	RollCd      int32 `yaml:"roll_cd"`
	PitchMaxCd  int32 `yaml:"pitch_max_cd"`
	PitchMinCd  int32 `yaml:"pitch_min_cd"`
}

// Gains is the starting rate-PID gain set, in the same units as
// tuner.ATGains.
type Gains struct {
	FF        float32 `yaml:"ff"`
	P         float32 `yaml:"p"`
	I         float32 `yaml:"i"`
	D         float32 `yaml:"d"`
	IMAX      float32 `yaml:"imax"`
	RMaxPos   int16   `yaml:"rmax_pos"`
	RMaxNeg   int16   `yaml:"rmax_neg"`
	Tau       float32 `yaml:"tau"`
	SlewLimit float32 `yaml:"slew_limit"`
}

// Load reads and parses a bench config file from path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read bench config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse bench config: %w", err)
	}
	return f, nil
}

// ToBenchConfig converts the parsed File into a bench.Config, resolving the
// axis name and falling back to DefaultConfig's gains for any zero-valued
// field left unset in the file.
func (f File) ToBenchConfig() (bench.Config, error) {
	cfg := bench.DefaultConfig()

	switch f.Axis {
	case "", "roll":
		cfg.Axis = airframe.AxisRoll
	case "pitch":
		cfg.Axis = airframe.AxisPitch
	default:
		return bench.Config{}, fmt.Errorf("unknown axis %q, want \"roll\" or \"pitch\"", f.Axis)
	}

	if f.Limit.RollCd != 0 {
		cfg.RollLimitCd = f.Limit.RollCd
	}
	if f.Limit.PitchMaxCd != 0 {
		cfg.PitchLimitMaxCd = f.Limit.PitchMaxCd
	}
	if f.Limit.PitchMinCd != 0 {
		cfg.PitchLimitMinCd = f.Limit.PitchMinCd
	}
	cfg.AutotuneLevel = f.Level

	g := f.Gains
	if g.FF != 0 {
		cfg.FF = g.FF
	}
	if g.P != 0 {
		cfg.P = g.P
	}
	if g.I != 0 {
		cfg.I = g.I
	}
	if g.D != 0 {
		cfg.D = g.D
	}
	if g.IMAX != 0 {
		cfg.IMAX = g.IMAX
	}
	if g.RMaxPos != 0 {
		cfg.RMaxPos = g.RMaxPos
	}
	if g.RMaxNeg != 0 {
		cfg.RMaxNeg = g.RMaxNeg
	}
	if g.Tau != 0 {
		cfg.Tau = g.Tau
	}
	if g.SlewLimit != 0 {
		cfg.SlewLimit = g.SlewLimit
	}

	return cfg, nil
}
