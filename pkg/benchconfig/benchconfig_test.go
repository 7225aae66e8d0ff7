package benchconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightcore/fwautotune/pkg/airframe"
	"github.com/flightcore/fwautotune/pkg/benchconfig"
)

const sample = `
axis: pitch
autotune_level: 3
limit:
  pitch_max_cd: 5000
  pitch_min_cd: 4000
gains:
  ff: 0.35
  p: 0.1
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func TestLoadParsesYAMLFields(t *testing.T) {
	path := writeSample(t)

	f, err := benchconfig.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pitch", f.Axis)
	assert.Equal(t, 3, f.Level)
	assert.Equal(t, int32(5000), f.Limit.PitchMaxCd)
	assert.Equal(t, float32(0.35), f.Gains.FF)
}

func TestToBenchConfigFillsUnsetFieldsFromDefault(t *testing.T) {
	path := writeSample(t)
	f, err := benchconfig.Load(path)
	require.NoError(t, err)

	cfg, err := f.ToBenchConfig()
	require.NoError(t, err)

	assert.Equal(t, airframe.AxisPitch, cfg.Axis)
	assert.Equal(t, float32(0.35), cfg.FF)
	// D wasn't set in the file, so the default's non-zero D should survive.
	assert.NotZero(t, cfg.D)
}

func TestToBenchConfigRejectsUnknownAxis(t *testing.T) {
	f := benchconfig.File{Axis: "yaw"}
	_, err := f.ToBenchConfig()
	assert.Error(t, err)
}
