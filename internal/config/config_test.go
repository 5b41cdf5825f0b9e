package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locator/internal/beacon"
	"locator/internal/geometry"
	"locator/internal/ranging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "sar-robot/position", cfg.MQTT.PositionTopic)
	assert.Equal(t, 60*time.Second, cfg.MQTT.ConnectTimeout)
	assert.Equal(t, 2*time.Second, cfg.Resolver.Interval)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, [3]geometry.Point{{X: 300, Y: 0}, {X: -300, Y: 0}, {X: 0, Y: 300}}, cfg.Beacons.Coords())
	assert.Equal(t, map[string]beacon.Label{
		"BEACON-A": beacon.A,
		"BEACON-B": beacon.B,
		"BEACON-C": beacon.C,
	}, cfg.Beacons.Names())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
mqtt:
  broker: tcp://mosquitto:1883
resolver:
  interval: 500ms
serial:
  enabled: true
  path: /dev/ttyACM0
  parity: even
beacons:
  a: {name: alpha, x: 1, y: 2}
  b: {name: bravo, x: -1, y: 0, model: log_linear, slope: -0.04, intercept: -1.2}
  c: {name: charlie, x: 0, y: 5}
`)
	t.Setenv("LOCATOR_MQTT_USERNAME", "robot")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "tcp://mosquitto:1883", cfg.MQTT.Broker)
	assert.Equal(t, "robot", cfg.MQTT.Username)
	assert.Equal(t, 500*time.Millisecond, cfg.Resolver.Interval)
	assert.True(t, cfg.Serial.Enabled)
	assert.Equal(t, "even", cfg.Serial.PortOptions().Parity)
	assert.Equal(t, geometry.Point{X: 1, Y: 2}, cfg.Beacons.Coords()[beacon.A])
	assert.Equal(t, beacon.C, cfg.Beacons.Names()["charlie"])

	tbl, err := cfg.Beacons.Ranging()
	require.NoError(t, err)
	d, ok := tbl.Infer(beacon.B, -30)
	require.True(t, ok)
	assert.InDelta(t, ranging.LogLinear{Slope: -0.04, Intercept: -1.2}.Distance(-30), d, 1e-12)
	d, ok = tbl.Infer(beacon.A, ranging.DefaultPathLoss.TxPower)
	require.True(t, ok)
	assert.InDelta(t, 1.0, d, 1e-9)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_ValidationErrors(t *testing.T) {
	path := writeConfig(t, `
resolver:
  interval: 0s
serial:
  enabled: true
  data_bits: 9
beacons:
  a: {name: same}
  b: {name: same}
  c: {model: magic}
`)

	_, err := Load(path)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "resolver.interval must be positive")
	assert.Contains(t, msg, "invalid data bits 9")
	assert.Contains(t, msg, `beacons.b.name "same" is not unique`)
	assert.Contains(t, msg, `unknown ranging model "magic"`)
}
