package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"locator/internal/beacon"
	"locator/internal/geometry"
	"locator/internal/ranging"
	"locator/internal/uart"
)

// Config holds all application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Serial   SerialConfig   `mapstructure:"serial"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Recorder RecorderConfig `mapstructure:"recorder"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Beacons  BeaconsConfig  `mapstructure:"beacons"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

type MQTTConfig struct {
	Broker         string        `mapstructure:"broker"`
	ClientID       string        `mapstructure:"client_id"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	ScanTopic      string        `mapstructure:"scan_topic"`
	PositionTopic  string        `mapstructure:"position_topic"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type SerialConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	BaudRate int    `mapstructure:"baud_rate"`
	DataBits int    `mapstructure:"data_bits"`
	StopBits int    `mapstructure:"stop_bits"`
	Parity   string `mapstructure:"parity"`
}

// PortOptions converts the serial section into port options.
func (s SerialConfig) PortOptions() uart.PortOptions {
	return uart.PortOptions{
		BaudRate: s.BaudRate,
		DataBits: s.DataBits,
		StopBits: s.StopBits,
		Parity:   s.Parity,
	}
}

type ResolverConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	MaxAge   time.Duration `mapstructure:"max_age"`
}

type RecorderConfig struct {
	Path string `mapstructure:"path"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// BeaconConfig describes one fixed beacon: the name it advertises, its
// reference position, and its ranging model.
type BeaconConfig struct {
	Name      string  `mapstructure:"name"`
	X         float64 `mapstructure:"x"`
	Y         float64 `mapstructure:"y"`
	Model     string  `mapstructure:"model"` // path_loss or log_linear
	TxPower   float64 `mapstructure:"tx_power"`
	Exponent  float64 `mapstructure:"exponent"`
	Slope     float64 `mapstructure:"slope"`
	Intercept float64 `mapstructure:"intercept"`
}

type BeaconsConfig struct {
	A BeaconConfig `mapstructure:"a"`
	B BeaconConfig `mapstructure:"b"`
	C BeaconConfig `mapstructure:"c"`
}

// ByLabel returns the beacon sections in A, B, C order.
func (b BeaconsConfig) ByLabel() [3]BeaconConfig {
	return [3]BeaconConfig{b.A, b.B, b.C}
}

// Coords returns the reference positions indexed by beacon.Label.
func (b BeaconsConfig) Coords() [3]geometry.Point {
	var out [3]geometry.Point
	for l, bc := range b.ByLabel() {
		out[l] = geometry.Point{X: bc.X, Y: bc.Y}
	}
	return out
}

// Names maps advertised beacon names to labels.
func (b BeaconsConfig) Names() map[string]beacon.Label {
	out := make(map[string]beacon.Label, 3)
	for l, bc := range b.ByLabel() {
		out[bc.Name] = beacon.Label(l)
	}
	return out
}

// Ranging builds the per-beacon distance models.
func (b BeaconsConfig) Ranging() (*ranging.Table, error) {
	tbl := ranging.NewTable()
	for l, bc := range b.ByLabel() {
		m, err := ranging.ParseModel(bc.Model, bc.TxPower, bc.Exponent, bc.Slope, bc.Intercept)
		if err != nil {
			return nil, fmt.Errorf("beacon %s: %w", beacon.Label(l), err)
		}
		tbl.Set(beacon.Label(l), m)
	}
	return tbl, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "locator")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.scan_topic", "sar-robot/scan")
	v.SetDefault("mqtt.position_topic", "sar-robot/position")
	v.SetDefault("mqtt.connect_timeout", 60*time.Second)

	v.SetDefault("serial.enabled", false)
	v.SetDefault("serial.path", "/dev/ttyUSB0")
	v.SetDefault("serial.baud_rate", uart.DefaultBaudRate)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("serial.parity", "N")

	v.SetDefault("resolver.interval", 2*time.Second)
	v.SetDefault("resolver.max_age", 10*time.Second)
	v.SetDefault("recorder.path", "data/positions.csv")
	v.SetDefault("metrics.addr", "")

	defaults := map[string]struct {
		name string
		x, y float64
	}{
		"a": {"BEACON-A", 300, 0},
		"b": {"BEACON-B", -300, 0},
		"c": {"BEACON-C", 0, 300},
	}
	for key, d := range defaults {
		prefix := "beacons." + key + "."
		v.SetDefault(prefix+"name", d.name)
		v.SetDefault(prefix+"x", d.x)
		v.SetDefault(prefix+"y", d.y)
		v.SetDefault(prefix+"model", "path_loss")
		v.SetDefault(prefix+"tx_power", ranging.DefaultPathLoss.TxPower)
		v.SetDefault(prefix+"exponent", ranging.DefaultPathLoss.Exponent)
		v.SetDefault(prefix+"slope", 0.0)
		v.SetDefault(prefix+"intercept", 0.0)
	}
}

// Load reads configuration from an optional YAML file and LOCATOR_ prefixed
// environment variables. An empty path searches ./config.yaml and
// ./configs/config.yaml and tolerates neither existing; an explicit path must
// be readable.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		_ = v.ReadInConfig() // OK if missing
	}

	// LOCATOR_MQTT_BROKER → mqtt.broker
	v.SetEnvPrefix("LOCATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.Broker == "" {
		errs = append(errs, "mqtt.broker is required")
	}
	if c.MQTT.ScanTopic == "" {
		errs = append(errs, "mqtt.scan_topic is required")
	}
	if c.MQTT.ConnectTimeout <= 0 {
		errs = append(errs, "mqtt.connect_timeout must be positive")
	}
	if c.Resolver.Interval <= 0 {
		errs = append(errs, "resolver.interval must be positive")
	}
	if c.Resolver.MaxAge < 0 {
		errs = append(errs, "resolver.max_age must not be negative")
	}
	if c.Serial.Enabled {
		if c.Serial.Path == "" {
			errs = append(errs, "serial.path is required when serial is enabled")
		}
		if _, err := c.Serial.PortOptions().Normalize(); err != nil {
			errs = append(errs, "serial: "+err.Error())
		}
	}

	names := make(map[string]bool, 3)
	for l, bc := range c.Beacons.ByLabel() {
		key := "beacons." + strings.ToLower(beacon.Label(l).String())
		if bc.Name == "" {
			errs = append(errs, key+".name is required")
		} else if names[bc.Name] {
			errs = append(errs, fmt.Sprintf("%s.name %q is not unique", key, bc.Name))
		}
		names[bc.Name] = true
		if math.IsNaN(bc.X) || math.IsInf(bc.X, 0) || math.IsNaN(bc.Y) || math.IsInf(bc.Y, 0) {
			errs = append(errs, key+" position must be finite")
		}
	}
	if _, err := c.Beacons.Ranging(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
