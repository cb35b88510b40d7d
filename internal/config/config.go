// Package config loads the sensor's configuration: a YAML file with
// the sections named in §6 (acquisition, preprocessing, mqtt, system,
// data_fusion, remote_id.wifi, remote_id.ble), layered the way the
// teacher's own config.Load layers sources — flags override
// environment variables, which override the file's defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Acquisition mirrors the `acquisition` YAML section: Sample Source
// tuning knobs.
type Acquisition struct {
	DeviceArgs   string  `yaml:"device_args"`
	CenterFreqHz float64 `yaml:"center_freq_hz"`
	SampleRateHz float64 `yaml:"sample_rate_hz"`
	GainDB       float64 `yaml:"gain_db"`
	Antenna      string  `yaml:"antenna"`
	NumSamples   int     `yaml:"num_samples"`
}

// Preprocessing mirrors the `preprocessing` YAML section.
type Preprocessing struct {
	Normalize   string  `yaml:"normalize"`
	BandpassLow float64 `yaml:"bandpass_low_hz"`
	BandpassHigh float64 `yaml:"bandpass_high_hz"`
}

// MQTT mirrors the `mqtt` YAML section.
type MQTT struct {
	BrokerURL      string `yaml:"broker_url"`
	ClientID       string `yaml:"client_id"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	ConnectTimeoutS int   `yaml:"connect_timeout_s"`
	PublishTimeoutS int   `yaml:"publish_timeout_s"`
}

// System mirrors the `system` YAML section: channel plan and hop
// dwell, debug/status HTTP address, log verbosity.
type System struct {
	ChannelPlan string `yaml:"channel_plan"`
	HopDwellS   int    `yaml:"hop_dwell_s"`
	Include5GHz bool   `yaml:"include_5ghz"`
	HTTPAddr    string `yaml:"http_addr"`
	Verbose     bool   `yaml:"verbose"`
}

// DataFusion mirrors the `data_fusion` YAML section: threat
// assessment limits and zone list.
type DataFusion struct {
	HeightAGLLimitM        float64        `yaml:"height_agl_limit_m"`
	SpeedLimitMPS          float64        `yaml:"speed_limit_mps"`
	OperatorDistanceLimitM float64        `yaml:"operator_distance_limit_m"`
	OperatorLatitude       float64        `yaml:"operator_latitude"`
	OperatorLongitude      float64        `yaml:"operator_longitude"`
	Zones                  []ZoneConfig   `yaml:"zones"`
}

// ZoneConfig is one restricted-zone entry.
type ZoneConfig struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	RadiusKM  float64 `yaml:"radius_km"`
}

// RemoteIDWiFi mirrors the `remote_id.wifi` YAML section.
type RemoteIDWiFi struct {
	ToleranceWindowBytes int `yaml:"tolerance_window_bytes"`
}

// RemoteIDBLE mirrors the `remote_id.ble` YAML section.
type RemoteIDBLE struct {
	ScanWindowS          int `yaml:"scan_window_s"`
	ToleranceWindowBytes int `yaml:"tolerance_window_bytes"`
}

// RemoteID groups the two remote_id.* YAML subsections.
type RemoteID struct {
	WiFi RemoteIDWiFi `yaml:"wifi"`
	BLE  RemoteIDBLE  `yaml:"ble"`
}

// Config is the fully resolved configuration, the union of every
// section named in §6.
type Config struct {
	Acquisition   Acquisition   `yaml:"acquisition"`
	Preprocessing Preprocessing `yaml:"preprocessing"`
	MQTT          MQTT          `yaml:"mqtt"`
	System        System        `yaml:"system"`
	DataFusion    DataFusion    `yaml:"data_fusion"`
	RemoteID      RemoteID      `yaml:"remote_id"`
}

// Default returns a Config populated with the §4.8 literal defaults
// (hop dwell, threat limits) and otherwise-reasonable baseline values,
// the starting point before file/env/flag overrides are applied.
func Default() *Config {
	return &Config{
		Acquisition: Acquisition{
			SampleRateHz: 20e6,
			GainDB:       30,
			NumSamples:   150000,
		},
		System: System{
			ChannelPlan: "all",
			HopDwellS:   7,
			HTTPAddr:    ":8080",
		},
		DataFusion: DataFusion{
			HeightAGLLimitM:        120,
			SpeedLimitMPS:          20,
			OperatorDistanceLimitM: 5000,
		},
		MQTT: MQTT{
			BrokerURL:       "tcp://localhost:1883",
			ConnectTimeoutS: 5,
			PublishTimeoutS: 5,
		},
		RemoteID: RemoteID{
			WiFi: RemoteIDWiFi{ToleranceWindowBytes: 128},
			BLE:  RemoteIDBLE{ScanWindowS: 5, ToleranceWindowBytes: 64},
		},
	}
}

// Load builds a Config by merging, in increasing precedence: the
// §4.8 defaults, an optional YAML file at path (skipped if path is
// empty or the file does not exist), environment variables, and
// command-line flags registered against fs. A malformed YAML file is a
// Configuration error per §7: fatal, reported to the caller rather than
// panicking. Load does not parse the channel plan, so an unknown
// channel-plan token is not detected here. If no MQTT
// client ID is configured, a unique one is generated so that multiple
// sensors can share a broker without colliding.
func Load(fs *flag.FlagSet, args []string, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	centerFreq := fs.Float64("center-freq", cfg.Acquisition.CenterFreqHz, "center frequency in Hz")
	gain := fs.Float64("gain", cfg.Acquisition.GainDB, "gain in dB")
	sampleRate := fs.Float64("sample-rate", cfg.Acquisition.SampleRateHz, "sample rate in Hz")
	scanChannels := fs.String("scan-channels", cfg.System.ChannelPlan, "channel plan mini-language expression")
	hopInterval := fs.Int("hop-interval", cfg.System.HopDwellS, "hop dwell interval in seconds")
	include5GHz := fs.Bool("include-5ghz", cfg.System.Include5GHz, "include 5 GHz channels in the hop plan")
	deviceArgs := fs.String("device-args", cfg.Acquisition.DeviceArgs, "sample-source device arguments")
	verbose := fs.Bool("verbose", cfg.System.Verbose, "enable verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parsing flags: %w", err)
	}

	cfg.Acquisition.CenterFreqHz = *centerFreq
	cfg.Acquisition.GainDB = *gain
	cfg.Acquisition.SampleRateHz = *sampleRate
	cfg.System.ChannelPlan = *scanChannels
	cfg.System.HopDwellS = *hopInterval
	cfg.System.Include5GHz = *include5GHz
	cfg.Acquisition.DeviceArgs = *deviceArgs
	cfg.System.Verbose = *verbose

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "dronerid-" + uuid.NewString()
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("DRONERID_MQTT_BROKER_URL"); ok {
		cfg.MQTT.BrokerURL = v
	}
	if v, ok := os.LookupEnv("DRONERID_CHANNEL_PLAN"); ok {
		cfg.System.ChannelPlan = v
	}
	if v, ok := os.LookupEnv("DRONERID_GAIN_DB"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Acquisition.GainDB = f
		}
	}
	if v, ok := os.LookupEnv("DRONERID_VERBOSE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.System.Verbose = b
		}
	}
}
