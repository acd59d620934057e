package lib

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/units"
	"github.com/caarlos0/env/v11"
)

/* This file implements logic for 'user controlled' configurations of each module of the node */

const (
	// FILE NAMES in the 'data directory'
	ConfigFilePath = "config.json" // the file path for the node configuration
)

// Config is the structure of the user configuration options for a committee node
type Config struct {
	MainConfig    // main options spanning over all modules
	RPCConfig     // rpc API options
	StoreConfig   // persistence options
	MetricsConfig // telemetry options
}

// DefaultConfig() returns a Config with developer set options
func DefaultConfig() Config {
	return Config{
		MainConfig:    DefaultMainConfig(),
		RPCConfig:     DefaultRPCConfig(),
		StoreConfig:   DefaultStoreConfig(),
		MetricsConfig: DefaultMetricsConfig(),
	}
}

// MAIN CONFIG BELOW

type MainConfig struct {
	LogLevel       string   `json:"logLevel" env:"COMMITTEE_LOG_LEVEL"` // any level includes the levels above it: debug < info < warning < error
	FactoryAddress HexBytes `json:"factoryAddress"`                     // the address of the committee factory, seeds the derivation of committee addresses
}

// DefaultMainConfig() sets log level to 'info'
func DefaultMainConfig() MainConfig {
	return MainConfig{
		LogLevel:       "info",
		FactoryAddress: DefaultFactoryAddress,
	}
}

// DefaultFactoryAddress is the factory address used when none is configured
var DefaultFactoryAddress = HexBytes{
	0xfa, 0xc7, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
}

// GetLogLevel() parses the log string in the config file into a LogLevel Enum
func (m *MainConfig) GetLogLevel() int32 {
	switch {
	case strings.Contains(strings.ToLower(m.LogLevel), "deb"):
		return DebugLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "inf"):
		return InfoLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "war"):
		return WarnLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "err"):
		return ErrorLevel
	default:
		return DebugLevel
	}
}

// RPC CONFIG BELOW

type RPCConfig struct {
	RPCPort      string `json:"rpcPort" env:"COMMITTEE_RPC_PORT"`          // the port where the rpc server is hosted
	AdminPort    string `json:"adminPort" env:"COMMITTEE_ADMIN_PORT"`      // the port where the admin rpc server is hosted
	RPCUrl       string `json:"rpcURL" env:"COMMITTEE_RPC_URL"`            // the url where the rpc server is hosted
	AdminRPCUrl  string `json:"adminRPCUrl" env:"COMMITTEE_ADMIN_RPC_URL"` // the url where the admin rpc server is hosted
	TimeoutS     int    `json:"timeoutS" env:"COMMITTEE_RPC_TIMEOUT_S"`    // the rpc request timeout in seconds
	MaxBodyBytes int64  `json:"maxBodyBytes"`                              // the maximum size of a request body
	MaxConns     int    `json:"maxConns"`                                  // the maximum number of simultaneous connections per server
}

// DefaultRPCConfig() sets rpc url to localhost and the rpc and admin ports to 50002 and 50003
func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		RPCPort:      "50002",                  // the rpc is served on localhost:50002
		AdminPort:    "50003",                  // the admin rpc is served on localhost:50003
		RPCUrl:       "http://localhost:50002", // use a local rpc by default
		AdminRPCUrl:  "http://localhost:50003", // use a local admin rpc by default
		TimeoutS:     3,                        // the rpc timeout is 3 seconds
		MaxBodyBytes: int64(units.MB),          // 1 MB request bodies
		MaxConns:     256,                      // 256 open connections per server
	}
}

// STORE CONFIG BELOW

// StoreConfig is user configurations for the key value database
type StoreConfig struct {
	DataDirPath      string `json:"dataDirPath"`                        // path of the designated folder where the application stores its data
	DBName           string `json:"dbName" env:"COMMITTEE_DB_NAME"`     // name of the database
	InMemory         bool   `json:"inMemory" env:"COMMITTEE_IN_MEMORY"` // non-disk database, only for testing
	MemTableSize     int64  `json:"memTableSize"`                       // size of each badger memtable
	ValueLogFileSize int64  `json:"valueLogFileSize"`                   // size of each badger value log file
}

// DefaultDataDirPath() is $USERHOME/.committee
func DefaultDataDirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, ".committee")
}

// DefaultStoreConfig() returns the developer recommended store configuration
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		DataDirPath:      DefaultDataDirPath(),
		DBName:           "committee",
		InMemory:         false,
		MemTableSize:     int64(16 * units.MB),
		ValueLogFileSize: int64(128 * units.MB),
	}
}

// METRICS CONFIG BELOW

// MetricsConfig represents the configuration for the metrics server
type MetricsConfig struct {
	Enabled           bool   `json:"enabled" env:"COMMITTEE_METRICS_ENABLED"`              // if the metrics are enabled
	PrometheusAddress string `json:"prometheusAddress" env:"COMMITTEE_PROMETHEUS_ADDRESS"` // the address of the server
}

// DefaultMetricsConfig() returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:           true,
		PrometheusAddress: "0.0.0.0:9090",
	}
}

// WriteToFile() saves the Config object to a JSON file
func (c Config) WriteToFile(filepath string) error {
	jsonBytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, jsonBytes, os.ModePerm)
}

// NewConfigFromFile() populates a Config object from a JSON file, defaults fill in any blanks and
// COMMITTEE_* environment variables override the file
func NewConfigFromFile(filepath string) (Config, error) {
	fileBytes, err := os.ReadFile(filepath)
	if err != nil {
		return Config{}, err
	}
	c := DefaultConfig()
	if err = json.Unmarshal(fileBytes, &c); err != nil {
		return Config{}, err
	}
	if err = env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
