package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
)

const numGeneratedKeys = 5

// Config is the fuzzer.json file in the fuzzer data directory
type Config struct {
	RPCUrl                     string   `json:"rpcURL"`
	AdminRPCUrl                string   `json:"adminRPCUrl"`
	PrivateKeys                []string `json:"privateKeys"` // hex encoded secp256k1 keys the fuzzer signs with
	PercentInvalidTransactions int      `json:"percentInvalidTransactions"`
	IntervalMS                 int      `json:"intervalMS"`
}

// DefaultConfig() points at a local node and generates a fresh set of keys
func DefaultConfig() (*Config, error) {
	rpcConfig := lib.DefaultRPCConfig()
	c := &Config{
		RPCUrl:                     rpcConfig.RPCUrl,
		AdminRPCUrl:                rpcConfig.AdminRPCUrl,
		PercentInvalidTransactions: 20,
		IntervalMS:                 100,
	}
	for i := 0; i < numGeneratedKeys; i++ {
		pk, err := crypto.NewPrivateKey()
		if err != nil {
			return nil, err
		}
		c.PrivateKeys = append(c.PrivateKeys, pk.String())
	}
	return c, nil
}

// ConfigFromFile() loads the config in the data directory, writing a default one first if missing
func ConfigFromFile(dataDir string, l lib.LoggerI) *Config {
	configFilePath := filepath.Join(dataDir, configFileName)
	l.Infof("Reading data directory at %s", dataDir)
	if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
		l.Fatal(err.Error())
	}
	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		l.Infof("Creating %s file", configFilePath)
		c, e := DefaultConfig()
		if e != nil {
			l.Fatal(e.Error())
		}
		if er := lib.SaveJSONToFile(c, dataDir, configFileName); er != nil {
			l.Fatal(er.Error())
		}
	}
	l.Infof("Reading config file at %s", configFilePath)
	c := new(Config)
	if err := lib.NewJSONFromFile(c, dataDir, configFileName); err != nil {
		l.Fatal(err.Error())
	}
	if len(c.PrivateKeys) == 0 {
		l.Fatalf("no private keys are in the config file: %s", configFilePath)
	}
	return c
}
