// Package runtime materializes the viper-backed configuration into a
// plain struct the commands hand to the library.
package runtime

import (
	"github.com/spf13/viper"
)

// Config contains configuration details for running imagesize.
type Config struct {
	Image       string
	RegistryURI string
	Threshold   float64
	Username    string
	Password    string
	LogFile     string
	LogLevel    string
	Artifacts   string
}

// NewConfigFrom will return a runtime.Config based on the stored
// inputs in the provided viper.Viper. Defaults should be set before
// this function is called.
func NewConfigFrom(vcfg viper.Viper) (*Config, error) {
	cfg := Config{}
	cfg.RegistryURI = vcfg.GetString("registry")
	cfg.Threshold = vcfg.GetFloat64("threshold")
	cfg.Username = vcfg.GetString("username")
	cfg.Password = vcfg.GetString("password")
	cfg.LogFile = vcfg.GetString("logfile")
	cfg.LogLevel = vcfg.GetString("loglevel")
	cfg.Artifacts = vcfg.GetString("artifacts")
	return &cfg, nil
}
