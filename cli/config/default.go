package config

import (
	"github.com/SeismicSystems/seismic-go/config"
)

// Default is the default config that should be used in case no configuration file exists.
var Default = Config{
	Networks: config.DefaultNetworks,
}
