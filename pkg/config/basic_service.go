package config

import (
	"net"
	"strconv"
)

// BasicService is used as a simple base for services like pprof, the event
// feed or Prometheus monitoring.
type BasicService struct {
	Enabled bool   `yaml:"Enabled"`
	Address string `yaml:"Address"`
	Port    uint16 `yaml:"Port"`
}

// GetAddress returns the host:port bind address of the service.
func (s BasicService) GetAddress() string {
	return net.JoinHostPort(s.Address, strconv.FormatUint(uint64(s.Port), 10))
}
