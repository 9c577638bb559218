// Package config supplies MachineIdentity values from the environment, the
// teacher's approach to configuration (see pkg/smb's ClientConfig) adapted
// to the handful of secrets/identifiers the Netlogon core needs from
// outside the RPC path (§6: get_machine_password, get_netbios_hostname,
// get_nb_domain, get_fqdn_domain).
package config

import (
	"os"

	"github.com/go-netlogon/netlogonctl/pkg/netlogon"
)

// Environment variable names read by EnvConfig.
const (
	EnvMachinePassword = "NETLOGON_MACHINE_PASSWORD"
	EnvHostname        = "NETLOGON_HOSTNAME"
	EnvNBDomain        = "NETLOGON_NB_DOMAIN"
	EnvFQDNDomain      = "NETLOGON_FQDN_DOMAIN"
	EnvServerUNC       = "NETLOGON_SERVER_UNC"
)

// Config supplies everything Negotiate needs beyond the transport.
type Config interface {
	MachineIdentity() (netlogon.MachineIdentity, error)
}

// EnvConfig reads machine identity fields from the process environment.
type EnvConfig struct{}

// MachineIdentity builds a netlogon.MachineIdentity from environment
// variables. ErrConfigMissing-shaped failures surface as
// netlogon.ErrConfigMissing so callers can treat "no secret" the same way
// regardless of which config source produced it.
func (EnvConfig) MachineIdentity() (netlogon.MachineIdentity, error) {
	hostname := os.Getenv(EnvHostname)
	password := os.Getenv(EnvMachinePassword)
	if hostname == "" || password == "" {
		return netlogon.MachineIdentity{}, netlogon.ErrConfigMissing
	}

	return netlogon.MachineIdentity{
		NetBIOSHostname: hostname,
		NBDomain:        os.Getenv(EnvNBDomain),
		FQDNDomain:      os.Getenv(EnvFQDNDomain),
		ServerUNC:       os.Getenv(EnvServerUNC),
		MachinePassword: []byte(password),
	}, nil
}
