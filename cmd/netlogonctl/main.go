// Command netlogonctl establishes a Netlogon secure channel against a
// domain controller and, optionally, rotates the local trust account's
// password over it.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mjwhitta/cli"

	"github.com/go-netlogon/netlogonctl/pkg/debug"
	"github.com/go-netlogon/netlogonctl/pkg/netlogon"
	"github.com/go-netlogon/netlogonctl/pkg/netlogon/config"
	"github.com/go-netlogon/netlogonctl/pkg/netrpc"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
)

func main() {
	var (
		target          string
		domain          string
		hostname        string
		machinePassword string
		rotatePassword  bool
		shell           bool
	)

	cli.Align = true
	cli.Banner = "netlogonctl [OPTIONS]"
	cli.Info("Netlogon secure-channel negotiator and trust-account password rotator")
	cli.Authors = []string{"netlogonctl"}

	cli.Flag(&target, "t", "target", "", "Target domain controller (hostname or IP)")
	cli.Flag(&domain, "d", "domain", "", "NetBIOS domain name")
	cli.Flag(&hostname, "n", "hostname", "", "This machine's NetBIOS hostname (no trailing $)")
	cli.Flag(&machinePassword, "p", "password", "", "Machine account password (overrides NETLOGON_MACHINE_PASSWORD)")
	cli.Flag(&rotatePassword, "rotate-password", false, "Rotate the trust account password after negotiating")
	cli.Flag(&shell, "i", "shell", false, "Start an interactive shell on the negotiated channel")
	cli.Flag(&debug.Verbose, "v", "verbose", false, "Verbose protocol tracing")

	cli.Parse()

	if target == "" || hostname == "" {
		error_("Missing target (-t) or hostname (-n)")
		cli.Usage(1)
	}

	identity, err := resolveIdentity(hostname, domain, target, machinePassword)
	if err != nil {
		error_("Resolving machine identity: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	info_("Dialing %s...", target)
	transport, err := netrpc.Dial(ctx, target, 445)
	if err != nil {
		error_("Dial failed: %v", err)
		os.Exit(1)
	}
	defer transport.Close()

	info_("Negotiating secure channel as %s...", identity.AccountName())
	channel, err := netlogon.Negotiate(transport, identity, nil)
	if err != nil {
		error_("Negotiation failed: %v", err)
		os.Exit(1)
	}
	defer channel.Close()
	success_("Secure channel established")

	if rotatePassword {
		info_("Rotating trust account password...")
		if err := channel.ChangeMachinePassword(); err != nil {
			error_("Password rotation failed: %v", err)
			os.Exit(1)
		}
		success_("Password rotated")
	}

	if shell {
		runShell(channel)
	}
}

// resolveIdentity builds a netlogon.MachineIdentity from flags. Only when no
// password flag is given does it consult config.EnvConfig, and then only if
// that succeeds (both NETLOGON_HOSTNAME and NETLOGON_MACHINE_PASSWORD set):
// the password, and any hostname or domain missing from the flags, come
// from the environment. ServerUNC is always built from target.
func resolveIdentity(hostname, domain, target, password string) (netlogon.MachineIdentity, error) {
	if password == "" {
		env, err := (config.EnvConfig{}).MachineIdentity()
		if err == nil {
			if hostname == "" {
				hostname = env.NetBIOSHostname
			}
			if domain == "" {
				domain = env.NBDomain
			}
			password = string(env.MachinePassword)
		}
	}

	if password == "" {
		return netlogon.MachineIdentity{}, netlogon.ErrConfigMissing
	}

	return netlogon.MachineIdentity{
		NetBIOSHostname: hostname,
		NBDomain:        domain,
		ServerUNC:       `\\` + target,
		MachinePassword: []byte(password),
	}, nil
}

func info_(format string, args ...interface{}) {
	fmt.Printf(colorCyan+"[*]"+colorReset+" "+format+"\n", args...)
}

func success_(format string, args ...interface{}) {
	fmt.Printf(colorGreen+"[+]"+colorReset+" "+format+"\n", args...)
}

func error_(format string, args ...interface{}) {
	fmt.Printf(colorRed+"[!]"+colorReset+" "+format+"\n", args...)
}

func warn_(format string, args ...interface{}) {
	fmt.Printf(colorYellow+"[-]"+colorReset+" "+format+"\n", args...)
}

func parseArgs(line string) []string {
	return strings.Fields(line)
}
