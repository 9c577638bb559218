package main

import (
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/go-netlogon/netlogonctl/pkg/netlogon"
)

// runShell starts a small REPL over an already-negotiated channel, adapted
// from the teacher's ADS interactive shell loop — here the only state worth
// poking at interactively is the channel's validity and a manual password
// rotation trigger, useful for exercising a long-lived channel during
// testing.
func runShell(channel *netlogon.Channel) {
	rl, err := readline.New("netlogon> ")
	if err != nil {
		error_("Failed to start shell: %v", err)
		return
	}
	defer rl.Close()

	info_("Interactive shell — commands: status, rotate-password, exit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := parseArgs(line)
		switch strings.ToLower(args[0]) {
		case "status":
			cmdStatus(channel)
		case "rotate-password":
			cmdRotatePassword(channel)
		case "exit", "quit":
			return
		default:
			warn_("Unknown command: %s", args[0])
		}
	}
}

func cmdStatus(channel *netlogon.Channel) {
	if channel.Valid() {
		success_("channel valid")
	} else {
		warn_("channel invalid — renegotiate required")
	}
}

func cmdRotatePassword(channel *netlogon.Channel) {
	if err := channel.ChangeMachinePassword(); err != nil {
		error_("rotation failed: %v", err)
		return
	}
	success_("password rotated")
}
