package main

import (
	"os"
	"strings"
)

// RobotEnvVar marks an invocation as non-interactive.
const RobotEnvVar = "TITANIC_ROBOT"

// Lipgloss probes the terminal background with OSC/DSR queries. In captured
// PTYs those bytes land in stdout and corrupt robot JSON, so non-interactive
// runs set CI=1, which disables the probing.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args[1:], os.Getenv(RobotEnvVar) == "1") {
		return
	}
	_ = os.Setenv("CI", "1")
}

func shouldSuppressTTYQueries(args []string, envRobot bool) bool {
	if envRobot {
		return true
	}
	for _, arg := range args {
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if strings.HasPrefix(name, "robot-") {
			return true
		}
		switch name {
		case "version", "help", "export", "export-dir":
			return true
		}
	}
	return false
}
