package clix

import (
	"errors"
	"net"
	"strings"

	"github.com/spf13/pflag"
)

// OutputParams controls how classify reports its results.
type OutputParams struct {
	Path     string
	Table    bool
	ShowCost bool
}

func ParseOutput(flags *pflag.FlagSet) (OutputParams, error) {
	path, _ := flags.GetString("output")
	table, _ := flags.GetBool("table")
	showCost, _ := flags.GetBool("show-cost")

	path = strings.TrimSpace(path)
	if table && path != "" {
		return OutputParams{}, errors.New("--table and --output cannot be combined")
	}
	return OutputParams{Path: path, Table: table, ShowCost: showCost}, nil
}

// ParseListenAddr joins --addr and --port, falling back to the configured
// values for flags that were not set.
func ParseListenAddr(flags *pflag.FlagSet, defaultAddr, defaultPort string) string {
	addr, port := defaultAddr, defaultPort
	if flags.Changed("addr") {
		addr, _ = flags.GetString("addr")
	}
	if flags.Changed("port") {
		port, _ = flags.GetString("port")
	}
	return net.JoinHostPort(strings.TrimSpace(addr), strings.TrimSpace(port))
}
