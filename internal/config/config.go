/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config loads the router's two external inputs through
// spf13/viper: the host inventory JSON document and the handful of
// process-level settings (inventory path, log file and level,
// sequence-diagram file, metrics address) that may come from flags,
// environment, or a config file.
package config

import (
	"fmt"
	"net"

	spfpfl "github.com/spf13/pflag"
	spfvpr "github.com/spf13/viper"

	rterr "github.com/submitty/router/internal/errors"
	"github.com/submitty/router/internal/hostdir"
)

// hostEntry mirrors the inventory file's per-host object shape for
// viper/mapstructure unmarshaling.
type hostEntry struct {
	IPAddress    string `mapstructure:"ip_address"`
	TCPStartPort int    `mapstructure:"tcp_start_port"`
	TCPEndPort   int    `mapstructure:"tcp_end_port"`
	UDPStartPort int    `mapstructure:"udp_start_port"`
	UDPEndPort   int    `mapstructure:"udp_end_port"`
}

// inventory mirrors the inventory file's top-level shape: {"hosts": {...}}.
type inventory struct {
	Hosts map[string]hostEntry `mapstructure:"hosts"`
}

// Settings is the router's process-level configuration, bindable to
// flags, environment variables, or a config file through viper.
type Settings struct {
	InventoryPath string
	LogFile       string
	LogLevel      string
	DiagramFile   string
	MetricsAddr   string
}

// BindFlags registers the settings' flags on fs, so a cobra command can
// expose them on the CLI while still letting viper fall back to
// environment variables or a config file.
func BindFlags(fs *spfpfl.FlagSet, v *spfvpr.Viper) {
	fs.String("inventory", "knownhosts.json", "path to the host inventory JSON file")
	fs.String("log-file", "", "path to mirror log entries to, in addition to stdout")
	fs.String("log-level", "info", "minimum log level: error, warning, info, debug")
	fs.String("diagram-file", "sequence_diagram.txt", "path to the sequence-diagram output file")
	fs.String("metrics-addr", "", "address to serve /metrics on, empty disables it")

	_ = v.BindPFlag("inventory", fs.Lookup("inventory"))
	_ = v.BindPFlag("log-file", fs.Lookup("log-file"))
	_ = v.BindPFlag("log-level", fs.Lookup("log-level"))
	_ = v.BindPFlag("diagram-file", fs.Lookup("diagram-file"))
	_ = v.BindPFlag("metrics-addr", fs.Lookup("metrics-addr"))
}

// LoadSettings reads the bound flags/environment/config file into a
// Settings value.
func LoadSettings(v *spfvpr.Viper) Settings {
	return Settings{
		InventoryPath: v.GetString("inventory"),
		LogFile:       v.GetString("log-file"),
		LogLevel:      v.GetString("log-level"),
		DiagramFile:   v.GetString("diagram-file"),
		MetricsAddr:   v.GetString("metrics-addr"),
	}
}

// LoadInventory reads and parses the host inventory JSON document at
// path, returning the host directory entries in map-iteration order.
func LoadInventory(path string) ([]hostdir.Entry, rterr.Error) {
	v := spfvpr.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, rterr.New(rterr.InventoryParse, fmt.Sprintf("reading inventory file %s", path), err)
	}

	var inv inventory
	if err := v.Unmarshal(&inv); err != nil {
		return nil, rterr.New(rterr.InventoryParse, "decoding inventory document", err)
	}

	entries := make([]hostdir.Entry, 0, len(inv.Hosts))
	for name, h := range inv.Hosts {
		ip := net.ParseIP(h.IPAddress)
		if ip == nil {
			return nil, rterr.New(rterr.InventoryParse, fmt.Sprintf("host %q has invalid ip_address %q", name, h.IPAddress), nil)
		}

		entries = append(entries, hostdir.Entry{
			Name:        name,
			IP:          ip,
			TCPPortLow:  h.TCPStartPort,
			TCPPortHigh: h.TCPEndPort,
			UDPPortLow:  h.UDPStartPort,
			UDPPortHigh: h.UDPEndPort,
		})
	}

	return entries, nil
}
