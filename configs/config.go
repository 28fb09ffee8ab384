// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package configs provides the distiller's configuration.
package configs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/komkom/toml"
)

// EnvPrefix is the prefix of every environment variable
// overriding a configuration value.
const EnvPrefix = "DISTILLER_"

var (
	version      = "dev"
	buildTimeStr string
	buildTime    time.Time
)

type config struct {
	Main      configMain      `json:"main" envPrefix:"MAIN_"`
	Server    configServer    `json:"server" envPrefix:"SERVER_"`
	Distiller configDistiller `json:"distiller"`
}

type configMain struct {
	LogLevel slog.Level `json:"log_level" env:"LOG_LEVEL"`
	DevMode  bool       `json:"dev_mode" env:"DEV_MODE"`
}

type configServer struct {
	Host           string  `json:"host" env:"HOST"`
	Port           int     `json:"port" env:"PORT"`
	Prefix         string  `json:"prefix" env:"PREFIX"`
	TrustedProxies []IPNet `json:"trusted_proxies" env:"TRUSTED_PROXIES"`
}

type configDistiller struct {
	DefaultFormat string            `json:"default_format" env:"DEFAULT_FORMAT"`
	Timeout       Duration          `json:"timeout" env:"TIMEOUT"`
	MaxBodySize   int64             `json:"max_body_size" env:"MAX_BODY_SIZE"`
	Workers       int               `json:"workers" env:"WORKERS"`
	RDFOutput     bool              `json:"rdf_output" env:"RDF_OUTPUT"`
	DeniedIPs     []IPNet           `json:"denied_ips" env:"DENIED_IPS"`
	UserAgent     string            `json:"user_agent" env:"USER_AGENT"`
	Prefixes      map[string]string `json:"prefixes" env:"PREFIXES"`
}

// Duration is a [time.Duration] read from a string like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// IPNet is an IP network read from its CIDR notation.
type IPNet struct {
	*net.IPNet
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (n *IPNet) UnmarshalText(text []byte) error {
	_, v, err := net.ParseCIDR(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	n.IPNet = v
	return nil
}

func mustCIDR(s string) IPNet {
	n := IPNet{}
	if err := n.UnmarshalText([]byte(s)); err != nil {
		panic(err)
	}
	return n
}

// Config holds the configuration data.
var Config = newConfig()

func newConfig() config {
	return config{
		Main: configMain{
			LogLevel: slog.LevelInfo,
		},
		Server: configServer{
			Host: "127.0.0.1",
			Port: 8000,
			TrustedProxies: []IPNet{
				mustCIDR("127.0.0.0/8"),
				mustCIDR("10.0.0.0/8"),
				mustCIDR("172.16.0.0/12"),
				mustCIDR("192.168.0.0/16"),
				mustCIDR("fd00::/8"),
				mustCIDR("::1/128"),
			},
		},
		Distiller: configDistiller{
			DefaultFormat: "turtle",
			Timeout:       Duration{30 * time.Second},
			MaxBodySize:   10 << 20,
			Workers:       runtime.NumCPU(),
			UserAgent:     "Distiller/" + version,
			Prefixes:      map[string]string{},
		},
	}
}

// Reset restores the default configuration.
func Reset() {
	Config = newConfig()
}

// LoadConfiguration loads a TOML configuration file.
func LoadConfiguration(filename string) error {
	fd, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer fd.Close() //nolint:errcheck

	return loadConfiguration(fd)
}

func loadConfiguration(r io.Reader) error {
	dec := json.NewDecoder(toml.New(r))
	if err := dec.Decode(&Config); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("configuration error: %w", err)
	}
	return nil
}

// LoadEnv overrides the configuration with the environment variables
// starting with [EnvPrefix].
func LoadEnv() error {
	return env.ParseWithOptions(&Config, env.Options{Prefix: EnvPrefix})
}

// InitConfiguration checks the configuration and sets the values
// that depend on others.
func InitConfiguration() error {
	if Config.Distiller.Workers < 1 {
		Config.Distiller.Workers = 1
	}
	if Config.Distiller.Timeout.Duration <= 0 {
		return errors.New("distiller.timeout must be positive")
	}
	if Config.Distiller.MaxBodySize <= 0 {
		return errors.New("distiller.max_body_size must be positive")
	}
	Config.Server.Prefix = "/" + strings.Trim(Config.Server.Prefix, "/")
	return nil
}

// DeniedIPs returns the networks that must never be fetched.
func DeniedIPs() []*net.IPNet {
	return ipNetworks(Config.Distiller.DeniedIPs)
}

// TrustedProxies returns the networks of the reverse proxies
// whose forwarding headers are honored.
func TrustedProxies() []*net.IPNet {
	return ipNetworks(Config.Server.TrustedProxies)
}

func ipNetworks(l []IPNet) []*net.IPNet {
	res := make([]*net.IPNet, 0, len(l))
	for _, n := range l {
		if n.IPNet != nil {
			res = append(res, n.IPNet)
		}
	}
	return res
}

// Version returns the current version.
func Version() string {
	return version
}

// BuildTime returns the build time or, if empty, the time
// when the application started.
func BuildTime() time.Time {
	return buildTime
}

func init() {
	var err error
	if buildTime, err = time.Parse(time.RFC3339, buildTimeStr); err != nil {
		buildTime = time.Now().UTC()
	}
}
