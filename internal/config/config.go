// Package config loads and saves the server's <Config> XML document and
// exposes the named option table the admin console's "c" command edits.
package config

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/viper"

	"github.com/udisondev/boardlink/internal/errkind"
)

const (
	DefaultPort                = 28805
	DefaultLogsDirectory       = "InternetGamesServer_logs"
	DefaultNumConnectionsPerIP = 0
	DefaultSkipLevelMatching   = false
	DefaultAllowSinglePlayer   = true
	DefaultDisableXPAdBanner   = false

	// DefaultStatusPort is the status page's documented default (§6): the
	// well-known HTTP port. Binding it requires privilege on most hosts, so
	// callers should fall back to an unprivileged port on EACCES rather than
	// failing startup outright.
	DefaultStatusPort = 80
)

// Config mirrors the <Config> XML document field-for-field.
type Config struct {
	XMLName              xml.Name   `xml:"Config"`
	Port                 int        `xml:"Port"`
	LogsDirectory        string     `xml:"LogsDirectory"`
	NumConnectionsPerIP  int        `xml:"NumConnectionsPerIP"`
	SkipLevelMatching    boolFlag   `xml:"SkipLevelMatching"`
	AllowSinglePlayer    boolFlag   `xml:"AllowSinglePlayer"`
	DisableXPAdBanner    boolFlag   `xml:"DisableXPAdBanner"`
	BannedIPs            bannedIPs  `xml:"BannedIPs"`

	path string
}

type bannedIPs struct {
	IP []string `xml:"IP"`
}

// boolFlag marshals as "0"/"1" the way the original Config.cpp does,
// instead of Go's default "true"/"false".
type boolFlag bool

func (b boolFlag) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	v := "0"
	if b {
		v = "1"
	}
	return e.EncodeElement(v, start)
}

func (b *boolFlag) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	*b = s == "1"
	return nil
}

// Default returns the configuration the original implementation ships with
// when no file is present.
func Default() Config {
	return Config{
		Port:                DefaultPort,
		LogsDirectory:       DefaultLogsDirectory,
		NumConnectionsPerIP: DefaultNumConnectionsPerIP,
		SkipLevelMatching:   boolFlag(DefaultSkipLevelMatching),
		AllowSinglePlayer:   boolFlag(DefaultAllowSinglePlayer),
		DisableXPAdBanner:   boolFlag(DefaultDisableXPAdBanner),
	}
}

// Load reads the <Config> XML document at path. A missing file is not an
// error: defaults are returned and immediately written back to path, the
// same warn-and-save behavior as Config::Load in the original server.
func Load(path string) (Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("config file not found, writing defaults", "path", path)
			if saveErr := cfg.Save(); saveErr != nil {
				return cfg, fmt.Errorf("%w: saving default config %s: %v", errkind.ConfigError, path, saveErr)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("%w: reading config %s: %v", errkind.ConfigError, path, err)
	}

	if err := xml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parsing config %s: %v", errkind.ConfigError, path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Save writes the document back to its source path.
func (c Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("%w: config has no associated path", errkind.ConfigError)
	}
	out, err := xml.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("%w: encoding config: %v", errkind.ConfigError, err)
	}
	out = append([]byte(xml.Header), out...)
	if err := os.WriteFile(c.path, out, 0o644); err != nil {
		return fmt.Errorf("%w: writing config %s: %v", errkind.ConfigError, c.path, err)
	}
	return nil
}

// ApplyEnvOverrides lets a handful of operational knobs be overridden from
// the environment (BOARDLINK_PORT, BOARDLINK_LOGDIR, BOARDLINK_NUMCONNSIP),
// taking precedence over the XML file. The XML file remains authoritative
// for everything else.
func (c *Config) ApplyEnvOverrides() {
	v := viper.New()
	v.SetEnvPrefix("boardlink")
	_ = v.BindEnv("port")
	_ = v.BindEnv("logdir")
	_ = v.BindEnv("numconnsip")

	if v.IsSet("port") {
		c.Port = v.GetInt("port")
	}
	if v.IsSet("logdir") {
		c.LogsDirectory = v.GetString("logdir")
	}
	if v.IsSet("numconnsip") {
		c.NumConnectionsPerIP = v.GetInt("numconnsip")
	}
}

// optionKeys mirrors Config::s_optionKeys: the admin "c" command's table of
// settable keys and their human-readable descriptions.
var optionKeys = []struct {
	key         string
	description string
}{
	{"port", "The port the server should be hosted on. Requires restart to apply. (Default: 28805)"},
	{"logdir", "The directory where log files are written to. Set to 0 to disable logging. Requires restart to fully apply. (Default: \"InternetGamesServer_logs\")"},
	{"numconnsip", "Limits the number of connections allowed from a given IP address. 0 signifies no limit. (Default: 0)"},
	{"skiplevel", "Do not match players in matches based on skill level. Value can only be 0 or 1. (Default: 0)"},
	{"singleplayer", "Allow matches which support computer players to exist with only one real player. (Default: 1)"},
	{"disablead", "Prevent the server from responding to ad banner requests with a custom banner. Value can only be 0 or 1. (Default: 0)"},
}

// OptionKeys returns the ordered (key, description) table for the admin "c"
// command.
func OptionKeys() [][2]string {
	out := make([][2]string, len(optionKeys))
	for i, o := range optionKeys {
		out[i] = [2]string{o.key, o.description}
	}
	return out
}

// GetValue returns the current string value of a named option.
func (c Config) GetValue(key string) (string, error) {
	switch key {
	case "port":
		return strconv.Itoa(c.Port), nil
	case "logdir":
		return c.LogsDirectory, nil
	case "numconnsip":
		return strconv.Itoa(c.NumConnectionsPerIP), nil
	case "skiplevel":
		return boolString(bool(c.SkipLevelMatching)), nil
	case "singleplayer":
		return boolString(bool(c.AllowSinglePlayer)), nil
	case "disablead":
		return boolString(bool(c.DisableXPAdBanner)), nil
	default:
		return "", fmt.Errorf("%w: invalid option key %q", errkind.ConfigError, key)
	}
}

// SetValue parses and applies a named option, then persists the document,
// matching Config::SetValue's validate-then-Save behavior.
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "port":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: invalid \"port\" number: %v", errkind.ConfigError, err)
		}
		c.Port = n
	case "logdir":
		if value == "0" {
			c.LogsDirectory = ""
		} else {
			c.LogsDirectory = value
		}
	case "numconnsip":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: invalid \"numconnsip\" number: %v", errkind.ConfigError, err)
		}
		c.NumConnectionsPerIP = n
	case "skiplevel":
		c.SkipLevelMatching = boolFlag(setBoolValue(bool(c.SkipLevelMatching), value))
	case "singleplayer":
		c.AllowSinglePlayer = boolFlag(setBoolValue(bool(c.AllowSinglePlayer), value))
	case "disablead":
		c.DisableXPAdBanner = boolFlag(setBoolValue(bool(c.DisableXPAdBanner), value))
	default:
		return fmt.Errorf("%w: invalid option key %q", errkind.ConfigError, key)
	}
	return c.Save()
}

func setBoolValue(current bool, value string) bool {
	switch value {
	case "1":
		return true
	case "0":
		return false
	default:
		return current
	}
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// BannedIPList returns a copy of the banned-IP list, for the admin "lb"
// command.
func (c Config) BannedIPList() []string {
	return append([]string(nil), c.BannedIPs.IP...)
}

// IsBanned reports whether ip appears in the BannedIPs list.
func (c Config) IsBanned(ip string) bool {
	for _, banned := range c.BannedIPs.IP {
		if banned == ip {
			return true
		}
	}
	return false
}

// Ban adds ip to the banned list if not already present, then persists.
func (c *Config) Ban(ip string) error {
	if c.IsBanned(ip) {
		return nil
	}
	c.BannedIPs.IP = append(c.BannedIPs.IP, ip)
	return c.Save()
}

// Unban removes ip from the banned list if present, then persists.
func (c *Config) Unban(ip string) error {
	out := c.BannedIPs.IP[:0]
	found := false
	for _, banned := range c.BannedIPs.IP {
		if banned == ip {
			found = true
			continue
		}
		out = append(out, banned)
	}
	c.BannedIPs.IP = out
	if !found {
		return nil
	}
	return c.Save()
}
