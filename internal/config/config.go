// Package config holds the console's runtime settings, read from flags and
// WINETASTING_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "WINETASTING"

// MaxTotalWines is the largest tournament the console accepts.
const MaxTotalWines = 1000

type Config struct {
	Bind            string
	Port            int
	APIURL          string
	APITimeout      time.Duration
	TotalWines      int
	RefreshInterval time.Duration
	SessionTimeout  time.Duration
	TLSCert         string
	TLSKey          string
	Verbose         bool
}

func (c *Config) Validate() error {
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api url (must be an absolute http or https url): %q", c.APIURL)
	}
	if c.TotalWines < 1 || c.TotalWines > MaxTotalWines {
		return fmt.Errorf("invalid total wines (must be between 1-%d inclusive): %d", MaxTotalWines, c.TotalWines)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("invalid api timeout (must be positive): %s", c.APITimeout)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("invalid refresh interval (must be positive): %s", c.RefreshInterval)
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("invalid session timeout (must be positive): %s", c.SessionTimeout)
	}
	return nil
}

func (c *Config) Scheme() string {
	if c.TLSCert != "" && c.TLSKey != "" {
		return "https"
	}
	return "http"
}

// RegisterFlags adds the server flags to fs, writing into c.
func RegisterFlags(fs *pflag.FlagSet, c *Config) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&c.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: WINETASTING_BIND)")
	fs.IntVarP(&c.Port, "port", "p", 8080, "port to listen on (env: WINETASTING_PORT)")
	fs.StringVar(&c.APIURL, "api-url", "http://localhost:8000", "base url of the tournament api (env: WINETASTING_API_URL)")
	fs.DurationVar(&c.APITimeout, "api-timeout", 10*time.Second, "time limit for each api request (env: WINETASTING_API_TIMEOUT)")
	fs.IntVar(&c.TotalWines, "total-wines", 20, "default number of wines in the tournament (env: WINETASTING_TOTAL_WINES)")
	fs.DurationVar(&c.RefreshInterval, "refresh-interval", 5*time.Second, "how often open voting pages are checked for changes (env: WINETASTING_REFRESH_INTERVAL)")
	fs.DurationVar(&c.SessionTimeout, "session-timeout", time.Hour, "time before idle organizer sessions are dropped (env: WINETASTING_SESSION_TIMEOUT)")
	fs.StringVar(&c.TLSCert, "tls-cert", "", "path to tls certificate (env: WINETASTING_TLS_CERT)")
	fs.StringVar(&c.TLSKey, "tls-key", "", "path to tls keyfile (env: WINETASTING_TLS_KEY)")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "display additional output (env: WINETASTING_VERBOSE)")
	fs.BoolP("version", "V", false, "display version and exit (env: WINETASTING_VERSION)")
}

// ApplyEnv fills every flag the user did not set from its environment variable.
func ApplyEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
