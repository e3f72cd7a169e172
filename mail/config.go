package mail

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Config describes an SMTP server and defaults for outgoing messages.
//
// Example:
//
//	host: smtp.example.com
//	port: 587
//	username: homer
//	password: donuts
//	timeout: 10s
//	from: Homer Simpson <homer@example.com>
type Config struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	LocalName  string `yaml:"localName"`
	DisableTLS bool   `yaml:"disableTLS"`
	Timeout    string `yaml:"timeout"`
	From       string `yaml:"from"`
}

// ParseConfig parses YAML configuration.  Environment overrides are
// not applied.
func ParseConfig(bs []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(bs, &c); err != nil {
		return nil, fmt.Errorf("mail config: %w", err)
	}
	return &c, nil
}

// LoadConfig reads a YAML configuration file and then applies
// environment overrides.  An empty filename gives a configuration
// from the environment alone.
func LoadConfig(filename string) (*Config, error) {
	c := &Config{}
	if filename != "" {
		bs, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		if c, err = ParseConfig(bs); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overrides fields from SMTP_HOST, SMTP_PORT, SMTP_USER and
// SMTP_PASSWORD.
func (c *Config) ApplyEnv() error {
	if s, ok := os.LookupEnv("SMTP_HOST"); ok {
		c.Host = s
	}
	if s, ok := os.LookupEnv("SMTP_PORT"); ok {
		port, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.Port = port
	}
	if s, ok := os.LookupEnv("SMTP_USER"); ok {
		c.Username = s
	}
	if s, ok := os.LookupEnv("SMTP_PASSWORD"); ok {
		c.Password = s
	}
	return nil
}

// Transport makes an SMTPTransport from the configuration.
func (c *Config) Transport() (*SMTPTransport, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("mail config: no host")
	}
	t := &SMTPTransport{
		Host:       c.Host,
		Port:       c.Port,
		Username:   c.Username,
		Password:   c.Password,
		LocalName:  c.LocalName,
		DisableTLS: c.DisableTLS,
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("mail config timeout: %w", err)
		}
		t.Timeout = d
	}
	return t, nil
}
