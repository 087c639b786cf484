package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultSignerTimeout           = time.Second * 30
	DefaultMaxSimultaneousRequests = 25
)

var ErrNoSigner = errors.New("no signer configured")
var ErrMultipleSigners = errors.New("only one signer may be configured")

// Load reads the config json from the file at path. If path is empty, the json
// is taken from envJson instead.
func Load(path string, envJson string) (*Config, error) {
	var raw []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		raw = b
	} else {
		raw = []byte(envJson)
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("config is empty")
	}

	return Parse(raw)
}

func Parse(raw []byte) (*Config, error) {
	var c Config
	err := json.Unmarshal(raw, &c)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) Validate() error {
	if c.Signer == nil {
		return ErrNoSigner
	}

	count := 0
	if c.Signer.PrivateKey != "" {
		count++
	}
	if c.Signer.Lnd != nil {
		count++
		if c.Signer.Lnd.Address == "" {
			return fmt.Errorf("lnd address is required")
		}
	}
	if c.Signer.Cln != nil {
		count++
		if c.Signer.Cln.SocketPath == "" {
			return fmt.Errorf("cln socketPath is required")
		}
	}

	switch {
	case count == 0:
		return ErrNoSigner
	case count > 1:
		return ErrMultipleSigners
	}

	if c.MaxSimultaneousRequests < 0 {
		return fmt.Errorf("maxSimultaneousRequests must not be negative")
	}

	if _, err := c.GetSignerTimeout(); err != nil {
		return err
	}

	return nil
}

func (c *Config) GetSignerTimeout() (time.Duration, error) {
	if c.SignerTimeout == "" {
		return DefaultSignerTimeout, nil
	}

	d, err := time.ParseDuration(c.SignerTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid signerTimeout '%s': %w", c.SignerTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("signerTimeout must not be negative")
	}

	return d, nil
}

func (c *Config) GetMaxSimultaneousRequests() int {
	if c.MaxSimultaneousRequests == 0 {
		return DefaultMaxSimultaneousRequests
	}

	return c.MaxSimultaneousRequests
}

// ReadFileOrContents returns the contents of the file at value if it exists,
// otherwise value itself.
func ReadFileOrContents(value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("value is empty")
	}

	if _, err := os.Stat(value); err == nil {
		b, err := os.ReadFile(value)
		if err != nil {
			return nil, fmt.Errorf("failed to read file '%s': %w", value, err)
		}
		return b, nil
	}

	return []byte(strings.Replace(value, "\\n", "\n", -1)), nil
}

// ReadHexFileOrContents is like ReadFileOrContents, but returns the value hex
// encoded. Files are assumed to be binary, e.g. macaroons.
func ReadHexFileOrContents(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("value is empty")
	}

	if _, err := os.Stat(value); err == nil {
		b, err := os.ReadFile(value)
		if err != nil {
			return "", fmt.Errorf("failed to read file '%s': %w", value, err)
		}
		return hex.EncodeToString(b), nil
	}

	if _, err := hex.DecodeString(value); err != nil {
		return "", fmt.Errorf("value is neither a file nor hex: %w", err)
	}

	return value, nil
}
