// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/bureau-identity/lib/identity"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "BUREAU_IDENTITY_CONFIG"

// Database backends.
const (
	BackendAuto    = "auto"
	BackendFiles   = "files"
	BackendShadow  = "shadow"
	BackendBusyBox = "busybox"
)

// Membership failure policies.
const (
	OnFailureWarn  = "warn"
	OnFailureError = "error"
)

// Config is the complete bureau-identity configuration.
type Config struct {
	// Identity is the account to provision.
	Identity IdentityConfig `yaml:"identity" json:"identity" toml:"identity"`

	// Ownership configures the tree re-owned to the identity.
	Ownership OwnershipConfig `yaml:"ownership" json:"ownership" toml:"ownership"`

	// Handoff configures where the resolved name is published.
	Handoff HandoffConfig `yaml:"handoff" json:"handoff" toml:"handoff"`

	// Database selects the identity store.
	Database DatabaseConfig `yaml:"database" json:"database" toml:"database"`

	// Membership configures how a failed membership change is treated.
	Membership MembershipConfig `yaml:"membership" json:"membership" toml:"membership"`
}

// IdentityConfig is the desired identity. UID and GID are required;
// the names are used only for records that must be created.
type IdentityConfig struct {
	UID   uint32 `yaml:"uid" json:"uid" toml:"uid"`
	GID   uint32 `yaml:"gid" json:"gid" toml:"gid"`
	User  string `yaml:"user" json:"user" toml:"user"`
	Group string `yaml:"group" json:"group" toml:"group"`

	// Shell is the login shell of a created user.
	// Default: /usr/sbin/nologin
	Shell string `yaml:"shell" json:"shell" toml:"shell"`
}

// OwnershipConfig configures the OwnershipApplier.
type OwnershipConfig struct {
	// Root is re-owned recursively. Empty skips the step.
	Root string `yaml:"root" json:"root" toml:"root"`
}

// HandoffConfig configures the ResultPropagator.
type HandoffConfig struct {
	// Path holds the resolved user name.
	// Default: /etc/bureau/identity/run-as
	Path string `yaml:"path" json:"path" toml:"path"`

	// Receipt is the CBOR reconciliation receipt. Empty disables it.
	// Default: /etc/bureau/identity/receipt.cbor
	Receipt string `yaml:"receipt" json:"receipt" toml:"receipt"`
}

// DatabaseConfig selects the identity store.
type DatabaseConfig struct {
	// Backend is one of auto, files, shadow, busybox.
	// Default: auto
	Backend string `yaml:"backend" json:"backend" toml:"backend"`

	// Root is the filesystem root whose etc/passwd and etc/group the
	// files backend edits. The tool backends always act on /.
	// Default: /
	Root string `yaml:"root" json:"root" toml:"root"`
}

// MembershipConfig configures the MembershipReconciler.
type MembershipConfig struct {
	// OnFailure is "warn" (log and continue) or "error" (abort).
	// Default: warn
	OnFailure string `yaml:"on_failure" json:"on_failure" toml:"on_failure"`
}

// Default returns the configuration used beneath any file. The
// identity itself has no defaults.
func Default() *Config {
	return &Config{
		Identity: IdentityConfig{
			Shell: identity.DefaultShell,
		},
		Handoff: HandoffConfig{
			Path:    "/etc/bureau/identity/run-as",
			Receipt: "/etc/bureau/identity/receipt.cbor",
		},
		Database: DatabaseConfig{
			Backend: BackendAuto,
			Root:    "/",
		},
		Membership: MembershipConfig{
			OnFailure: OnFailureWarn,
		},
	}
}

// Load loads the file named by BUREAU_IDENTITY_CONFIG. It fails if the
// variable is not set.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of a bureau-identity config file, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// Resolve loads path if non-empty, else the file named by
// BUREAU_IDENTITY_CONFIG, else returns [Default].
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	if os.Getenv(EnvironmentVariable) != "" {
		return Load()
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// LoadFile loads configuration from path over [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(data, c)
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("%s: unsupported config format %q (want .yaml, .json, .jsonc or .toml)", path, extension)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Identity.Shell = expandVars(c.Identity.Shell, vars)
	c.Ownership.Root = expandVars(c.Ownership.Root, vars)
	c.Handoff.Path = expandVars(c.Handoff.Path, vars)
	c.Handoff.Receipt = expandVars(c.Handoff.Receipt, vars)
	c.Database.Root = expandVars(c.Database.Root, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, preferring
// vars over the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Request returns the identity section as a reconciliation request.
func (c *Config) Request() identity.Request {
	return identity.Request{
		UID:       c.Identity.UID,
		GID:       c.Identity.GID,
		UserName:  c.Identity.User,
		GroupName: c.Identity.Group,
		Shell:     c.Identity.Shell,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Request().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("identity: %w", err))
	}

	if c.Ownership.Root != "" && !filepath.IsAbs(c.Ownership.Root) {
		errs = append(errs, fmt.Errorf("ownership.root %q must be absolute", c.Ownership.Root))
	}

	if c.Handoff.Path == "" {
		errs = append(errs, fmt.Errorf("handoff.path is required"))
	} else if !filepath.IsAbs(c.Handoff.Path) {
		errs = append(errs, fmt.Errorf("handoff.path %q must be absolute", c.Handoff.Path))
	}
	if c.Handoff.Receipt != "" && !filepath.IsAbs(c.Handoff.Receipt) {
		errs = append(errs, fmt.Errorf("handoff.receipt %q must be absolute", c.Handoff.Receipt))
	}
	if c.Handoff.Receipt != "" && c.Handoff.Receipt == c.Handoff.Path {
		errs = append(errs, fmt.Errorf("handoff.receipt and handoff.path must differ"))
	}

	backends := []string{BackendAuto, BackendFiles, BackendShadow, BackendBusyBox}
	if !contains(backends, c.Database.Backend) {
		errs = append(errs, fmt.Errorf("database.backend must be one of: %v", backends))
	}
	if c.Database.Root == "" || !filepath.IsAbs(c.Database.Root) {
		errs = append(errs, fmt.Errorf("database.root %q must be an absolute path", c.Database.Root))
	} else if c.Database.Root != "/" && (c.Database.Backend == BackendShadow || c.Database.Backend == BackendBusyBox) {
		errs = append(errs, fmt.Errorf("database.root %q requires database.backend %q or %q, the account tools only edit /",
			c.Database.Root, BackendFiles, BackendAuto))
	}

	policies := []string{OnFailureWarn, OnFailureError}
	if !contains(policies, c.Membership.OnFailure) {
		errs = append(errs, fmt.Errorf("membership.on_failure must be one of: %v", policies))
	}

	return errors.Join(errs...)
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
