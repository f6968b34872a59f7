// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/bureau-foundation/bureau-identity/cmd/bureau-identity/cli"
	"github.com/bureau-foundation/bureau-identity/lib/config"
)

// configParams are the flags every command takes.
type configParams struct {
	cli.Logging
	Config      string `json:"config,omitempty"  flag:"config,c" desc:"configuration file (default: $BUREAU_IDENTITY_CONFIG)"`
	HandoffPath string `json:"handoff,omitempty" flag:"handoff"  desc:"handoff file holding the resolved user name"`
}

// identityParams adds the identity and pipeline overrides.
type identityParams struct {
	configParams
	UID                 uint32 `json:"uid,omitempty"            flag:"uid"                   desc:"numeric user id to provision"`
	GID                 uint32 `json:"gid,omitempty"            flag:"gid"                   desc:"numeric group id to provision"`
	User                string `json:"user,omitempty"           flag:"user"                  desc:"user name to create if the uid is free"`
	Group               string `json:"group,omitempty"          flag:"group"                 desc:"group name to create if the gid is free"`
	Shell               string `json:"shell,omitempty"          flag:"shell"                 desc:"login shell for a created user"`
	OwnershipRoot       string `json:"ownership_root,omitempty" flag:"ownership-root"        desc:"directory re-owned recursively to the identity"`
	ReceiptPath         string `json:"receipt,omitempty"        flag:"receipt"               desc:"reconciliation receipt path"`
	Backend             string `json:"backend,omitempty"        flag:"backend"               desc:"identity database: auto, files, shadow, busybox"`
	DatabaseRoot        string `json:"database_root,omitempty"  flag:"database-root"         desc:"root holding etc/passwd and etc/group (files backend)"`
	OnMembershipFailure string `json:"on_membership_failure,omitempty" flag:"on-membership-failure" desc:"warn or error when a pre-existing user cannot join the group"`
}

// load resolves the configuration file and applies --handoff.
func (p *configParams) load() (*config.Config, error) {
	cfg, err := config.Resolve(p.Config)
	if err != nil {
		return nil, cli.Validation("loading configuration: %w", err)
	}
	if p.HandoffPath != "" {
		cfg.Handoff.Path = p.HandoffPath
	}
	return cfg, nil
}

// load resolves the configuration, applies every set flag over it and
// validates the result.
func (p *identityParams) load() (*config.Config, error) {
	cfg, err := p.configParams.load()
	if err != nil {
		return nil, err
	}

	if p.UID != 0 {
		cfg.Identity.UID = p.UID
	}
	if p.GID != 0 {
		cfg.Identity.GID = p.GID
	}
	overrideString(&cfg.Identity.User, p.User)
	overrideString(&cfg.Identity.Group, p.Group)
	overrideString(&cfg.Identity.Shell, p.Shell)
	overrideString(&cfg.Ownership.Root, p.OwnershipRoot)
	overrideString(&cfg.Handoff.Receipt, p.ReceiptPath)
	overrideString(&cfg.Database.Backend, p.Backend)
	overrideString(&cfg.Database.Root, p.DatabaseRoot)
	overrideString(&cfg.Membership.OnFailure, p.OnMembershipFailure)

	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func overrideString(target *string, value string) {
	if value != "" {
		*target = value
	}
}
