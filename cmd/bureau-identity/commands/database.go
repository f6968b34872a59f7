// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/bureau-identity/lib/config"
	"github.com/bureau-foundation/bureau-identity/lib/identity"
	"github.com/bureau-foundation/bureau-identity/lib/identity/etcfiles"
	"github.com/bureau-foundation/bureau-identity/lib/identity/hostdb"
)

// openDatabase returns the identity database cfg selects. auto uses the
// host tools when either family is installed and edits the files
// directly otherwise.
func openDatabase(cfg *config.Config, logger *slog.Logger) (identity.Database, error) {
	backend := cfg.Database.Backend
	if backend == config.BackendAuto {
		if cfg.Database.Root != "/" {
			backend = config.BackendFiles
		} else if flavor, err := hostdb.Detect(); err == nil {
			backend = string(flavor)
		} else {
			logger.Debug("no account tools found, editing files directly", "reason", err)
			backend = config.BackendFiles
		}
	}

	switch backend {
	case config.BackendFiles:
		database, err := etcfiles.Open(cfg.Database.Root)
		if err != nil {
			return nil, fmt.Errorf("opening identity files under %s: %w", cfg.Database.Root, err)
		}
		logger.Debug("identity database selected", "backend", backend, "root", cfg.Database.Root)
		return database, nil
	case config.BackendShadow, config.BackendBusyBox:
		flavor, err := hostdb.ParseFlavor(backend)
		if err != nil {
			return nil, err
		}
		logger.Debug("identity database selected", "backend", backend)
		return hostdb.New(flavor), nil
	}
	return nil, fmt.Errorf("unknown identity database backend %q", backend)
}
