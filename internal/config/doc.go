// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads, validates and hot-reloads the apigate configuration.
//
// Precedence is ENV > YAML file > defaults. The YAML file is parsed strictly:
// unknown keys are rejected. Only the log level, the functional lock timeout
// and the session TTL are applied on reload; every other setting needs a
// restart.
package config
