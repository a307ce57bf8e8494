// Package config parses the engine's comma-separated key[=value]
// configuration string (spec.md §6), aggregating every malformed key
// into one reported error rather than failing on the first. No pack
// repo carries a dedicated flag/config parser that fits this exact
// "comma key=value pairs" shape, so the splitting itself is hand
// rolled (see DESIGN.md); aggregation uses hashicorp/go-multierror and
// wrapping uses github.com/pkg/errors, both pulled from the rest of
// the retrieval pack's error-handling idiom.
package config

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// ThreadModel mirrors search.ThreadModel without importing the search
// package, keeping config dependency-free of the engine internals it
// configures.
type ThreadModel string

const (
	ThreadModelRoot   ThreadModel = "root"
	ThreadModelTree   ThreadModel = "tree"
	ThreadModelTreeVL ThreadModel = "treevl"
)

// Config is the fully parsed engine configuration, one field per key
// in spec.md §6's table.
type Config struct {
	Threads            int
	ThreadModel        ThreadModel
	Pondering          bool
	Playout            string
	Policy             string
	RandomPolicy       string
	RandomPolicyChance int
	Prior              string
	MaxTreeSizeMiB     int
	FusekiEndPct       int
	YoseStartPct       int
	Dynkomi            int
	DynkomiMask        int
	ValScale           float64
	ValPoints          int
	ValExtra           float64
	Mercy              int
	GameLen            int
	ExpandP            int
	ForceSeed          int64
	NoBook             bool
	PassAllAlive       bool
	Debug              int
}

// Default returns the engine's baseline configuration before any
// key=value overrides are applied.
func Default() Config {
	return Config{
		Threads:        1,
		ThreadModel:    ThreadModelTreeVL,
		Playout:        "elo",
		Policy:         "ucb1amaf",
		MaxTreeSizeMiB: 2048,
		FusekiEndPct:   20,
		YoseStartPct:   80,
		ValScale:       0.02,
		GameLen:        1000,
		ExpandP:        1,
	}
}

// Parse splits s on commas into key[=value] pairs and applies each to
// a Default() configuration. Every malformed pair is collected and
// returned together as one *multierror.Error rather than stopping at
// the first; a caller that wants fail-fast behaviour can check
// (*multierror.Error).Len() == 0 themselves before using the result.
func Parse(s string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(s) == "" {
		return cfg, nil
	}

	var errs error
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, hasValue := strings.Cut(pair, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if err := apply(&cfg, key, value, hasValue); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "key %q", key))
		}
	}

	return cfg, errs
}

func apply(cfg *Config, key, value string, hasValue bool) error {
	switch key {
	case "threads":
		return setInt(&cfg.Threads, value, hasValue, key)
	case "thread_model":
		return setThreadModel(&cfg.ThreadModel, value, hasValue)
	case "pondering":
		return setBool(&cfg.Pondering, value, hasValue, key)
	case "playout":
		cfg.Playout = value
		return requireValue(hasValue, key)
	case "policy":
		cfg.Policy = value
		return requireValue(hasValue, key)
	case "random_policy":
		cfg.RandomPolicy = value
		return requireValue(hasValue, key)
	case "random_policy_chance":
		return setInt(&cfg.RandomPolicyChance, value, hasValue, key)
	case "prior":
		cfg.Prior = value
		return requireValue(hasValue, key)
	case "max_tree_size":
		return setInt(&cfg.MaxTreeSizeMiB, value, hasValue, key)
	case "fuseki_end":
		return setInt(&cfg.FusekiEndPct, value, hasValue, key)
	case "yose_start":
		return setInt(&cfg.YoseStartPct, value, hasValue, key)
	case "dynkomi":
		return setInt(&cfg.Dynkomi, value, hasValue, key)
	case "dynkomi_mask":
		return setInt(&cfg.DynkomiMask, value, hasValue, key)
	case "val_scale":
		return setFloat(&cfg.ValScale, value, hasValue, key)
	case "val_points":
		return setInt(&cfg.ValPoints, value, hasValue, key)
	case "val_extra":
		return setFloat(&cfg.ValExtra, value, hasValue, key)
	case "mercy":
		return setInt(&cfg.Mercy, value, hasValue, key)
	case "gamelen":
		return setInt(&cfg.GameLen, value, hasValue, key)
	case "expand_p":
		return setInt(&cfg.ExpandP, value, hasValue, key)
	case "force_seed":
		return setInt64(&cfg.ForceSeed, value, hasValue, key)
	case "no_book":
		cfg.NoBook = true
		return nil
	case "pass_all_alive":
		cfg.PassAllAlive = true
		return nil
	case "debug":
		return setInt(&cfg.Debug, value, hasValue, key)
	default:
		return errors.Errorf("unrecognised configuration key")
	}
}

func requireValue(hasValue bool, key string) error {
	if !hasValue {
		return errors.Errorf("%s requires a value", key)
	}
	return nil
}

func setInt(dst *int, value string, hasValue bool, key string) error {
	if err := requireValue(hasValue, key); err != nil {
		return err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return errors.Wrap(err, "not an integer")
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, value string, hasValue bool, key string) error {
	if err := requireValue(hasValue, key); err != nil {
		return err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return errors.Wrap(err, "not an integer")
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, value string, hasValue bool, key string) error {
	if err := requireValue(hasValue, key); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return errors.Wrap(err, "not a number")
	}
	*dst = f
	return nil
}

func setBool(dst *bool, value string, hasValue bool, key string) error {
	if !hasValue {
		*dst = true
		return nil
	}
	switch value {
	case "0":
		*dst = false
	case "1":
		*dst = true
	default:
		return errors.Errorf("%s must be 0 or 1", key)
	}
	return nil
}

func setThreadModel(dst *ThreadModel, value string, hasValue bool) error {
	if err := requireValue(hasValue, "thread_model"); err != nil {
		return err
	}
	switch ThreadModel(value) {
	case ThreadModelRoot, ThreadModelTree, ThreadModelTreeVL:
		*dst = ThreadModel(value)
		return nil
	default:
		return errors.Errorf("unknown thread_model %q", value)
	}
}
