package config

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidWeight indicates a ranking weight is negative, NaN, or infinite.
	ErrInvalidWeight = errors.New("invalid ranking weight")

	// ErrInvalidNamespace indicates a namespace value is neither a path nor a pattern list.
	ErrInvalidNamespace = errors.New("invalid namespace")

	// ErrInvalidDepth indicates a non-positive traversal depth.
	ErrInvalidDepth = errors.New("invalid depth")
)

// Validate checks that the configuration is usable: weights must be
// finite and non-negative, namespaces non-empty, depths positive.
// Validation failures abort startup with a clear message.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateWeight("git_recency", cfg.Weights.GitRecency); err != nil {
		errs = append(errs, err)
	}
	if err := validateWeight("git_frequency", cfg.Weights.GitFrequency); err != nil {
		errs = append(errs, err)
	}
	if err := validateWeight("git_status", cfg.Weights.GitStatus); err != nil {
		errs = append(errs, err)
	}

	for name, ns := range cfg.Namespaces {
		if ns.Path == "" && len(ns.Patterns) == 0 {
			errs = append(errs, fmt.Errorf("%w: namespace %q has neither a path nor patterns", ErrInvalidNamespace, name))
		}
	}

	if cfg.Index.Depth.Default <= 0 {
		errs = append(errs, fmt.Errorf("%w: index.depth.default must be positive, got %d", ErrInvalidDepth, cfg.Index.Depth.Default))
	}
	for root, depth := range cfg.Index.Depth.PerRoot {
		if depth <= 0 {
			errs = append(errs, fmt.Errorf("%w: index.depth.%s must be positive, got %d", ErrInvalidDepth, root, depth))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateWeight(name string, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return fmt.Errorf("%w: weights.%s must be finite and >= 0, got %v", ErrInvalidWeight, name, w)
	}
	return nil
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	msg := "validation failed:"
	for _, err := range errs {
		msg += "\n  - " + err.Error()
	}
	return errors.New(msg)
}
