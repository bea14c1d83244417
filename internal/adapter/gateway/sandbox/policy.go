// Package sandbox runs generated test artifacts in isolation.
// Two backends exist: a docker container and a plain local subprocess.
// Both honor the SandboxRunner contract of returning a verdict for every
// execution, including the ones that never ran.
package sandbox

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy bounds what a sandboxed execution may consume.
type Policy struct {
	Image      string  `yaml:"image"`
	Memory     string  `yaml:"memory"`
	CPUs       float64 `yaml:"cpus"`
	TimeoutSec int     `yaml:"timeout_sec"`
	Network    string  `yaml:"network"`
}

// DefaultPolicy returns the built-in resource bounds.
func DefaultPolicy(image string, timeoutSec int) Policy {
	if image == "" {
		image = "testweave-runner:latest"
	}
	if timeoutSec <= 0 {
		timeoutSec = 60
	}
	return Policy{
		Image:      image,
		Memory:     "512m",
		CPUs:       0.5,
		TimeoutSec: timeoutSec,
		Network:    "none",
	}
}

// LoadPolicy reads a policy file, filling omitted fields from defaults.
// A missing file yields the defaults unchanged.
func LoadPolicy(path, image string, timeoutSec int) (Policy, error) {
	policy := DefaultPolicy(image, timeoutSec)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return policy, nil
	}
	if err != nil {
		return policy, fmt.Errorf("read sandbox policy: %w", err)
	}

	var overlay Policy
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return policy, fmt.Errorf("parse sandbox policy %s: %w", path, err)
	}
	if overlay.Image != "" {
		policy.Image = overlay.Image
	}
	if overlay.Memory != "" {
		policy.Memory = overlay.Memory
	}
	if overlay.CPUs > 0 {
		policy.CPUs = overlay.CPUs
	}
	if overlay.TimeoutSec > 0 {
		policy.TimeoutSec = overlay.TimeoutSec
	}
	if overlay.Network != "" {
		policy.Network = overlay.Network
	}
	return policy, nil
}

// Timeout returns the execution deadline as a duration.
func (p Policy) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec) * time.Second
}
