// Package images resolves training container image references for the
// platform's built-in algorithms. Resolution is a pure table lookup over the
// embedded registry config; no network calls.
package images

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v2"
)

//go:embed registry.yaml
var registryYAML []byte

type registryConfig struct {
	Regions    map[string]string `yaml:"regions"`
	Algorithms map[string]string `yaml:"algorithms"`
}

var registry registryConfig

func init() {
	if err := yaml.Unmarshal(registryYAML, &registry); err != nil {
		panic(fmt.Sprintf("invalid embedded registry config: %v", err))
	}
}

// Registry returns the container registry host serving the given region.
func Registry(region string) (string, error) {
	host, ok := registry.Regions[region]
	if !ok {
		return "", fmt.Errorf("no algorithm registry for region %q", region)
	}
	return host, nil
}

// Version returns the pinned image version for a built-in algorithm.
func Version(algorithm string) (string, error) {
	version, ok := registry.Algorithms[algorithm]
	if !ok {
		return "", fmt.Errorf("unknown algorithm %q", algorithm)
	}
	return version, nil
}

// TrainImage returns the full image reference
// "<registry-host>/<algorithm>:<version>" for the region and algorithm.
func TrainImage(region, algorithm string) (string, error) {
	host, err := Registry(region)
	if err != nil {
		return "", err
	}
	version, err := Version(algorithm)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s:%s", host, algorithm, version), nil
}
