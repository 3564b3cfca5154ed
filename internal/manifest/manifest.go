// Package manifest reads plugin manifest.json files and carries hyinit's
// own version.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Version is stamped at build time:
//
//	go build -ldflags "-X hyinit/internal/manifest.Version=1.2.0"
var Version = "dev"

// FileName is the manifest entry at the root of a plugin jar.
const FileName = "manifest.json"

var ErrInvalid = errors.New("manifest: invalid")

// Manifest is a plugin's manifest.json.
type Manifest struct {
	Group       string   `json:"Group"`
	Name        string   `json:"Name"`
	Version     string   `json:"Version"`
	Description string   `json:"Description,omitempty"`
	Main        string   `json:"Main,omitempty"`
	Patches     []string `json:"Patches,omitempty"`
}

// Parse decodes a manifest. Group and Name are required.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if m.Group == "" || m.Name == "" {
		return nil, fmt.Errorf("%w: Group and Name are required", ErrInvalid)
	}
	return &m, nil
}

// ID returns "Group:Name", the identifier patches record as their source.
func (m *Manifest) ID() string { return m.Group + ":" + m.Name }

// Self describes hyinit itself.
func Self() *Manifest {
	return &Manifest{Group: "cc.irori", Name: "hyinit", Version: Version, Main: "hyinit"}
}

// UserAgent returns "hyinit/<version>".
func UserAgent() string { return "hyinit/" + strings.TrimPrefix(Version, "v") }
