// Copyright 2025 Certen Protocol
//
// YAML Seed Loading for Target Directory Records

package xdns

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk shape of a bulk XDNS seed fixture: a flat list
// of records, loaded once at startup ahead of any live registrations.
type seedFile struct {
	Records []Record `yaml:"records"`
}

// LoadSeed reads a YAML fixture of target directory records and registers
// each one, overriding any record already present for that target.
func (d *Directory) LoadSeed(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read xdns seed %s: %w", path, err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return 0, fmt.Errorf("parse xdns seed %s: %w", path, err)
	}
	for i := range sf.Records {
		if err := d.OverrideGateway(&sf.Records[i]); err != nil {
			return i, fmt.Errorf("load xdns seed record %d: %w", i, err)
		}
	}
	return len(sf.Records), nil
}
