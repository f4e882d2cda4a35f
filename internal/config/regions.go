package config

import (
	"io"
	"os"
	"strings"

	"github.com/macrat/cfmon/internal/cferr"
	"github.com/macrat/cfmon/internal/region"
	"gopkg.in/yaml.v3"
)

// RegionFile is the YAML file to replace the built-in region table.
//
//	regions:
//	  - code: JNB
//	    location: Johannesburg, South Africa
type RegionFile struct {
	Regions []region.Region `yaml:"regions"`
}

// Validate checks the region file.
// It does not mutate the file.
func (f *RegionFile) Validate() error {
	errs := &cferr.ListBuilder{What: cferr.ErrInvalidConfig}

	if len(f.Regions) == 0 {
		errs.Pushf("regions: at least one region is required")
	}

	seen := make(map[string]bool)
	for i, r := range f.Regions {
		code := strings.TrimSpace(r.Code)
		if !region.ValidCode(code) {
			errs.Pushf("regions[%d]: code must be 3 upper-case letters: %q", i, r.Code)
			continue
		}
		if seen[code] {
			errs.Pushf("regions[%d]: duplicated code: %s", i, code)
		}
		seen[code] = true
	}

	return errs.Build()
}

// Normalize trims spaces, and fills empty locations by the code.
// It must be called after Validate.
func (f *RegionFile) Normalize() {
	for i := range f.Regions {
		r := &f.Regions[i]

		r.Code = strings.TrimSpace(r.Code)
		r.Location = strings.TrimSpace(r.Location)
		if r.Location == "" {
			r.Location = r.Code
		}
	}
}

// ParseRegions reads YAML region file from r.
func ParseRegions(r io.Reader) (region.Table, error) {
	var f RegionFile

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return region.Table{}, cferr.New(cferr.ErrInvalidConfig, err, "failed to parse region file")
	}

	if err := f.Validate(); err != nil {
		return region.Table{}, err
	}
	f.Normalize()

	return region.NewTable(f.Regions...), nil
}

// LoadRegions reads YAML region file from path.
func LoadRegions(path string) (region.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return region.Table{}, cferr.New(cferr.ErrInvalidConfig, err, "failed to open region file")
	}
	defer f.Close()

	return ParseRegions(f)
}
