// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/histo"
)

// ErrBadToken is returned when a binning token does not parse.
var ErrBadToken = errors.New("bad binning token")

// FieldBinning is the binning configuration of one field. Each member
// holds its token text; an empty token means the default.
type FieldBinning struct {
	Title string
	NBins string
	Low   string
	High  string
}

// ParseTokens parses "title, nbins, low, high". Tokens are trimmed and
// trailing tokens may be omitted; anything after the fourth comma is
// ignored.
func ParseTokens(s string) FieldBinning {
	var tok [4]string
	for i := range tok {
		tok[i], s = nextToken(s)
	}
	return FieldBinning{Title: tok[0], NBins: tok[1], Low: tok[2], High: tok[3]}
}

// nextToken splits off the text before the first comma of s.
func nextToken(s string) (tok, rest string) {
	tok, rest, _ = strings.Cut(s, ",")
	return strings.TrimSpace(tok), rest
}

// String returns b in the "title, nbins, low, high" form.
func (b FieldBinning) String() string {
	return strings.Join([]string{b.Title, b.NBins, b.Low, b.High}, ", ")
}

// Spec converts b to a BinSpec. An empty NBins token means nbins, an
// empty Low means 0 and an empty High means the range is computed from
// the data.
func (b FieldBinning) Spec(nbins int) (histo.BinSpec, error) {
	spec := histo.BinSpec{Title: b.Title, NBins: nbins, Low: 0, High: histo.Unset}
	if b.NBins != "" {
		n, err := strconv.Atoi(b.NBins)
		if err != nil {
			return spec, fmt.Errorf("%w: nbins %q", ErrBadToken, b.NBins)
		}
		spec.NBins = n
	}
	if b.Low != "" {
		v, err := strconv.ParseFloat(b.Low, 64)
		if err != nil {
			return spec, fmt.Errorf("%w: low limit %q", ErrBadToken, b.Low)
		}
		spec.Low = v
	}
	if b.High != "" {
		v, err := strconv.ParseFloat(b.High, 64)
		if err != nil {
			return spec, fmt.Errorf("%w: high limit %q", ErrBadToken, b.High)
		}
		spec.High = v
	}
	return spec, nil
}

// UnmarshalYAML accepts either the token string or a mapping with
// title, nbins, low and high keys.
func (b *FieldBinning) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*b = ParseTokens(n.Value)
		return nil
	case yaml.MappingNode:
		*b = FieldBinning{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: %s must be a scalar", v.Line, k.Value)
			}
			val := strings.TrimSpace(v.Value)
			switch k.Value {
			case "title":
				b.Title = val
			case "nbins":
				b.NBins = val
			case "low":
				b.Low = val
			case "high":
				b.High = val
			default:
				return fmt.Errorf("line %d: unknown binning key %q", k.Line, k.Value)
			}
		}
		return nil
	}
	return fmt.Errorf("line %d: binning must be a string or a mapping", n.Line)
}

// ReadFieldFile reads a YAML file mapping field names to binning.
//
//	energy: "Energy deposit, 50, 0, 3.5"
//	time:
//	  nbins: 200
//	  high: 1e-6
func ReadFieldFile(path string) (map[string]FieldBinning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	fields := make(map[string]FieldBinning)
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return fields, nil
}
