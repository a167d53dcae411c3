package detector

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/privata-io/privata/patterns"
)

// bundleFile is the top-level YAML structure of a pattern bundle.
type bundleFile struct {
	Patterns []PatternDefinition `yaml:"patterns"`
}

// pattern is a compiled, runtime-ready PatternDefinition.
type pattern struct {
	def      PatternDefinition
	re       *regexp.Regexp
	validate ValidatorFunc // nil when the definition names no validator
}

// parseBundle parses pattern bundle YAML bytes.
func parseBundle(data []byte) ([]PatternDefinition, error) {
	var bf bundleFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing pattern bundle: %w", err)
	}
	return bf.Patterns, nil
}

// loadRegion returns the built-in definitions for a region: the common
// bundle plus, for uk and eu, the region extension in bundle order.
func loadRegion(region Region) ([]PatternDefinition, error) {
	common, err := parseBundle(patterns.CommonYAML())
	if err != nil {
		return nil, fmt.Errorf("loading common bundle: %w", err)
	}

	var extension []byte
	switch region {
	case RegionCommon:
		return common, nil
	case RegionUK:
		extension = patterns.UKYAML()
	case RegionEU:
		extension = patterns.EUYAML()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}

	ext, err := parseBundle(extension)
	if err != nil {
		return nil, fmt.Errorf("loading %s bundle: %w", region, err)
	}
	return append(common, ext...), nil
}

// mergePatterns layers custom definitions over the built-in set. A custom
// definition whose name matches a built-in one replaces it in place; new
// names append in the order given. Built-in ordering is preserved so token
// output stays stable across runs.
func mergePatterns(builtin, custom []PatternDefinition) []PatternDefinition {
	index := make(map[string]int, len(builtin))
	merged := make([]PatternDefinition, len(builtin))
	copy(merged, builtin)
	for i, def := range merged {
		index[def.Name] = i
	}

	for _, def := range custom {
		if i, ok := index[def.Name]; ok {
			merged[i] = def
		} else {
			index[def.Name] = len(merged)
			merged = append(merged, def)
		}
	}
	return merged
}

var categoryNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// compilePatterns turns definitions into runtime patterns, failing fast on
// anything that would otherwise surface mid-detect: bad names, uncompilable
// expressions, unknown validator ids, out-of-range confidences, and match
// expressions that can produce zero-length matches.
func compilePatterns(defs []PatternDefinition, validators map[string]ValidatorFunc) ([]pattern, error) {
	compiled := make([]pattern, 0, len(defs))
	for _, def := range defs {
		if !categoryNameRe.MatchString(def.Name) {
			return nil, fmt.Errorf("%w: name %q must be lower_snake_case", ErrInvalidPattern, def.Name)
		}
		if def.BaseConfidence < 0 || def.BaseConfidence > 1 {
			return nil, fmt.Errorf("%w: %s base_confidence %v outside [0,1]", ErrInvalidPattern, def.Name, def.BaseConfidence)
		}

		re, err := regexp.Compile(def.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: compiling %s: %v", ErrInvalidPattern, def.Name, err)
		}
		if loc := re.FindStringIndex(""); loc != nil {
			return nil, fmt.Errorf("%w: %s can match the empty string", ErrInvalidPattern, def.Name)
		}

		p := pattern{def: def, re: re}
		if def.Validator != "" {
			fn, ok := validators[def.Validator]
			if !ok {
				return nil, fmt.Errorf("%w: %q referenced by pattern %s", ErrUnknownValidator, def.Validator, def.Name)
			}
			p.validate = fn
		}
		compiled = append(compiled, p)
	}
	return compiled, nil
}
