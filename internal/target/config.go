package target

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclConfigFile is the top-level structure of a target configuration file.
type hclConfigFile struct {
	Targets []*hclTargetBlock `hcl:"target,block"`
}

// hclTargetBlock overrides the defaults of one target.
type hclTargetBlock struct {
	Name           string  `hcl:"name,label"`
	AddressLength  *int    `hcl:"address_length,optional"`
	ValueLength    *int    `hcl:"value_length,optional"`
	SelectorLength *int    `hcl:"selector_length,optional"`
	AccountHeader  *int    `hcl:"account_header,optional"`
	MaxAccountSize *uint64 `hcl:"max_account_size,optional"`
}

// LoadFile reads an HCL configuration file and returns the configuration for t.
// Targets without a block in the file keep their defaults.
func LoadFile(path string, t Target) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	return decode(file.Body, path, t)
}

// LoadSource parses configuration from memory; filename is used in messages.
func LoadSource(src []byte, filename string, t Target) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", filename, diags)
	}
	return decode(file.Body, filename, t)
}

func decode(body hcl.Body, filename string, t Target) (Config, error) {
	var parsed hclConfigFile
	if diags := gohcl.DecodeBody(body, nil, &parsed); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", filename, diags)
	}

	cfg := Default(t)
	for _, block := range parsed.Targets {
		named, err := Parse(block.Name)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: %w", filename, err)
		}
		if named != t {
			continue
		}
		if block.AddressLength != nil {
			cfg.AddressLength = *block.AddressLength
		}
		if block.ValueLength != nil {
			cfg.ValueLength = *block.ValueLength
		}
		if block.SelectorLength != nil {
			cfg.SelectorLength = *block.SelectorLength
		}
		if block.AccountHeader != nil {
			cfg.AccountHeader = *block.AccountHeader
		}
		if block.MaxAccountSize != nil {
			cfg.MaxAccountSize = *block.MaxAccountSize
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", filename, err)
	}
	return cfg, nil
}
