package target

import (
	"fmt"
	"strings"
)

// Target identifies one of the supported runtimes
type Target int

const (
	Solana Target = iota
	Polkadot
	EVM
)

func (t Target) String() string {
	switch t {
	case Solana:
		return "solana"
	case Polkadot:
		return "polkadot"
	case EVM:
		return "evm"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// Parse converts a target name to a Target
func Parse(name string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "solana":
		return Solana, nil
	case "polkadot", "substrate":
		return Polkadot, nil
	case "evm", "ethereum":
		return EVM, nil
	default:
		return 0, fmt.Errorf("unknown target '%s'", name)
	}
}

// Layout returns the storage layout policy of the target
func (t Target) Layout() LayoutPolicy {
	if t == Solana {
		return FlatBuffer
	}
	return SlotAddressed
}

// LayoutPolicy selects how storage variables are addressed
type LayoutPolicy int

const (
	SlotAddressed LayoutPolicy = iota
	FlatBuffer
)

// Codec is the wire encoding used for call data and return values
type Codec int

const (
	ABI Codec = iota
	SCALE
	Borsh
)

func (c Codec) String() string {
	switch c {
	case SCALE:
		return "scale"
	case Borsh:
		return "borsh"
	default:
		return "abi"
	}
}

// Codec returns the call data codec of the target
func (t Target) Codec() Codec {
	switch t {
	case Solana:
		return Borsh
	case Polkadot:
		return SCALE
	default:
		return ABI
	}
}

// Solana data accounts start with a header reserved for the runtime
const SolanaAccountHeader = 16

// MaxSolanaAccountSize is the largest account the runtime will allocate
const MaxSolanaAccountSize = 10 * 1024 * 1024

// Config carries the active target and its physical parameters
type Config struct {
	Target         Target
	AddressLength  int
	ValueLength    int
	SelectorLength int
	AccountHeader  int
	MaxAccountSize uint64
}

// Default returns the default configuration of a target
func Default(t Target) Config {
	switch t {
	case Solana:
		return Config{
			Target:         Solana,
			AddressLength:  32,
			ValueLength:    8,
			SelectorLength: 8,
			AccountHeader:  SolanaAccountHeader,
			MaxAccountSize: MaxSolanaAccountSize,
		}
	case Polkadot:
		return Config{
			Target:         Polkadot,
			AddressLength:  32,
			ValueLength:    16,
			SelectorLength: 4,
		}
	default:
		return Config{
			Target:         EVM,
			AddressLength:  20,
			ValueLength:    32,
			SelectorLength: 4,
		}
	}
}

// IsSolana reports whether the account based target is active
func (c Config) IsSolana() bool {
	return c.Target == Solana
}

// Validate checks the configuration for impossible values
func (c Config) Validate() error {
	if c.AddressLength <= 0 || c.AddressLength > 32 {
		return fmt.Errorf("address_length must be between 1 and 32, got %d", c.AddressLength)
	}
	if c.ValueLength <= 0 || c.ValueLength > 32 {
		return fmt.Errorf("value_length must be between 1 and 32, got %d", c.ValueLength)
	}
	if c.SelectorLength <= 0 || c.SelectorLength > 32 {
		return fmt.Errorf("selector_length must be between 1 and 32, got %d", c.SelectorLength)
	}
	if c.AccountHeader < 0 {
		return fmt.Errorf("account_header must not be negative, got %d", c.AccountHeader)
	}
	if c.Target == Solana && c.MaxAccountSize == 0 {
		return fmt.Errorf("max_account_size must be set for solana")
	}
	return nil
}
