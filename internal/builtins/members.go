package builtins

// Member is a runtime provided value such as block.timestamp
type Member struct {
	Object string
	Name   string
	Type   string // elementary type name, or "value" for the target value type
	Clock  bool   // reading it requires the clock sysvar on solana
	Solana bool   // available on solana
	Other  bool   // available on the slot-addressed targets
}

var members = []Member{
	{Object: "block", Name: "timestamp", Type: "uint64", Clock: true, Solana: true, Other: true},
	{Object: "block", Name: "number", Type: "uint64", Clock: true, Solana: true, Other: true},
	{Object: "block", Name: "slot", Type: "uint64", Clock: true, Solana: true},
	{Object: "msg", Name: "sender", Type: "address", Other: true},
	{Object: "msg", Name: "value", Type: "value", Other: true},
	{Object: "tx", Name: "origin", Type: "address", Other: true},
	{Object: "tx", Name: "program_id", Type: "address", Solana: true},
}

// LookupMember finds a built-in member; onSolana selects the target family
func LookupMember(object, name string, onSolana bool) (Member, bool) {
	for _, m := range members {
		if m.Object != object || m.Name != name {
			continue
		}
		if (onSolana && m.Solana) || (!onSolana && m.Other) {
			return m, true
		}
	}
	return Member{}, false
}

// IsBuiltinObject reports whether name is one of the runtime namespaces
func IsBuiltinObject(name string) bool {
	for _, m := range members {
		if m.Object == name {
			return true
		}
	}
	return false
}

// Function is a built-in function such as require
type Function struct {
	Name    string
	Params  []string // elementary type names
	MinArgs int
	Returns string
}

var functions = map[string]Function{
	"require":   {Name: "require", Params: []string{"bool", "string"}, MinArgs: 1},
	"assert":    {Name: "assert", Params: []string{"bool"}, MinArgs: 1},
	"revert":    {Name: "revert", Params: []string{"string"}, MinArgs: 0},
	"keccak256": {Name: "keccak256", Params: []string{"bytes"}, MinArgs: 1, Returns: "bytes32"},
	"sha256":    {Name: "sha256", Params: []string{"bytes"}, MinArgs: 1, Returns: "bytes32"},
}

// LookupFunction finds a built-in function by name
func LookupFunction(name string) (Function, bool) {
	f, ok := functions[name]
	return f, ok
}
