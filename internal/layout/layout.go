package layout

import (
	"fmt"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"contractc/internal/ast"
	"contractc/internal/errors"
	"contractc/internal/semantic"
	"contractc/internal/target"
	"contractc/internal/types"
)

var log = commonlog.GetLogger("contractc.layout")

// Plan assigns every state variable of every contract its storage location
// under the layout policy of the configured target, then checks the
// declared account space of each constructor.
//
// Each contract is laid out independently, so contracts are planned
// concurrently; a worker only writes the fields of its own contract and of
// the variables that contract declares.
func Plan(ns *semantic.Namespace) {
	var g errgroup.Group
	for _, c := range ns.Contracts {
		if c.Broken {
			continue
		}
		c := c
		g.Go(func() error {
			planContract(ns, c)
			return nil
		})
	}
	_ = g.Wait()

	if !ns.Config.IsSolana() {
		return
	}
	for _, c := range ns.Contracts {
		if c.Broken || c.Kind != ast.KindContract {
			continue
		}
		checkSpace(ns, c)
	}
}

func planContract(ns *semantic.Namespace, c *semantic.Contract) {
	policy := ns.Config.Target.Layout()
	c.Layout = nil

	switch policy {
	case target.SlotAddressed:
		var slot uint64
		for _, v := range ns.AllVariables(c.No) {
			if v.Constant {
				continue
			}
			c.Layout = append(c.Layout, semantic.Placement{Var: v, Slot: slot})
			slot = types.SatAdd(slot, v.Type.StorageSlots())
		}
		c.SlotCount = slot
		log.Debugf("contract %s uses %d slots", c.Name, slot)

	case target.FlatBuffer:
		var offset uint64
		for _, v := range ns.AllVariables(c.No) {
			if v.Constant {
				continue
			}
			offset = types.AlignUp(offset, v.Type.Align())
			length := v.Type.FlatSize(ns.Config)
			c.Layout = append(c.Layout, semantic.Placement{Var: v, Offset: offset, Length: length})
			offset = types.SatAdd(offset, length)
		}
		c.FixedSize = offset
		c.RequiredSpace = types.SatAdd(uint64(ns.Config.AccountHeader), offset)
		log.Debugf("contract %s uses at least %d bytes account data", c.Name, c.RequiredSpace)
	}

	for _, p := range c.Layout {
		if p.Var.Contract != c.No {
			continue
		}
		p.Var.Slot, p.Var.Offset, p.Var.Length = p.Slot, p.Offset, p.Length
		p.Var.LaidOut = true
	}

	if err := checkOverlap(c, policy); err != nil {
		ns.Diagnostics.Add(errors.At(errors.ErrorStorageOverlap, err.Error(), &c.Decl.Name).Build())
	}

	if policy == target.FlatBuffer && ns.Config.MaxAccountSize > 0 && c.RequiredSpace > ns.Config.MaxAccountSize {
		required := fmt.Sprintf("%d bytes", c.RequiredSpace)
		if c.RequiredSpace == types.Unbounded {
			required = "an unaddressable amount"
		}
		ns.Diagnostics.Add(errors.At(errors.ErrorAccountTooLarge,
			fmt.Sprintf("contract '%s' requires %s of account data, more than the maximum of %d bytes",
				c.Name, required, ns.Config.MaxAccountSize),
			&c.Decl.Name).Build())
	}
}

// checkOverlap verifies that no two placements share storage. Placements are
// produced in increasing order, so comparing neighbours suffices.
func checkOverlap(c *semantic.Contract, policy target.LayoutPolicy) error {
	for i := 1; i < len(c.Layout); i++ {
		prev, cur := c.Layout[i-1], c.Layout[i]
		if policy == target.SlotAddressed {
			if cur.Slot < types.SatAdd(prev.Slot, prev.Var.Type.StorageSlots()) {
				return fmt.Errorf("storage variables '%s' and '%s' overlap at slot %d", prev.Var.Name, cur.Var.Name, cur.Slot)
			}
			continue
		}
		if cur.Offset < types.SatAdd(prev.Offset, prev.Length) {
			return fmt.Errorf("storage variables '%s' and '%s' overlap at offset %d", prev.Var.Name, cur.Var.Name, cur.Offset)
		}
	}
	return nil
}

// checkSpace compares a literal @space with the computed minimum. A
// non-literal space is checked by the deployed code at runtime.
func checkSpace(ns *semantic.Namespace, c *semantic.Contract) {
	for _, no := range ns.Constructors(c.No) {
		ann := ns.Functions[no].Constructor
		if ann.Space == nil || ann.SpaceValue == nil {
			continue
		}
		if *ann.SpaceValue < c.RequiredSpace {
			ns.Diagnostics.Add(errors.At(errors.ErrorInsufficientSpace,
				fmt.Sprintf("contract requires at least %d bytes of space", c.RequiredSpace),
				ann.Space).Build())
			continue
		}
		if *ann.SpaceValue > ns.Config.MaxAccountSize {
			ns.Diagnostics.Add(errors.WarnAt(errors.WarningSpace,
				fmt.Sprintf("space of %d bytes exceeds the maximum account size of %d bytes",
					*ann.SpaceValue, ns.Config.MaxAccountSize),
				ann.Space).Build())
		}
	}
}

// Entry is one row of a rendered storage layout
type Entry struct {
	Contract string
	Name     string
	Type     string
	Location string
}

// Describe lists the laid out variables of a contract in storage order,
// inherited variables included
func Describe(ns *semantic.Namespace, c *semantic.Contract) []Entry {
	policy := ns.Config.Target.Layout()
	out := make([]Entry, 0, len(c.Layout))
	for _, p := range c.Layout {
		loc := fmt.Sprintf("slot %d", p.Slot)
		if policy == target.FlatBuffer {
			loc = fmt.Sprintf("offset %d length %d", p.Offset, p.Length)
		}
		out = append(out, Entry{
			Contract: ns.Contracts[p.Var.Contract].Name,
			Name:     p.Var.Name,
			Type:     p.Var.Type.String(),
			Location: loc,
		})
	}
	return out
}

// Summary is the size line the command line prints for a contract
func Summary(ns *semantic.Namespace, c *semantic.Contract) string {
	if ns.Config.Target.Layout() == target.FlatBuffer {
		return fmt.Sprintf("contract %s uses at least %d bytes account data", c.Name, c.RequiredSpace)
	}
	return fmt.Sprintf("contract %s uses %d storage slots", c.Name, c.SlotCount)
}
