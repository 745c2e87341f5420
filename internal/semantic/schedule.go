package semantic

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Levels groups contract numbers by topological level: a contract appears
// one level after the highest level of any of its bases
func (ns *Namespace) Levels() [][]int {
	var levels [][]int
	for _, c := range ns.Contracts {
		for len(levels) <= c.level {
			levels = append(levels, nil)
		}
		levels[c.level] = append(levels[c.level], c.No)
	}
	return levels
}

// Level returns the topological level of a contract
func (c *Contract) Level() int {
	return c.level
}

// forEachLevel runs fn for every contract. Contracts of one level run
// concurrently and a level starts only once the previous one finished, so fn
// may read anything computed for the bases of its contract.
func (a *Analyzer) forEachLevel(fn func(c *Contract)) error {
	for level, nos := range a.ns.Levels() {
		log.Debugf("level %d: %s", level, a.ns.ContractNames(nos))

		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for _, no := range nos {
			c := a.ns.Contracts[no]
			g.Go(func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("contract '%s': %v", c.Name, r)
					}
				}()
				fn(c)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
