// Command pilpsolve runs one of the built-in scenarios against pkg/pilp
// and prints the resulting relation; cmd/pilpbatch is its batch-solve
// counterpart.
package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/gitrdm/pilpcore/pkg/pilp"
)

func row(vals ...int64) pilp.Row {
	r := make(pilp.Row, len(vals))
	for i, v := range vals {
		r[i] = big.NewInt(v)
	}
	return r
}

// scenario bundles a named Problem with the Options it is meant to be run
// under, so -scenario can select one without re-deriving the constraints.
type scenario struct {
	name  string
	build func(max, rational bool) (*pilp.Problem, pilp.Options)
}

var scenarios = map[string]scenario{
	"bounded": {
		name: "0 <= x <= n",
		build: func(max, rational bool) (*pilp.Problem, pilp.Options) {
			return &pilp.Problem{
				NParam: 1,
				NVar:   1,
				Ineq: []pilp.Row{
					row(0, 0, 1),
					row(0, 1, -1),
				},
			}, pilp.Options{Max: max, Rational: rational}
		},
	},
	"split": {
		name: "2x = n",
		build: func(max, rational bool) (*pilp.Problem, pilp.Options) {
			return &pilp.Problem{
				NParam: 1,
				NVar:   1,
				Eq: []pilp.Row{
					row(0, -1, 2),
				},
			}, pilp.Options{Max: max, Rational: rational}
		},
	},
	"max-of-two": {
		name: "x >= a, x >= b",
		build: func(max, rational bool) (*pilp.Problem, pilp.Options) {
			return &pilp.Problem{
				NParam: 2,
				NVar:   1,
				Ineq: []pilp.Row{
					row(0, -1, 0, 1),
					row(0, 0, -1, 1),
				},
			}, pilp.Options{Max: max, Rational: rational}
		},
	},
}

func main() {
	name := flag.String("scenario", "bounded", "scenario to solve: bounded, split, max-of-two")
	max := flag.Bool("max", false, "solve the lexicographic maximum instead of the minimum")
	rational := flag.Bool("rational", false, "stop at the rational relaxation, skipping integer cuts")
	trace := flag.Bool("trace", false, "print every pivot/split/emit event the driver reports")
	flag.Parse()

	s, ok := scenarios[*name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown scenario %q\n", *name)
		os.Exit(2)
	}

	p, opts := s.build(*max, *rational)
	if *trace {
		opts.Trace = pilp.PrintTracer{Write: func(s string) { fmt.Fprintln(os.Stderr, s) }}
	}
	rel, err := pilp.PartialLexopt(p, nil, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "solve failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("scenario %q (%s):\n", *name, s.name)
	fmt.Print(rel.String())
}
