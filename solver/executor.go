package solver

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"thloop/correl"
	"thloop/network"
)

// jacobianBuilder assembles the scaled finite-difference Jacobian. Columns
// are independent, so they are farmed out to a fixed pool of workers, each
// perturbing its own private copy of the state vector. The parallel result
// is identical to the serial one.
type jacobianBuilder struct {
	net      *network.Network
	vars     []*network.Variable
	friction correl.Model
	fdEps    float64
}

func (b *jacobianBuilder) build(base network.State, r0 []float64, workers int) (*mat.Dense, error) {
	n := len(b.vars)
	jac := mat.NewDense(len(r0), n, nil)

	cols := make(chan int, n)
	for j := 0; j < n; j++ {
		cols <- j
	}
	close(cols)

	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scratch := base.Clone()
			for j := range cols {
				if err := b.column(jac, scratch, base, r0, j); err != nil {
					errOnce.Do(func() { firstErr = err })
					return
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return jac, nil
}

// column fills Jacobian column j by forward difference on variable j. The
// perturbation flips direction when it would cross the variable's upper
// bound, so the evaluated point always stays feasible.
func (b *jacobianBuilder) column(jac *mat.Dense, scratch, base network.State, r0 []float64, j int) error {
	v := b.vars[j]
	slot := v.Slot()
	x := base[slot]

	step := b.fdEps * maxf(1, absf(x))
	if v.Clip(x+step) == x {
		step = -step
	}
	scratch[slot] = v.Clip(x + step)
	step = scratch[slot] - x
	if step == 0 {
		return fmt.Errorf("variable %s is pinned by its bounds", v.Name)
	}

	eqs, err := b.net.Residuals(b.net.Eval(scratch, b.friction))
	scratch[slot] = x
	if err != nil {
		return err
	}
	for i, eq := range eqs {
		jac.Set(i, j, (eq.Scaled()-r0[i])/step)
	}
	return nil
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
