package workload

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/Faultbox/meshlab/pkg/memres"
)

// ChurnConfig describes a random insert/erase stream.
type ChurnConfig struct {
	Seed   uint64
	MinOps int
	MaxOps int
}

// DefaultChurn is the stream the memdemo driver runs by default.
var DefaultChurn = ChurnConfig{Seed: 42, MinOps: 1000, MaxOps: 1000000}

// ChurnResult summarizes one run.
type ChurnResult struct {
	Ops      int
	Inserted int
	Erased   int
	Live     int
}

func (r ChurnResult) String() string {
	return fmt.Sprintf("inserted %d items, erased %d items", r.Inserted, r.Erased)
}

// Churn performs the same sequence of inserts and erases on a Table backed
// by r every time it is called with the same config. The operation count is
// drawn from [MinOps, MaxOps]; each operation is an erase of a uniformly
// chosen entry with probability 1/2 (when the table is not empty) and an
// insert of a random key otherwise. The table is cleared before returning.
func Churn(r memres.Resource, cfg ChurnConfig) (ChurnResult, error) {
	if cfg.MinOps < 0 || cfg.MinOps > cfg.MaxOps {
		return ChurnResult{}, fmt.Errorf("invalid operation range [%d, %d]", cfg.MinOps, cfg.MaxOps)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	t := NewTable(r)
	defer t.Clear()

	res := ChurnResult{Ops: cfg.MinOps + rng.Intn(cfg.MaxOps-cfg.MinOps+1)}
	for i := 0; i < res.Ops; i++ {
		erase := rng.Intn(2) == 0
		if erase && t.Len() > 0 {
			t.EraseAt(rng.Intn(t.Len()))
			res.Erased++
			continue
		}
		ok, err := t.Insert(Entry{Key: rng.Uint64(), Value: rng.Uint64(), Weight: rng.Float32()})
		if err != nil {
			return res, fmt.Errorf("operation %d: %w", i, err)
		}
		if ok {
			res.Inserted++
		}
	}
	res.Live = t.Len()
	return res, nil
}
