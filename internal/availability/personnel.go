package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/mathmusci/optivenue/internal/entity"
)

// DefaultStep is the sampling granularity of the personnel check.
const DefaultStep = 15 * time.Minute

// Pool resolves the personnel ceiling for a YYYY-MM month key.
type Pool interface {
	Lookup(month string) (entity.PersonnelAvailability, bool)
}

// PoolIndex is a Pool built from availability records. When a month has several
// records the one with the lowest id wins.
type PoolIndex map[string]entity.PersonnelAvailability

func NewPool(records []*entity.PersonnelAvailability) PoolIndex {
	idx := make(PoolIndex, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if cur, ok := idx[r.Month]; ok && cur.ID <= r.ID {
			continue
		}
		idx[r.Month] = *r
	}
	return idx
}

func (p PoolIndex) Lookup(month string) (entity.PersonnelAvailability, bool) {
	r, ok := p[month]
	return r, ok
}

type Checker struct {
	Step time.Duration
}

func NewChecker(step time.Duration) Checker {
	if step <= 0 {
		step = DefaultStep
	}
	return Checker{Step: step}
}

// PersonnelCapacity samples [start, end) every c.Step and fails at the first
// instant where the month has no pool record or where the personnel of all
// events active at that instant plus required exceeds the pool.
func (c Checker) PersonnelCapacity(start, end time.Time, required int, loads []entity.EventLoad, pool Pool) Verdict {
	step := c.Step
	if step <= 0 {
		step = DefaultStep
	}

	sorted := make([]entity.EventLoad, len(loads))
	copy(sorted, loads)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	for t := start; t.Before(end); t = t.Add(step) {
		month := entity.MonthOf(t)
		availability, ok := pool.Lookup(month)
		if !ok {
			return Verdict{
				Reason: ReasonMissingRecord,
				At:     t,
				Detail: fmt.Sprintf("no personnel availability for %s", month),
			}
		}

		demand := activeDemand(sorted, t)
		if demand+required > availability.AvailablePersonnel {
			return Verdict{
				Reason: ReasonUnderstaffed,
				At:     t,
				Detail: fmt.Sprintf("%d staff needed at %s, %d available",
					demand+required, t.Format(entity.CustomTimeLayout), availability.AvailablePersonnel),
			}
		}
	}
	return accept()
}

func (c Checker) PersonnelCapacityOK(start, end time.Time, required int, loads []entity.EventLoad, pool Pool) bool {
	return c.PersonnelCapacity(start, end, required, loads, pool).OK
}

// activeDemand sums personnel over loads active at t. loads must be sorted by start.
func activeDemand(loads []entity.EventLoad, t time.Time) int {
	total := 0
	for _, l := range loads {
		if l.StartTime.After(t) {
			break
		}
		if l.ActiveAt(t) {
			total += l.PersonnelRequired
		}
	}
	return total
}

// PersonnelCapacityOK runs the check with DefaultStep.
func PersonnelCapacityOK(start, end time.Time, required int, loads []entity.EventLoad, pool Pool) bool {
	return NewChecker(DefaultStep).PersonnelCapacityOK(start, end, required, loads, pool)
}
