package planner

import (
	"errors"
	"sort"

	"hyinit/internal/patch"
)

// Policy decides what a conflict does to a class.
type Policy int

const (
	// Abort fails the whole class on the first conflict.
	Abort Policy = iota
	// Degrade drops the lower-priority patch of each conflicting pair.
	Degrade
)

// ParsePolicy maps "abort" and "degrade" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "abort":
		return Abort, nil
	case "degrade":
		return Degrade, nil
	}
	return Abort, errors.New("planner: unknown conflict policy " + s)
}

func (p Policy) String() string {
	if p == Degrade {
		return "degrade"
	}
	return "abort"
}

// ClassPlan holds one plan per targeted method of a class, ordered by
// method name and descriptor.
type ClassPlan struct {
	Class string
	Plans []*Plan
	// Dropped lists patches left out under Degrade.
	Dropped []*PatchConflictError
}

// ForClass plans every targeted method of class while holding the
// registry's lock for that class.
func ForClass(r *patch.Registry, class string, policy Policy) (*ClassPlan, error) {
	cp := &ClassPlan{Class: patch.InternalName(class)}
	err := r.View(class, func(ps []*patch.Patch) error {
		groups := make(map[patch.Target][]*patch.Patch)
		var targets []patch.Target
		for _, p := range ps {
			if _, ok := groups[p.Target]; !ok {
				targets = append(targets, p.Target)
			}
			groups[p.Target] = append(groups[p.Target], p)
		}
		sort.Slice(targets, func(i, j int) bool {
			if targets[i].Method != targets[j].Method {
				return targets[i].Method < targets[j].Method
			}
			return targets[i].Desc < targets[j].Desc
		})
		for _, t := range targets {
			if policy == Degrade {
				plan, dropped := BuildDegraded(groups[t])
				cp.Plans = append(cp.Plans, plan)
				cp.Dropped = append(cp.Dropped, dropped...)
				continue
			}
			plan, err := Build(groups[t])
			if err != nil {
				return err
			}
			cp.Plans = append(cp.Plans, plan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cp, nil
}

// Len returns the total number of planned patches.
func (cp *ClassPlan) Len() int {
	n := 0
	for _, p := range cp.Plans {
		n += p.Len()
	}
	return n
}
