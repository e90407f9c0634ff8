package prune

import "sort"

// ExclusionSet is a set of sentence indices that only grows.
// The zero value is an empty set ready to use.
type ExclusionSet struct {
	indices map[int]struct{}
}

// Contains reports whether index i is excluded.
func (s *ExclusionSet) Contains(i int) bool {
	_, ok := s.indices[i]
	return ok
}

// Union adds indices to the set and returns how many were not already in it.
func (s *ExclusionSet) Union(indices []int) int {
	if s.indices == nil {
		s.indices = make(map[int]struct{}, len(indices))
	}
	added := 0
	for _, i := range indices {
		if _, ok := s.indices[i]; ok {
			continue
		}
		s.indices[i] = struct{}{}
		added++
	}
	return added
}

// Len returns the number of excluded indices.
func (s *ExclusionSet) Len() int {
	return len(s.indices)
}

// Indices returns the excluded indices in ascending order.
func (s *ExclusionSet) Indices() []int {
	out := make([]int, 0, len(s.indices))
	for i := range s.indices {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Clone returns an independent copy of the set.
func (s *ExclusionSet) Clone() ExclusionSet {
	c := ExclusionSet{indices: make(map[int]struct{}, len(s.indices))}
	for i := range s.indices {
		c.indices[i] = struct{}{}
	}
	return c
}
