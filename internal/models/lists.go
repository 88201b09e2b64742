package models

import (
	"fmt"
	"slices"
)

// AddToList adds a string item to one of the domain/extension lists.
//
// Adding an item already present is a no-op.
func (s *Settings) AddToList(list, item string) error {
	target, err := s.stringList(list)
	if err != nil {
		return err
	}
	if !slices.Contains(*target, item) {
		*target = append(*target, item)
	}
	return nil
}

// RemoveFromList removes every occurrence of item from a domain/extension list.
func (s *Settings) RemoveFromList(list, item string) error {
	target, err := s.stringList(list)
	if err != nil {
		return err
	}
	*target = slices.DeleteFunc(slices.Clone(*target), func(v string) bool {
		return v == item
	})
	return nil
}

// AddHeader adds a persistent header, replacing an existing one with the same key in place.
func (s *Settings) AddHeader(h HeaderItem) {
	if i := slices.IndexFunc(s.PersistentHeaders, func(e HeaderItem) bool { return e.Key == h.Key }); i != -1 {
		s.PersistentHeaders[i] = h
		return
	}
	s.PersistentHeaders = append(s.PersistentHeaders, h)
}

// RemoveHeader removes persistent headers with the given key.
func (s *Settings) RemoveHeader(key string) {
	s.PersistentHeaders = slices.DeleteFunc(slices.Clone(s.PersistentHeaders), func(e HeaderItem) bool {
		return e.Key == key
	})
}

// stringList returns a pointer to the named string list.
func (s *Settings) stringList(list string) (*[]string, error) {
	switch list {
	case SetBlockList:
		return &s.BlockList, nil
	case SetAllowList:
		return &s.AllowList, nil
	case SetDisallowedExtensions:
		return &s.DisallowedExtensions, nil
	default:
		return nil, fmt.Errorf("%q is not a list setting", list)
	}
}
