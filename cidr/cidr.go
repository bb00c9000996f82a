/*************************************************************************
 * Copyright 2018 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package cidr implements a CIDR membership oracle: an
// immutable-after-startup set of address ranges, queried by converting
// the candidate to a string and walking a radix tree, returning true
// on first match. Uses the same github.com/asergeyev/nradix tree that
// ingest/processors/srcrouter.go uses to decide whether a source
// address should be dropped or re-tagged.
package cidr

import (
	"errors"
	"net"

	"github.com/asergeyev/nradix"
)

var ErrInvalidCIDR = errors.New("invalid CIDR entry")

// Set is an immutable-after-Build set of IPv4/IPv6 ranges.
type Set struct {
	tree *nradix.Tree
}

// NewSet builds a Set from a list of CIDR strings (e.g. "10.0.0.0/8").
// A bare IP address is accepted and treated as a /32 (or /128).
func NewSet(cidrs []string) (*Set, error) {
	tree := nradix.NewTree(32)
	s := &Set{tree: tree}
	for _, c := range cidrs {
		if err := s.add(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) add(c string) error {
	if c == `` {
		return nil
	}
	if _, _, err := net.ParseCIDR(c); err != nil {
		// not already a CIDR; maybe a bare address
		if ip := net.ParseIP(c); ip != nil {
			if ip.To4() != nil {
				c = c + `/32`
			} else {
				c = c + `/128`
			}
		} else {
			return ErrInvalidCIDR
		}
	}
	return s.tree.AddCIDR(c, true)
}

// Contains reports whether ip falls within any configured range. A nil
// or unparseable IP is never a member.
func (s *Set) Contains(ip net.IP) bool {
	if s == nil || ip == nil {
		return false
	}
	v, _ := s.tree.FindCIDR(ip.String())
	return v != nil
}

// ContainsString is a convenience wrapper over Contains for the common
// case of a dotted-decimal/hex-colon string pulled straight out of a
// decoded event.
func (s *Set) ContainsString(ip string) bool {
	if ip == `` {
		return false
	}
	return s.Contains(net.ParseIP(ip))
}
