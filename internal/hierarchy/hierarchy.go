// Package hierarchy resolves sponsor relationships over a loaded affiliate
// set. The set is an id-indexed snapshot: traversal never touches storage
// and never mutates anything.
package hierarchy

import (
	"afilia/internal/domain"
	"afilia/internal/models"
)

// Set is an id-indexed view of the affiliate network at one point in time.
type Set struct {
	byID     map[uint]*models.Affiliate
	children map[uint][]*models.Affiliate
}

// NewSet indexes the given affiliates by id and by sponsor.
func NewSet(affiliates []models.Affiliate) *Set {
	s := &Set{
		byID:     make(map[uint]*models.Affiliate, len(affiliates)),
		children: make(map[uint][]*models.Affiliate),
	}
	for i := range affiliates {
		a := &affiliates[i]
		s.byID[a.ID] = a
	}
	for i := range affiliates {
		a := &affiliates[i]
		if a.SponsorID != nil {
			s.children[*a.SponsorID] = append(s.children[*a.SponsorID], a)
		}
	}
	return s
}

// Get returns the affiliate with the given id, or nil.
func (s *Set) Get(id uint) *models.Affiliate {
	return s.byID[id]
}

// UplineOf follows sponsor links from the given affiliate and returns its
// ancestors nearest-first. A nil sponsor terminates normally. A sponsor id
// missing from the set is tolerated as the top of the known chain (the row
// may have been removed between the snapshot and now). Revisiting an id
// means the sponsor graph has a cycle, which violates the tree invariant;
// traversal aborts with ErrCorruptHierarchy instead of looping.
func (s *Set) UplineOf(id uint) ([]*models.Affiliate, error) {
	start, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrAffiliateNotFound
	}
	visited := map[uint]bool{start.ID: true}
	var upline []*models.Affiliate
	cur := start
	for cur.SponsorID != nil {
		sponsor, ok := s.byID[*cur.SponsorID]
		if !ok {
			break // dangling reference, treat as root
		}
		if visited[sponsor.ID] {
			return nil, domain.ErrCorruptHierarchy
		}
		visited[sponsor.ID] = true
		upline = append(upline, sponsor)
		cur = sponsor
	}
	return upline, nil
}

// DownlineOf returns the direct children of the given affiliate, one level
// only. Callers recurse explicitly when they need deeper traversal.
func (s *Set) DownlineOf(id uint) []*models.Affiliate {
	return s.children[id]
}
