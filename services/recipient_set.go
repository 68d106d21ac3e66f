package services

import (
	"sort"

	"okrproject/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipientSet accumulates notification recipients with set semantics. Ids
// are compared by their canonical hex form, so the same user reached via two
// hierarchy paths appears once.
type RecipientSet struct {
	ids map[string]struct{}
}

func NewRecipientSet() *RecipientSet {
	return &RecipientSet{
		ids: make(map[string]struct{}),
	}
}

func (s *RecipientSet) Add(id primitive.ObjectID) {
	if id.IsZero() {
		return
	}
	s.ids[id.Hex()] = struct{}{}
}

func (s *RecipientSet) AddUsers(users []models.User) {
	for _, user := range users {
		s.Add(user.ID)
	}
}

func (s *RecipientSet) Remove(id primitive.ObjectID) {
	delete(s.ids, id.Hex())
}

func (s *RecipientSet) Contains(id primitive.ObjectID) bool {
	_, ok := s.ids[id.Hex()]
	return ok
}

func (s *RecipientSet) Len() int {
	return len(s.ids)
}

// IDs returns the recipients in sorted order so fan-out is deterministic.
func (s *RecipientSet) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
