// Package store holds the in-memory list state for a catalog view: the
// authoritative entry list, a loading flag, and the last operation's
// message or error. Transitions go through an explicit action enumeration
// rather than ad-hoc mutation.
package store

import "animespotlight/pkg/models"

type ActionType int

const (
	// Start marks an operation as in flight.
	Start ActionType = iota
	// End clears the loading flag and records the outcome message or error.
	End
	// SetList replaces the entry list.
	SetList
	// Remove drops a single entry by id.
	Remove
	// ResetNotifications clears the last message and error.
	ResetNotifications
)

type Action struct {
	Type    ActionType
	Animes  []models.Anime
	ID      int64
	Message string
	Err     string
}

type State struct {
	Animes  []models.Anime
	Loading bool
	Message string
	Err     string
}

// Store owns one State. It is not a singleton; each page-level owner makes
// its own.
type Store struct {
	state State
}

func New(initial []models.Anime) *Store {
	return &Store{state: State{Animes: append([]models.Anime(nil), initial...)}}
}

// State returns a snapshot; the entry slice is copied so callers cannot
// mutate store internals.
func (s *Store) State() State {
	out := s.state
	out.Animes = append([]models.Anime(nil), s.state.Animes...)
	return out
}

// Apply is the transition function.
func (s *Store) Apply(a Action) {
	switch a.Type {
	case Start:
		s.state.Loading = true
	case End:
		s.state.Loading = false
		s.state.Message = a.Message
		s.state.Err = a.Err
	case SetList:
		s.state.Animes = append([]models.Anime(nil), a.Animes...)
	case Remove:
		kept := s.state.Animes[:0:0]
		for _, an := range s.state.Animes {
			if an.ID != a.ID {
				kept = append(kept, an)
			}
		}
		s.state.Animes = kept
	case ResetNotifications:
		s.state.Message = ""
		s.state.Err = ""
	}
}
