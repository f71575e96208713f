// Package form owns the create/edit draft of an anime entry and decides
// when the validation rules run: text fields on blur, selects and rating on
// change, everything on submit.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"animespotlight/internal/validate"
	"animespotlight/pkg/models"
)

var (
	// ErrInvalidFields aborts a submit that reported field errors; the
	// refreshed error map is available via Errors.
	ErrInvalidFields = errors.New("please correct the highlighted fields before submitting")

	// ErrInvalidDraft covers the consistency check where the draft passed
	// validation but its normalized form did not. Not a real user path.
	ErrInvalidDraft = errors.New("some fields have invalid inputs, please review your entries and try again")
)

// statusScope lists the fields whose rules depend on status.
var statusScope = []validate.Field{
	validate.FieldStatus,
	validate.FieldStartDate,
	validate.FieldEndDate,
	validate.FieldEpisodeCount,
	validate.FieldRating,
}

// Session is a single editing session: the mutable draft, the last-computed
// error map, and the previously-seen start date used for end date re-sync.
// It is owned by one caller and mutated by one event at a time.
type Session struct {
	fields       models.AnimeFields
	errors       validate.Errors
	preStartDate *string
	editing      bool
	clock        func() time.Time
}

// NewSession starts a create-mode draft with the fixed defaults.
func NewSession() *Session {
	rating := 10.0
	enTitle := ""
	coverImage := ""
	return &Session{
		fields: models.AnimeFields{
			Title:       "",
			EnTitle:     &enTitle,
			Description: "",
			Rating:      &rating,
			Subtype:     models.SubtypeTV,
			Status:      models.StatusFinished,
			CoverImage:  &coverImage,
			Categories:  []string{""},
		},
		errors: make(validate.Errors),
		clock:  time.Now,
	}
}

// NewEditSession seeds a draft from a persisted entry, identifier stripped.
func NewEditSession(a models.Anime) *Session {
	f := a.AnimeFields.Clone()
	return &Session{
		fields:       f,
		errors:       make(validate.Errors),
		preStartDate: f.StartDate,
		editing:      true,
		clock:        time.Now,
	}
}

// WithClock overrides the time source. Tests use this to pin "now".
func (s *Session) WithClock(fn func() time.Time) *Session {
	s.clock = fn
	return s
}

// Fields returns a copy of the current draft.
func (s *Session) Fields() models.AnimeFields { return s.fields.Clone() }

// Errors returns the current error map. Callers must not mutate it.
func (s *Session) Errors() validate.Errors { return s.errors }

func (s *Session) Editing() bool { return s.editing }

// SetText records a keystroke-level change to a text field. No validation
// runs until the field blurs.
func (s *Session) SetText(fd validate.Field, v string) {
	switch fd {
	case validate.FieldTitle:
		s.fields.Title = v
	case validate.FieldEnTitle:
		s.fields.EnTitle = &v
	case validate.FieldDescription:
		s.fields.Description = v
	case validate.FieldPosterImage:
		s.fields.PosterImage = v
	case validate.FieldCoverImage:
		s.fields.CoverImage = &v
	default:
		panic(fmt.Sprintf("form: %q is not a text field", string(fd)))
	}
}

// BlurText trims the field and validates it in isolation.
func (s *Session) BlurText(fd validate.Field) {
	switch fd {
	case validate.FieldTitle:
		s.fields.Title = strings.TrimSpace(s.fields.Title)
	case validate.FieldEnTitle:
		if s.fields.EnTitle != nil {
			t := strings.TrimSpace(*s.fields.EnTitle)
			s.fields.EnTitle = &t
		}
	case validate.FieldDescription:
		s.fields.Description = strings.TrimSpace(s.fields.Description)
	case validate.FieldPosterImage:
		s.fields.PosterImage = strings.TrimSpace(s.fields.PosterImage)
	case validate.FieldCoverImage:
		if s.fields.CoverImage != nil {
			t := strings.TrimSpace(*s.fields.CoverImage)
			s.fields.CoverImage = &t
		}
	default:
		panic(fmt.Sprintf("form: %q is not a text field", string(fd)))
	}
	s.revalidate(fd)
}

// SetStatus switches the lifecycle status. Moving to upcoming clears rating
// and end date before validation; every status change revalidates the whole
// status-dependent scope because the conditional rules differ per status.
func (s *Session) SetStatus(v models.Status) {
	s.fields.Status = v
	if v == models.StatusUpcoming {
		s.fields.Rating = nil
		s.fields.EndDate = nil
	}
	s.revalidate(statusScope...)
}

func (s *Session) SetSubtype(v models.Subtype) {
	s.fields.Subtype = v
	s.revalidate(validate.FieldSubtype)
}

// SetRating validates immediately; the control has no intermediate state.
func (s *Session) SetRating(v *float64) {
	s.fields.Rating = copyPtr(v)
	s.revalidate(validate.FieldRating)
}

// SetStartDate changes the start date and, while the entry is finished and
// the date actually moved, re-syncs the end date to match. The re-sync is
// idempotent: the same date again does not re-trigger it.
func (s *Session) SetStartDate(v *string) {
	s.fields.StartDate = copyPtr(v)
	if s.fields.Status == models.StatusFinished && v != nil && !equalPtr(s.preStartDate, v) {
		s.fields.EndDate = copyPtr(v)
		s.preStartDate = copyPtr(v)
	}
	s.revalidate(validate.FieldStartDate, validate.FieldEndDate)
}

func (s *Session) SetEndDate(v *string) {
	s.fields.EndDate = copyPtr(v)
	s.revalidate(validate.FieldEndDate)
}

// SetEpisodeCount records an already-parsed count (nil when the input is not
// a number). Validation waits for the blur.
func (s *Session) SetEpisodeCount(v *int) {
	s.fields.EpisodeCount = copyPtr(v)
}

func (s *Session) BlurEpisodeCount() {
	s.revalidate(validate.FieldEpisodeCount)
}

// SetCategory records a keystroke-level change to one category input.
func (s *Session) SetCategory(idx int, v string) {
	s.fields.Categories[idx] = v
}

// BlurCategory trims one category and revalidates the collection.
func (s *Session) BlurCategory(idx int) {
	s.fields.Categories[idx] = strings.TrimSpace(s.fields.Categories[idx])
	s.revalidate(validate.FieldCategories)
}

// AddCategory appends an empty category input. Only the transition from an
// empty list to a non-empty one validates, to surface the "at least one"
// error early without nagging on every addition.
func (s *Session) AddCategory() {
	s.fields.Categories = append(s.fields.Categories, "")
	if len(s.fields.Categories) == 1 {
		s.revalidate(validate.FieldCategories)
	}
}

// RemoveCategory drops one category and revalidates the collection, which
// also rebuilds per-index errors so entries never survive an index shift.
func (s *Session) RemoveCategory(idx int) {
	s.fields.Categories = append(s.fields.Categories[:idx], s.fields.Categories[idx+1:]...)
	s.revalidate(validate.FieldCategories)
}

// Submit runs full validation; on any violation the error map is replaced
// wholesale and ErrInvalidFields returned. On success the trimmed,
// normalized draft goes to the callback exactly once. A callback failure is
// propagated as-is with draft and errors untouched, so the user can retry.
func (s *Session) Submit(ctx context.Context, submit func(context.Context, models.AnimeFields) error) error {
	now := s.clock()

	errs := validate.All(s.fields, now)
	s.errors = errs
	if !errs.Empty() {
		return ErrInvalidFields
	}

	clean := normalize(s.fields)
	if check := validate.All(clean, now); !check.Empty() {
		return ErrInvalidDraft
	}
	return submit(ctx, clean)
}

// revalidate runs scoped validation and merges per requested field: a fresh
// violation replaces the stored one, a clean result deletes it. Errors on
// fields outside the scope are left alone.
func (s *Session) revalidate(fields ...validate.Field) {
	res := validate.Fields(s.fields, s.clock(), fields...)
	for _, fd := range fields {
		if fe, ok := res[fd]; ok {
			s.errors[fd] = fe
		} else {
			delete(s.errors, fd)
		}
	}
}

// normalize trims string fields and folds empty optional strings to nil.
func normalize(f models.AnimeFields) models.AnimeFields {
	out := f.Clone()
	out.Title = strings.TrimSpace(out.Title)
	out.Description = strings.TrimSpace(out.Description)
	out.PosterImage = strings.TrimSpace(out.PosterImage)
	out.EnTitle = normalizeOpt(out.EnTitle)
	out.CoverImage = normalizeOpt(out.CoverImage)
	for i, c := range out.Categories {
		out.Categories[i] = strings.TrimSpace(c)
	}
	return out
}

func normalizeOpt(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
