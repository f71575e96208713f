// Package validate holds the rule set for anime entries: per-field limits
// plus the status-conditional rules for rating, dates and episode count.
// Validation is a pure function of (candidate, now); it never mutates the
// candidate and reports violations as values, not errors.
package validate

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"animespotlight/pkg/models"
)

const (
	maxTitleLen       = 256
	maxDescriptionLen = 2000
	maxCategoryLen    = 256
)

// All validates every rule against the candidate and collects every
// violation. now is taken once per call, so a pass is internally consistent
// even if the clock advances mid-call.
func All(f models.AnimeFields, now time.Time) Errors {
	return run(f, day(now))
}

// Fields validates with full candidate context (conditional rules still see
// status and the other fields) but reports only the named fields; violations
// outside the scope are discarded. Asking about a field outside the schema
// is a programming error and panics.
func Fields(f models.AnimeFields, now time.Time, fields ...Field) Errors {
	scope := make(map[Field]bool, len(fields))
	for _, fd := range fields {
		mustKnow(fd)
		scope[fd] = true
	}

	all := run(f, day(now))
	out := make(Errors, len(scope))
	for fd, fe := range all {
		if scope[fd] {
			out[fd] = fe
		}
	}
	return out
}

var minStartDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

func run(f models.AnimeFields, today time.Time) Errors {
	errs := make(Errors)

	checkRequiredString(errs, FieldTitle, f.Title, maxTitleLen)
	checkOptionalString(errs, FieldEnTitle, f.EnTitle, maxTitleLen)
	checkRequiredString(errs, FieldDescription, f.Description, maxDescriptionLen)

	upcoming := f.Status == models.StatusUpcoming
	finished := f.Status == models.StatusFinished

	// rating: forbidden while upcoming, required otherwise
	if upcoming {
		if f.Rating != nil {
			errs.scalar(FieldRating, "must be empty for an upcoming title")
		}
	} else if f.Rating == nil {
		errs.scalar(FieldRating, "must be provided")
	} else {
		r := *f.Rating
		if r < 0 || r > 10 {
			errs.scalar(FieldRating, "must be between 0 and 10")
		} else if !isHalfStep(r) {
			errs.scalar(FieldRating, "must be in half-point steps")
		}
	}

	start, startOK := checkStartDate(errs, f.StartDate, upcoming, today)
	checkEndDate(errs, f.EndDate, start, startOK, finished, today)

	if !f.Subtype.Valid() {
		errs.scalar(FieldSubtype, "must be one of ONA, OVA, TV, movie")
	}
	if !f.Status.Valid() {
		errs.scalar(FieldStatus, "must be one of current, finished, upcoming")
	}

	if strings.TrimSpace(f.PosterImage) == "" {
		errs.scalar(FieldPosterImage, "must be provided")
	} else if !isURI(f.PosterImage) {
		errs.scalar(FieldPosterImage, "must be a valid URL")
	}
	if f.CoverImage != nil && strings.TrimSpace(*f.CoverImage) != "" && !isURI(*f.CoverImage) {
		errs.scalar(FieldCoverImage, "must be a valid URL")
	}

	// episodeCount: required once finished, otherwise optional
	if f.EpisodeCount == nil {
		if finished {
			errs.scalar(FieldEpisodeCount, "must be provided")
		}
	} else if *f.EpisodeCount < 1 {
		errs.scalar(FieldEpisodeCount, "must be a positive integer")
	}

	checkCategories(errs, f.Categories)

	return errs
}

func checkRequiredString(errs Errors, fd Field, v string, maxLen int) {
	if strings.TrimSpace(v) == "" {
		errs.scalar(fd, "must not be empty")
	} else if utf8.RuneCountInString(v) > maxLen {
		errs.scalar(fd, "must be at most "+strconv.Itoa(maxLen)+" characters")
	}
}

func checkOptionalString(errs Errors, fd Field, v *string, maxLen int) {
	if v == nil {
		return
	}
	if utf8.RuneCountInString(*v) > maxLen {
		errs.scalar(fd, "must be at most "+strconv.Itoa(maxLen)+" characters")
	}
}

// checkStartDate returns the parsed date so the end date rules can compare
// against it even when validation is scoped to endDate only.
func checkStartDate(errs Errors, raw *string, upcoming bool, today time.Time) (time.Time, bool) {
	if raw == nil {
		errs.scalar(FieldStartDate, "must be provided")
		return time.Time{}, false
	}
	d, ok := parseDay(*raw)
	if !ok {
		errs.scalar(FieldStartDate, "must be a valid date (YYYY-MM-DD)")
		return time.Time{}, false
	}
	if upcoming {
		if !d.After(today) {
			errs.scalar(FieldStartDate, "must be in the future")
		}
		return d, true
	}
	if d.Before(minStartDate) {
		errs.scalar(FieldStartDate, "must not be before 1900-01-01")
	} else if d.After(today) {
		errs.scalar(FieldStartDate, "must not be in the future")
	}
	return d, true
}

func checkEndDate(errs Errors, raw *string, start time.Time, startOK, finished bool, today time.Time) {
	if raw == nil {
		if finished {
			errs.scalar(FieldEndDate, "must be provided")
		}
		return
	}
	d, ok := parseDay(*raw)
	if !ok {
		errs.scalar(FieldEndDate, "must be a valid date (YYYY-MM-DD)")
		return
	}
	if finished {
		if startOK && d.Before(start) {
			errs.scalar(FieldEndDate, "must not be before the start date")
		} else if d.After(today) {
			errs.scalar(FieldEndDate, "must not be in the future")
		}
		return
	}
	// current or upcoming: an end date is allowed only as a future plan
	if !d.After(today) {
		errs.scalar(FieldEndDate, "must be in the future")
	} else if startOK && d.Before(start) {
		errs.scalar(FieldEndDate, "must not be before the start date")
	}
}

func checkCategories(errs Errors, categories []string) {
	if len(categories) == 0 {
		errs.general("must contain at least one category")
		return
	}

	seen := make(map[string]bool, len(categories))
	duplicate := false
	for i, c := range categories {
		trimmed := strings.TrimSpace(c)
		if trimmed == "" {
			errs.item(i, "must not be empty")
			continue
		}
		if utf8.RuneCountInString(trimmed) > maxCategoryLen {
			errs.item(i, "must be at most "+strconv.Itoa(maxCategoryLen)+" characters")
		}
		if seen[trimmed] {
			duplicate = true
		}
		seen[trimmed] = true
	}
	if duplicate {
		errs.general("must not contain duplicate categories")
	}
}

func parseDay(s string) (time.Time, bool) {
	t, err := time.Parse(models.DateFormat, s)
	if err != nil {
		return time.Time{}, false
	}
	return day(t), true
}

// day truncates to calendar-day granularity in UTC.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isHalfStep(r float64) bool {
	doubled := r * 2
	return math.Abs(doubled-math.Round(doubled)) < 1e-9
}

func isURI(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && u.Scheme != "" && u.Host != ""
}
