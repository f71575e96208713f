package models

// DateFormat is the wire form of calendar dates. Day granularity only;
// no time-of-day component is ever stored or compared.
const DateFormat = "2006-01-02"

type Subtype string

const (
	SubtypeONA   Subtype = "ONA"
	SubtypeOVA   Subtype = "OVA"
	SubtypeTV    Subtype = "TV"
	SubtypeMovie Subtype = "movie"
)

func Subtypes() []Subtype {
	return []Subtype{SubtypeONA, SubtypeOVA, SubtypeTV, SubtypeMovie}
}

func (s Subtype) Valid() bool {
	switch s {
	case SubtypeONA, SubtypeOVA, SubtypeTV, SubtypeMovie:
		return true
	}
	return false
}

type Status string

const (
	StatusCurrent  Status = "current"
	StatusFinished Status = "finished"
	StatusUpcoming Status = "upcoming"
)

func Statuses() []Status {
	return []Status{StatusCurrent, StatusFinished, StatusUpcoming}
}

func (s Status) Valid() bool {
	switch s {
	case StatusCurrent, StatusFinished, StatusUpcoming:
		return true
	}
	return false
}

// AnimeFields holds the editable fields of a catalog entry. Pointers mark
// fields that may legitimately be absent in a draft or a persisted entry;
// dates are YYYY-MM-DD strings.
type AnimeFields struct {
	Title        string   `json:"title"`
	EnTitle      *string  `json:"enTitle"`
	Description  string   `json:"description"`
	Rating       *float64 `json:"rating"`
	StartDate    *string  `json:"startDate"`
	EndDate      *string  `json:"endDate"`
	Subtype      Subtype  `json:"subtype"`
	Status       Status   `json:"status"`
	PosterImage  string   `json:"posterImage"`
	CoverImage   *string  `json:"coverImage"`
	EpisodeCount *int     `json:"episodeCount"`
	Categories   []string `json:"categories"`
}

// Anime is a persisted entry.
type Anime struct {
	ID int64 `json:"id"`
	AnimeFields
}

// Clone returns a deep copy, so a form draft never aliases caller state.
func (f AnimeFields) Clone() AnimeFields {
	out := f
	out.EnTitle = clonePtr(f.EnTitle)
	out.Rating = clonePtr(f.Rating)
	out.StartDate = clonePtr(f.StartDate)
	out.EndDate = clonePtr(f.EndDate)
	out.CoverImage = clonePtr(f.CoverImage)
	out.EpisodeCount = clonePtr(f.EpisodeCount)
	if f.Categories != nil {
		out.Categories = append([]string(nil), f.Categories...)
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
