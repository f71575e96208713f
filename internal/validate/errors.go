package validate

import "fmt"

// Field names the schema fields of an anime entry. The error map is keyed
// by this closed set, never by open strings.
type Field string

const (
	FieldTitle        Field = "title"
	FieldEnTitle      Field = "enTitle"
	FieldDescription  Field = "description"
	FieldRating       Field = "rating"
	FieldStartDate    Field = "startDate"
	FieldEndDate      Field = "endDate"
	FieldSubtype      Field = "subtype"
	FieldStatus       Field = "status"
	FieldPosterImage  Field = "posterImage"
	FieldCoverImage   Field = "coverImage"
	FieldEpisodeCount Field = "episodeCount"
	FieldCategories   Field = "categories"
)

// AllFields lists every schema field in rule evaluation order.
func AllFields() []Field {
	return []Field{
		FieldTitle, FieldEnTitle, FieldDescription, FieldRating,
		FieldStartDate, FieldEndDate, FieldSubtype, FieldStatus,
		FieldPosterImage, FieldCoverImage, FieldEpisodeCount, FieldCategories,
	}
}

func (f Field) Known() bool {
	switch f {
	case FieldTitle, FieldEnTitle, FieldDescription, FieldRating,
		FieldStartDate, FieldEndDate, FieldSubtype, FieldStatus,
		FieldPosterImage, FieldCoverImage, FieldEpisodeCount, FieldCategories:
		return true
	}
	return false
}

// FieldError is the violation record for one field. Scalar fields carry a
// single Message. The categories field instead fills General (collection
// level: empty list, duplicates) and/or Items (per-index). General and Items
// live in separate slots, so collection and per-item messages can never
// clobber each other regardless of the order rules fire in.
type FieldError struct {
	Message string         `json:"message,omitempty"`
	General string         `json:"general,omitempty"`
	Items   map[int]string `json:"items,omitempty"`
}

// Errors maps fields to their violations. A nil or empty map means valid.
type Errors map[Field]*FieldError

func (e Errors) Empty() bool { return len(e) == 0 }

// scalar records a message for a field, keeping the first one seen.
func (e Errors) scalar(f Field, msg string) {
	if _, ok := e[f]; ok {
		return
	}
	e[f] = &FieldError{Message: msg}
}

func (e Errors) categories() *FieldError {
	fe, ok := e[FieldCategories]
	if !ok {
		fe = &FieldError{}
		e[FieldCategories] = fe
	}
	return fe
}

func (e Errors) general(msg string) {
	fe := e.categories()
	if fe.General == "" {
		fe.General = msg
	}
}

func (e Errors) item(idx int, msg string) {
	fe := e.categories()
	if fe.Items == nil {
		fe.Items = make(map[int]string)
	}
	if _, ok := fe.Items[idx]; !ok {
		fe.Items[idx] = msg
	}
}

func mustKnow(f Field) {
	if !f.Known() {
		panic(fmt.Sprintf("validate: unknown field %q", string(f)))
	}
}
