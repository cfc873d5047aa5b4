package domain

import "time"

// TimestampLayout is the format used for the query timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

// ResultSheetName is the sheet every result file is written to.
const ResultSheetName = "Results"

// ResultColumns is the authoritative, ordered column schema for result files.
// StudentResult.ToRow serializes in exactly this order, and the writer treats
// any existing file whose header set differs as schema drift.
var ResultColumns = []string{
	"Registration Number",
	"Email",
	"Full Name (Cyrillic)",
	"Full Name (Latin)",
	"System Registration Number",
	"Country",
	"Status",
	"Status Message",
	"Education Level",
	"Education Program",
	"Preparatory Faculty",
	"Query Timestamp",
	"Error",
}

// StudentInput is one source row requesting a status lookup.
type StudentInput struct {
	RegNumber string
	Email     string
	RowIndex  int // 1-based data-row position in the source sheet
}

// Valid reports whether the input carries both required fields.
func (s StudentInput) Valid() bool {
	return s.RegNumber != "" && s.Email != ""
}

// StudentResult is one input's lookup outcome plus processing metadata.
// Extracted fields are pointers so "never populated" stays distinct from
// "populated empty".
type StudentResult struct {
	RegNumber string
	Email     string
	RowIndex  int

	FullNameCyrillic   *string
	FullNameLatin      *string
	SystemRegNumber    *string
	Country            *string
	Status             *string
	StatusMessage      *string
	EducationLevel     *string
	EducationProgram   *string
	PreparatoryFaculty *string

	QueryTimestamp time.Time
	Error          *string
	Processed      bool
}

// NewStudentResult seeds a result from its input. The query timestamp is set
// here, once; later updates replace the whole record, never the timestamp.
func NewStudentResult(in StudentInput) StudentResult {
	return StudentResult{
		RegNumber:      in.RegNumber,
		Email:          in.Email,
		RowIndex:       in.RowIndex,
		QueryTimestamp: time.Now(),
	}
}

// ToRow serializes the result in ResultColumns order.
func (r StudentResult) ToRow() []string {
	return []string{
		r.RegNumber,
		r.Email,
		deref(r.FullNameCyrillic),
		deref(r.FullNameLatin),
		deref(r.SystemRegNumber),
		deref(r.Country),
		deref(r.Status),
		deref(r.StatusMessage),
		deref(r.EducationLevel),
		deref(r.EducationProgram),
		deref(r.PreparatoryFaculty),
		r.QueryTimestamp.Format(TimestampLayout),
		deref(r.Error),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
