// SPDX-License-Identifier: Apache-2.0

// Package timeref recognizes date and time expressions in Statement-of-Facts
// text and resolves them against a document-scoped reference date.
//
// Resolution never fails. An expression that cannot be read as a plausible
// calendar value resolves to an Unresolved timestamp carrying its raw text.
package timeref

import (
	"strings"
	"time"

	"github.com/sofproj/sof-mcp/internal/errors"
)

// Kind is the resolution outcome of a timestamp.
type Kind int

const (
	Unresolved Kind = iota
	Partial
	Absolute
)

func (k Kind) String() string {
	switch k {
	case Absolute:
		return "absolute"
	case Partial:
		return "partial"
	default:
		return "unresolved"
	}
}

// Missing is a set of parts a Partial timestamp lacks.
type Missing int

const (
	MissingNone Missing = 0
	MissingDate Missing = 1 << iota
	MissingTime
	MissingYear
)

// DateOrder decides how an all-numeric date such as 03/04/2024 is read.
type DateOrder string

const (
	DayFirst   DateOrder = "day_first"
	MonthFirst DateOrder = "month_first"
)

// ParseDateOrder parses "day_first" or "month_first". Empty means day_first.
func ParseDateOrder(s string) (DateOrder, error) {
	switch DateOrder(strings.ToLower(strings.TrimSpace(s))) {
	case DayFirst, "":
		return DayFirst, nil
	case MonthFirst:
		return MonthFirst, nil
	}
	return "", errors.Newf("unknown date order %q (want %s or %s)", s, DayFirst, MonthFirst)
}

// Timestamp is a resolved date/time expression.
type Timestamp struct {
	Kind Kind
	// Time holds the parts that are known. Missing parts are zero.
	Time    time.Time
	Missing Missing
	Raw     string
	// Ambiguous is set when day and month could both be read either way.
	Ambiguous bool
}

// IsZero reports whether no expression was found at all.
func (ts Timestamp) IsZero() bool {
	return ts.Kind == Unresolved && ts.Raw == ""
}

// IsAbsolute reports whether both date and time are known.
func (ts Timestamp) IsAbsolute() bool {
	return ts.Kind == Absolute
}

// HasTime reports whether the time of day is known.
func (ts Timestamp) HasTime() bool {
	return ts.Kind == Absolute || (ts.Kind == Partial && ts.Missing&MissingTime == 0)
}

// HasDate reports whether at least a day and month are known.
func (ts Timestamp) HasDate() bool {
	return ts.Kind == Absolute || (ts.Kind == Partial && ts.Missing&MissingDate == 0)
}

// String renders the timestamp in its canonical form.
func (ts Timestamp) String() string {
	switch ts.Kind {
	case Absolute:
		return ts.Time.Format("2006-01-02T15:04")
	case Partial:
		switch {
		case ts.Missing&MissingDate != 0:
			return ts.Time.Format("15:04")
		case ts.Missing&MissingYear != 0 && ts.Missing&MissingTime != 0:
			return ts.Time.Format("--01-02")
		case ts.Missing&MissingYear != 0:
			return ts.Time.Format("--01-02T15:04")
		case ts.Missing&MissingTime != 0:
			return ts.Time.Format("2006-01-02")
		}
	}
	return ts.Raw
}

// Compatible reports whether two timestamps can describe the same moment:
// they render equally or at least one of them carries nothing usable.
func (ts Timestamp) Compatible(o Timestamp) bool {
	if ts.Kind == Unresolved || o.Kind == Unresolved {
		return true
	}
	return ts.String() == o.String()
}

// Reference is the document-scoped context consulted while resolving
// expressions top to bottom. A zero Reference is ready to use; it must not
// be shared between documents.
type Reference struct {
	date    time.Time
	hasDate bool
	year    int
	last    time.Time
	hasLast bool
}

// Date returns the last known full date.
func (r *Reference) Date() (time.Time, bool) {
	return r.date, r.hasDate
}

// setDate makes d the current date. Rollover is measured against times on
// the current date only, so a new date forgets the last time.
func (r *Reference) setDate(d time.Time) {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if !r.hasDate || !day.Equal(r.date) {
		r.hasLast = false
	}
	r.date = day
	r.hasDate = true
	r.year = d.Year()
}

// inheritYear picks the year for a yearless date in month: the reference
// year, moved by one when that lands the date closer to the reference date
// (a "2 Jan" after 31 December belongs to the next year).
func (r *Reference) inheritYear(month int) int {
	year := r.year
	if !r.hasDate {
		return year
	}
	switch gap := int(r.date.Month()) - month; {
	case gap > 6:
		year++
	case gap < -6:
		year--
	}
	return year
}

// Resolver turns tokens into timestamps.
type Resolver struct {
	Order DateOrder
}

// NewResolver returns a resolver reading ambiguous numeric dates in order.
func NewResolver(order DateOrder) *Resolver {
	if order == "" {
		order = DayFirst
	}
	return &Resolver{Order: order}
}

// Resolve scans candidate for its first expression and resolves it. A nil
// ref resolves without document context.
func (r *Resolver) Resolve(candidate string, ref *Reference) Timestamp {
	toks := Scan(candidate)
	if len(toks) == 0 {
		return Timestamp{Kind: Unresolved, Raw: strings.TrimSpace(candidate)}
	}
	return r.ResolveToken(toks[0], ref)
}

// ResolveAll resolves tokens in document order with a fresh Reference.
func (r *Resolver) ResolveAll(toks []Token) []Timestamp {
	ref := &Reference{}
	out := make([]Timestamp, len(toks))
	for i, tok := range toks {
		out[i] = r.ResolveToken(tok, ref)
	}
	return out
}

// ResolveToken resolves tok and updates ref with any date it establishes.
func (r *Resolver) ResolveToken(tok Token, ref *Reference) Timestamp {
	if ref == nil {
		ref = &Reference{}
	}
	ts := Timestamp{Raw: tok.Text}

	var (
		date    time.Time
		hasDate bool
		noYear  bool
	)
	if tok.HasDate {
		day, month, ambiguous, ok := r.dayMonth(tok, ref)
		if !ok {
			return ts
		}
		ts.Ambiguous = ambiguous
		year := tok.Year
		if year == 0 && ref.year != 0 {
			year = ref.inheritYear(month)
		}
		if year == 0 {
			noYear = true
			date = time.Date(0, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		} else {
			if !validDate(year, month, day) {
				return Timestamp{Raw: tok.Text}
			}
			date = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			hasDate = true
			ref.setDate(date)
		}
	}

	if !tok.HasTime {
		ts.Kind = Partial
		ts.Time = date
		ts.Missing = MissingTime
		if noYear {
			ts.Missing |= MissingYear
		}
		return ts
	}

	clock := time.Duration(tok.Hour)*time.Hour + time.Duration(tok.Minute)*time.Minute
	switch {
	case hasDate:
		ts.Kind = Absolute
		ts.Time = date.Add(clock)
		ref.last, ref.hasLast = ts.Time, true
	case noYear:
		ts.Kind = Partial
		ts.Time = date.Add(clock)
		ts.Missing = MissingYear
	case ref.hasDate:
		at := ref.date.Add(clock)
		if ref.hasLast && at.Before(ref.last.Add(-12*time.Hour)) {
			at = at.Add(24 * time.Hour)
			ref.setDate(at)
		}
		ts.Kind = Absolute
		ts.Time = at
		ref.last, ref.hasLast = at, true
	default:
		ts.Kind = Partial
		ts.Time = time.Date(0, 1, 1, tok.Hour, tok.Minute, 0, 0, time.UTC)
		ts.Missing = MissingDate
	}
	return ts
}

// dayMonth decides the day and month of a token's date part.
func (r *Resolver) dayMonth(tok Token, ref *Reference) (day, month int, ambiguous, ok bool) {
	if !tok.Numeric {
		return tok.First, tok.Second, false, plausible(tok.Second, tok.First, checkYear(tok, ref))
	}
	day, month = tok.First, tok.Second
	if r.Order == MonthFirst {
		day, month = tok.Second, tok.First
	}
	year := checkYear(tok, ref)
	if plausible(month, day, year) {
		ambiguous = tok.First != tok.Second && tok.First <= 12 && tok.Second <= 12
		return day, month, ambiguous, true
	}
	if plausible(day, month, year) {
		return month, day, false, true
	}
	return 0, 0, false, false
}

// checkYear is the year used to validate a day. A leap year stands in when
// the year is unknown so 29 February is accepted.
func checkYear(tok Token, ref *Reference) int {
	switch {
	case tok.Year != 0:
		return tok.Year
	case ref.year != 0:
		return ref.year
	default:
		return 2000
	}
}

func plausible(month, day, year int) bool {
	return month >= 1 && month <= 12 && validDate(year, month, day)
}

// validDate round-trips the date through the calendar.
func validDate(year, month, day int) bool {
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}
