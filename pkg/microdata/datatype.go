// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package microdata

import (
	"regexp"
	"strings"
	"time"

	"codeberg.org/readeck/distiller/pkg/rdf"
)

const (
	clockPattern = `\d{2}:\d{2}|\d{2}:\d{2}:\d{2}(?:\.\d+)?`
	tzPattern    = `(Z|[+-]\d{2}:\d{2})?`
)

var (
	rxGYear      = regexp.MustCompile(`^\d{4}$`)
	rxGYearMonth = regexp.MustCompile(`^\d{4}-\d{2}$`)
	rxGMonthDay  = regexp.MustCompile(`^\d{2}-\d{2}$`)
	rxDate       = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})` + tzPattern + `$`)
	rxTime       = regexp.MustCompile(`^(` + clockPattern + `)` + tzPattern + `$`)
	rxDateTime   = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})T(` + clockPattern + `)` + tzPattern + `$`)
	rxDuration   = regexp.MustCompile(`^-?P(?:\d+Y)?(?:\d+M)?(?:\d+D)?(?:T(?:\d+H)?(?:\d+M)?(?:\d+(?:\.\d+)?S)?)?$`)
)

// DatatypeOf returns the XSD date or time datatype matching the lexical
// form of a value: date, time, dateTime, duration, gYear, gYearMonth or
// gMonthDay. It returns false when the value has none of these forms or
// contains an out of range field.
func DatatypeOf(s string) (rdf.IRI, bool) {
	switch {
	case rxGYear.MatchString(s):
		return rdf.XSDGYear, true
	case rxGYearMonth.MatchString(s):
		return rdf.XSDGYearMonth, validLayout("2006-01", s)
	case rxGMonthDay.MatchString(s):
		// Year 2000 is a leap year so "02-29" is accepted.
		return rdf.XSDGMonthDay, validLayout("2006-01-02", "2000-"+s)
	}

	if m := rxDate.FindStringSubmatch(s); m != nil {
		return rdf.XSDDate, validLayout("2006-01-02", m[1]) && validZone(m[2])
	}
	if m := rxTime.FindStringSubmatch(s); m != nil {
		return rdf.XSDTime, validClock(m[1]) && validZone(m[2])
	}
	if m := rxDateTime.FindStringSubmatch(s); m != nil {
		return rdf.XSDDateTime, validLayout("2006-01-02", m[1]) && validClock(m[2]) && validZone(m[3])
	}
	if isDuration(s) {
		return rdf.XSDDuration, true
	}

	return "", false
}

func validLayout(layout, s string) bool {
	_, err := time.Parse(layout, s)
	return err == nil
}

func validClock(s string) bool {
	s, _, _ = strings.Cut(s, ".")
	if len(s) == len("15:04") {
		return validLayout("15:04", s)
	}
	return validLayout("15:04:05", s)
}

func validZone(s string) bool {
	if s == "" || s == "Z" {
		return true
	}
	return validLayout("15:04", s[1:])
}

// isDuration matches an ISO 8601 duration with at least one field and,
// when there is a time part, at least one time field.
func isDuration(s string) bool {
	if !rxDuration.MatchString(s) {
		return false
	}
	s = strings.TrimPrefix(s, "-")
	if s == "P" || strings.HasSuffix(s, "T") {
		return false
	}
	return true
}
