// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package microdata_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/readeck/distiller/pkg/microdata"
	"codeberg.org/readeck/distiller/pkg/rdf"
)

func TestDatatypeOf(t *testing.T) {
	tests := []struct {
		value    string
		expected rdf.IRI
	}{
		{"2020-01-02", rdf.XSDDate},
		{"2020-01-02Z", rdf.XSDDate},
		{"2020-01-02+02:00", rdf.XSDDate},
		{"2020-02-30", ""},
		{"2020-13-01", ""},
		{"10:20", rdf.XSDTime},
		{"10:20:30", rdf.XSDTime},
		{"10:20:30.123", rdf.XSDTime},
		{"10:20:30-05:00", rdf.XSDTime},
		{"10:20.5", ""},
		{"25:00", ""},
		{"2020-01-02T10:20", rdf.XSDDateTime},
		{"2020-01-02T10:20:30.5Z", rdf.XSDDateTime},
		{"2020-01-02T10:20:30+01:00", rdf.XSDDateTime},
		{"2020-01-02 10:20", ""},
		{"2020-01-02T10:20+25:00", ""},
		{"P1Y", rdf.XSDDuration},
		{"P1Y2M3DT4H5M6S", rdf.XSDDuration},
		{"PT0.5S", rdf.XSDDuration},
		{"-P3D", rdf.XSDDuration},
		{"P", ""},
		{"PT", ""},
		{"P1DT", ""},
		{"2020", rdf.XSDGYear},
		{"2020-12", rdf.XSDGYearMonth},
		{"2020-00", ""},
		{"02-29", rdf.XSDGMonthDay},
		{"02-30", ""},
		{"Jan 2", ""},
		{"", ""},
		{" 2020-01-02", ""},
	}

	for _, test := range tests {
		t.Run(test.value, func(t *testing.T) {
			assert := require.New(t)
			dt, ok := microdata.DatatypeOf(test.value)
			if test.expected == "" {
				assert.False(ok)
				return
			}
			assert.True(ok)
			assert.Equal(test.expected, dt)
		})
	}
}
