package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName_Accepts(t *testing.T) {
	for _, s := range []string{
		"people",
		"_private",
		"events2",
		"snake_case_name",
		"X",
	} {
		t.Run(s, func(t *testing.T) {
			assert.NoError(t, Name(s))
		})
	}
}

func TestName_Rejects(t *testing.T) {
	for _, s := range []string{
		"",
		"*",
		"people; DROP TABLE users",
		`pe"ople`,
		"pe'ople",
		"people--",
		"people/*",
		"two words",
		"dotted.name",
		"labels[*]",
		"2leading",
		"hy-phen",
		"semi;colon",
	} {
		t.Run(s, func(t *testing.T) {
			err := Name(s)
			require.Error(t, err)

			var ne *NameError
			require.ErrorAs(t, err, &ne)
			assert.Equal(t, s, ne.Name)
		})
	}
}

func TestPath_Accepts(t *testing.T) {
	for _, s := range []string{
		"age",
		"process.name",
		"a.b.c",
		"labels[*]",
		"nested.labels[*]",
		"_x.y_2",
	} {
		t.Run(s, func(t *testing.T) {
			assert.NoError(t, Path(s))
		})
	}
}

func TestPath_Rejects(t *testing.T) {
	for _, s := range []string{
		"",
		".",
		"a.",
		".a",
		"a..b",
		"a.b;",
		`a."b"`,
		"a'",
		"a--",
		"a b",
		"[*]",
		"a[*].b", // marker only allowed at the end
		"a[0]",
	} {
		t.Run(s, func(t *testing.T) {
			err := Path(s)
			require.Error(t, err)

			var pe *PathError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, s, pe.Path)
		})
	}
}
