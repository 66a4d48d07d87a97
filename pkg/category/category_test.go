package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    category.Category
		wantErr bool
	}{
		{in: "2D Plans", want: category.Plans2D},
		{in: "  3d plans ", want: category.Plans3D},
		{in: "OTHER", want: category.Other},
		{in: "All", wantErr: true},
		{in: "", wantErr: true},
		{in: "4D Plans", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := category.Parse(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]category.Category{
		"":         category.All,
		"all":      category.All,
		"ALL":      category.All,
		"2d plans": category.Plans2D,
		"Other":    category.Other,
	} {
		got, err := category.ParseFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := category.ParseFilter("sketches")
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	assert.True(t, category.Plans2D.Matches(category.All))
	assert.True(t, category.Plans2D.Matches(category.Plans2D))
	assert.False(t, category.Plans2D.Matches(category.Plans3D))
	assert.False(t, category.All.Valid())
	assert.Len(t, category.Known(), 3)
}
