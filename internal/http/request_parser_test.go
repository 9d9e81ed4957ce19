package http

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategoryEdits(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		want    map[int]string
		wantErr bool
	}{
		{
			name: "rows and other fields",
			form: url.Values{"category_0": {" Food "}, "category_12": {"Travel"}, "csrf": {"x"}},
			want: map[int]string{0: "Food", 12: "Travel"},
		},
		{name: "empty form", form: url.Values{}, want: map[int]string{}},
		{name: "non numeric row", form: url.Values{"category_x": {"Food"}}, wantErr: true},
		{name: "negative row", form: url.Values{"category_-1": {"Food"}}, wantErr: true},
		{name: "control characters stripped", form: url.Values{"category_1": {"Fo\x00od"}}, want: map[int]string{1: "Food"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategoryEdits(tt.form)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadEditField)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Food\tand drink", sanitizeInput("  Food\tand\x07 drink \n"))
}
