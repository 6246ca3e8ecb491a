package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple", title: "Intro to Go", want: "intro-to-go"},
		{name: "punctuation collapsed", title: "Go: Advanced Topics!", want: "go-advanced-topics"},
		{name: "digits kept", title: "Go 101", want: "go-101"},
		{name: "consecutive separators", title: "a  --  b", want: "a-b"},
		{name: "leading and trailing trimmed", title: "  Hello  ", want: "hello"},
		{name: "non ascii dropped", title: "Gözde's Kurs", want: "g-zde-s-kurs"},
		{name: "empty", title: "", want: ""},
		{name: "only separators", title: "!!!", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}
