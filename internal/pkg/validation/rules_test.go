package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidVideoURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "youtube watch", url: "https://www.youtube.com/watch?v=446E-r0rXHI", want: true},
		{name: "youtube without www", url: "https://youtube.com/watch?v=abc123", want: true},
		{name: "youtu.be short link", url: "https://youtu.be/abc123", want: true},
		{name: "vimeo", url: "https://vimeo.com/123456789", want: true},
		{name: "plain http", url: "http://vimeo.com/123456789", want: true},
		{name: "other host", url: "https://example.com/watch?v=abc", want: false},
		{name: "vimeo without id", url: "https://vimeo.com/about", want: false},
		{name: "not a url", url: "watch this video", want: false},
		{name: "empty", url: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidVideoURL(tt.url))
		})
	}
}

func TestSlugPattern(t *testing.T) {
	assert.True(t, CompiledPatterns.Slug.MatchString("intro-to-go"))
	assert.True(t, CompiledPatterns.Slug.MatchString("go-101"))
	assert.False(t, CompiledPatterns.Slug.MatchString("Intro-To-Go"))
	assert.False(t, CompiledPatterns.Slug.MatchString("-leading"))
	assert.False(t, CompiledPatterns.Slug.MatchString("double--hyphen"))
}
