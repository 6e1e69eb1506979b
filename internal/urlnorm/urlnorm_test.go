package urlnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"tracking and fragment", "https://x.com/a?utm_source=y&b=1#frag", "https://x.com/a?b=1"},
		{"all utm keys", "https://x.com/a?utm_medium=m&utm_campaign=c&utm_content=x&utm_term=t&utm_custom=z", "https://x.com/a"},
		{"click ids", "https://x.com/a?fbclid=1&gclid=2&msclkid=3&mc_cid=4&mc_eid=5&_ga=6&_gl=7&ref=8&source=9&id=7", "https://x.com/a?id=7"},
		{"trailing slash", "https://x.com/news/story/", "https://x.com/news/story"},
		{"root slash kept", "https://x.com/", "https://x.com/"},
		{"trailing slash with query", "https://x.com/a/?b=2", "https://x.com/a?b=2"},
		{"no change", "https://x.com/a?b=1", "https://x.com/a?b=1"},
		{"query keys sorted", "https://x.com/a?z=1&a=2", "https://x.com/a?a=2&z=1"},
		{"only tracking leaves no question mark", "https://x.com/a?ref=hn", "https://x.com/a"},
		{"semicolon pair kept", "https://x.com/a?id=1;p=2", "https://x.com/a?id=1;p=2"},
		{"semicolon pair beside tracking", "https://x.com/a?utm_source=y&id=1;b=2&c=3", "https://x.com/a?c=3&id=1;b=2"},
		{"bad escape kept", "https://x.com/a?b=%zz&c=1", "https://x.com/a?b=%zz&c=1"},
		{"encoded tracking key", "https://x.com/a?utm%5Fsource=y&c=1", "https://x.com/a?c=1"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://x.com/a?utm_source=y&b=1#frag",
		"https://x.com/a//",
		"https://www.example.com/path/to/page/?z=1&a=2&fbclid=abc",
		"http://example.com",
		"https://example.com/%7Euser/",
		"not a url at all",
		"https://x.com/a?id=1;p=2",
		"https://x.com/a?b=%zz&c=1&fbclid=z",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "theverge.com", Domain("https://www.theverge.com/2025/1/1/story"))
	assert.Equal(t, "blog.cloudflare.com", Domain("https://Blog.Cloudflare.com/post"))
	assert.Equal(t, "arxiv.org", Domain("https://arxiv.org:443/abs/1234"))
	assert.Equal(t, "", Domain("://bad"))
}
