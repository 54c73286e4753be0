package catalog

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// CleanText strips every HTML tag from user supplied text. The result is
// plain text, so the entities bluemonday escapes are decoded again.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Sanitized returns a copy of c with markup removed from its free text. URLs
// are kept as given.
func (c Creator) Sanitized() Creator {
	out := c
	out.Username = NormalizeUsername(c.Username)
	out.Name = CleanText(c.Name)
	out.Description = CleanText(c.Description)
	out.About = CleanText(c.About)
	out.Avatar = strings.TrimSpace(c.Avatar)
	out.Cover = strings.TrimSpace(c.Cover)
	out.SocialLinks = make([]SocialLink, 0, len(c.SocialLinks))
	for _, l := range c.SocialLinks {
		l.Type = SocialType(strings.ToLower(strings.TrimSpace(string(l.Type))))
		l.URL = strings.TrimSpace(l.URL)
		if l.URL == "" {
			continue
		}
		out.SocialLinks = append(out.SocialLinks, l)
	}
	return out
}

func (p Package) Sanitized() Package {
	out := p
	out.Title = CleanText(p.Title)
	out.Features = make([]string, 0, len(p.Features))
	for _, f := range p.Features {
		out.Features = append(out.Features, CleanText(f))
	}
	out.Media = make([]MediaItem, 0, len(p.Media))
	for _, m := range p.Media {
		m.Caption = CleanText(m.Caption)
		m.URL = strings.TrimSpace(m.URL)
		out.Media = append(out.Media, m)
	}
	return out
}
