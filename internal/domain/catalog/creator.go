package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

type SocialType string

const (
	SocialInstagram SocialType = "instagram"
	SocialTwitter   SocialType = "twitter"
	SocialTwitch    SocialType = "twitch"
	SocialOnlyFans  SocialType = "onlyfans"
	SocialPrivacy   SocialType = "privacy"
	SocialYouTube   SocialType = "youtube"
	SocialWebsite   SocialType = "website"
)

func (t SocialType) Valid() bool {
	switch t {
	case SocialInstagram, SocialTwitter, SocialTwitch, SocialOnlyFans,
		SocialPrivacy, SocialYouTube, SocialWebsite:
		return true
	}
	return false
}

type SocialLink struct {
	Type SocialType `json:"type"`
	URL  string     `json:"url"`
}

// Creator is both the public profile and its row. ID is the identity id of
// the owning account.
type Creator struct {
	ID          string       `gorm:"type:text;primaryKey" json:"id"`
	Username    string       `gorm:"not null;uniqueIndex:idx_creators_username" json:"username"`
	Name        string       `json:"name"`
	Avatar      string       `json:"avatar"`
	Cover       string       `json:"cover"`
	Description string       `json:"description"`
	About       string       `json:"about"`
	SocialLinks []SocialLink `gorm:"serializer:json" json:"socialLinks"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Creator) TableName() string { return "creators" }

var ErrInvalidCreator = errors.New("invalid creator")

func (c Creator) Validate() error {
	if !ValidUsername(c.Username) {
		return fmt.Errorf("%w: username must be 3-30 characters of a-z, 0-9, '-', '_' or '.'", ErrInvalidCreator)
	}
	for _, l := range c.SocialLinks {
		if !l.Type.Valid() {
			return fmt.Errorf("%w: unknown social link type %q", ErrInvalidCreator, l.Type)
		}
	}
	return nil
}

var (
	usernameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._\-]{2,29}$`)
	nonHandle  = regexp.MustCompile(`[^a-z0-9._\-]+`)
	multiDash  = regexp.MustCompile(`-+`)
)

func ValidUsername(s string) bool { return usernameRe.MatchString(s) }

// NormalizeUsername lowercases a handle and strips characters that are not
// allowed in the public routing key. Example: " Ana Lima " -> "ana-lima".
func NormalizeUsername(s string) string {
	base := strings.ToLower(strings.TrimSpace(s))
	base = strings.TrimPrefix(base, "@")
	base = strings.ReplaceAll(base, " ", "-")
	base = nonHandle.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	return strings.Trim(base, "-")
}

// PlaceholderCreator is stored the first time an identity saves without a
// profile.
func PlaceholderCreator(identityID string) Creator {
	short := NormalizeUsername(identityID)
	short = strings.ReplaceAll(short, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return Creator{
		ID:          identityID,
		Username:    "user-" + short,
		Name:        "New creator",
		SocialLinks: []SocialLink{},
	}
}
