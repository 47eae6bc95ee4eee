package types

import "strings"

// Platform is the source category a result URL belongs to.
type Platform string

const (
	PlatformNews      Platform = "news"
	PlatformBlog      Platform = "blog"
	PlatformReddit    Platform = "reddit"
	PlatformQuora     Platform = "quora"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformOther     Platform = "other"
)

// Platforms lists every platform in classification order. PlatformOther is
// last and never matched by a domain table.
var Platforms = []Platform{
	PlatformNews,
	PlatformBlog,
	PlatformReddit,
	PlatformQuora,
	PlatformTwitter,
	PlatformFacebook,
	PlatformInstagram,
	PlatformTikTok,
	PlatformYouTube,
	PlatformOther,
}

// ParsePlatform maps a configuration name to a Platform.
func ParsePlatform(name string) (Platform, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Platforms {
		if string(p) == name {
			return p, true
		}
	}
	return PlatformOther, false
}

// IsSocial reports whether the platform is a social-media network.
func (p Platform) IsSocial() bool {
	switch p {
	case PlatformTwitter, PlatformFacebook, PlatformInstagram, PlatformTikTok, PlatformYouTube:
		return true
	}
	return false
}

// IsDiscussion reports whether the platform is a discussion forum.
func (p Platform) IsDiscussion() bool {
	return p == PlatformReddit || p == PlatformQuora
}

func (p Platform) String() string { return string(p) }
