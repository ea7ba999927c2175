package domain

import (
	"regexp"
	"strings"
)

var (
	iframeSrcRe = regexp.MustCompile(`src="([^"]+)"`)
	instagramRe = regexp.MustCompile(`instagram\.com/(reel|p)/([^/?]+)`)
	watchIDRe   = regexp.MustCompile(`v=([^&]+)`)
	shortIDRe   = regexp.MustCompile(`youtu\.be/([^?]+)`)
)

// EmbedSrc turns what an admin pasted into an iframe src. Accepted: a full
// iframe tag, an Instagram reel or post link, a youtube.com/watch link and
// a youtu.be link. Anything else reports false.
func EmbedSrc(embed string) (string, bool) {
	s := strings.TrimSpace(embed)
	if s == "" {
		return "", false
	}
	if m := iframeSrcRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	switch {
	case strings.Contains(s, "instagram.com"):
		if m := instagramRe.FindStringSubmatch(s); m != nil {
			return "https://www.instagram.com/" + m[1] + "/" + m[2] + "/embed", true
		}
	case strings.Contains(s, "youtube.com/watch"):
		if m := watchIDRe.FindStringSubmatch(s); m != nil {
			return "https://www.youtube.com/embed/" + m[1], true
		}
	case strings.Contains(s, "youtu.be"):
		if m := shortIDRe.FindStringSubmatch(s); m != nil {
			return "https://www.youtube.com/embed/" + m[1], true
		}
	}
	return "", false
}
