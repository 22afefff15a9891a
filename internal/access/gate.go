// Package access holds the authorization predicates of the system:
// who counts as the administrator and who may play a given video.
// They are pure functions over model values so both middleware and
// handlers share one definition.
package access

import "github.com/iliyamo/linktrend/internal/model"

// IsAdmin reports whether the user is the reserved administrative
// identity. Admin is a single well-known email supplied through
// configuration, not a role table.
func IsAdmin(u *model.User, adminEmail string) bool {
	return u != nil && u.Email == adminEmail
}

// CanView reports whether a user may play a video. Free videos are
// viewable by anyone, including anonymous visitors. Premium videos
// require a signed-in user whose unlocked set contains the video id;
// with no user present a premium video is never viewable.
func CanView(v model.Video, u *model.User) bool {
	if !v.IsPremium {
		return true
	}
	return u != nil && u.HasUnlocked(v.ID)
}
