// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

// PageTitleSuffix is appended to the display name in the document title, and
// used alone when no name has been resolved.
const PageTitleSuffix = "Portfolio"

// Profile is the display-ready view of a GitHub user.
//
// A Profile starts life at its fallback (see FallbackProfile) and is replaced
// wholesale when the upstream fetch succeeds. It is never partially updated:
// a response missing a required field leaves the fallback untouched.
type Profile struct {
	DisplayName string `json:"name"`
	LoginHandle string `json:"login"`
	AvatarURL   string `json:"avatar_url"`
	Biography   string `json:"bio"`
}

// FallbackProfile returns the profile shown before resolution or after a
// failed fetch.
func FallbackProfile(placeholderAvatarURL string) Profile {
	return Profile{AvatarURL: placeholderAvatarURL}
}

// Title returns the page title. It is never empty.
func (p Profile) Title() string {
	if p.DisplayName == "" {
		return PageTitleSuffix
	}
	return p.DisplayName + " | " + PageTitleSuffix
}
