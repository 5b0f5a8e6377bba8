// Package identity derives stable user identifiers from email addresses.
package identity

// Normalize maps an email address to a directory-safe user ID by replacing
// every character outside [A-Za-z0-9_-] with an underscore. The transform is
// pure and length-preserving but lossy: distinct emails differing only in
// punctuation collide, so the result is a derived key, not proof of email
// equality.
func Normalize(email string) string {
	out := []byte(email)
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
