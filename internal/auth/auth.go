// Package auth supplies the bearer credential consumed by the sync
// subsystem. Session management itself lives outside this client; only
// the credential and the signed-in signal are consumed here.
package auth

// Source provides the current bearer credential.
type Source interface {
	// Token returns the bearer credential, or an empty string when no
	// credential is available.
	Token() string
	// SignedIn reports whether a current user exists. Both a credential
	// and a signed-in user are required before the subsystem activates.
	SignedIn() bool
}

// Static is a Source backed by a fixed token, typically read from
// configuration or the environment.
type Static struct {
	token    string
	signedIn bool
}

// NewStatic creates a static credential source. The user is considered
// signed in exactly when a non-empty token is supplied.
func NewStatic(token string) *Static {
	return &Static{token: token, signedIn: token != ""}
}

// Token returns the fixed bearer credential.
func (s *Static) Token() string { return s.token }

// SignedIn reports whether a current user exists.
func (s *Static) SignedIn() bool { return s.signedIn }

// Ready reports whether the subsystem may activate: a non-empty
// credential and a signed-in user must both be present.
func Ready(s Source) bool {
	return s != nil && s.SignedIn() && s.Token() != ""
}
