// Package cookie sets and reads the HttpOnly token cookies issued next to
// the JSON token pair, so browser clients can authenticate without storing
// tokens in script-visible storage.
//
//	cookie.SetTokens(w, pair.AccessToken, pair.RefreshToken, cookie.Options{
//	    Secure:        true,
//	    AccessMaxAge:  time.Hour,
//	    RefreshMaxAge: 7 * 24 * time.Hour,
//	})
//
//	token := cookie.AccessToken(r)
package cookie
