package routes

import (
	"net/http"
	"net/url"

	"github.com/yukiapp/yuki-server/pkg/auth"
)

// Admission gates requests by path class. Reserved and PublicProfile paths
// pass through untouched; Protected paths require an identity from the
// guard or get redirected to the login entry point with the original path
// preserved as a return target.
func Admission(classifier *Classifier, guard *auth.Guard, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch classifier.Classify(r.URL.Path) {
			case Reserved, PublicProfile:
				// Identity, when present, is still attached for handlers
				// that want it.
				if ctx, ok := guard.Authenticated(r); ok {
					r = r.WithContext(ctx)
				}
				next.ServeHTTP(w, r)

			default:
				ctx, ok := guard.Authenticated(r)
				if !ok {
					target := loginPath + "?return_to=" + url.QueryEscape(r.URL.Path)
					http.Redirect(w, r, target, http.StatusTemporaryRedirect)
					return
				}
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}
