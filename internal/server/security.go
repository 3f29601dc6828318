package server

import "net/http"

// SecurityHeadersMiddleware adds standard security headers to all responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderXContentTypeOptions, ContentTypeOptionsNoSniff)
			w.Header().Set(HeaderXFrameOptions, FrameOptionsDeny)
			w.Header().Set(HeaderReferrerPolicy, ReferrerPolicyNoReferrer)
			w.Header().Set(HeaderCacheControl, CacheControlNoStore)

			next.ServeHTTP(w, r)
		})
	}
}
