// Package httpclient sends every request to the WasteWise REST API.
//
// Outbound requests carry `Authorization: Bearer <access>` when an access
// token is held. A 401 on a request that has not been retried triggers one
// silent refresh through POST /auth/token/refresh/; on success the request
// is re-dispatched once with the new token and its result returned to the
// caller. Concurrent 401s share a single in-flight refresh. When no refresh
// token is held, or the refresh is rejected, the session-expired hook runs
// and the caller receives domain.ErrSessionExpired.
//
// Every other failure is shown through the Notifier and returned.
package httpclient
