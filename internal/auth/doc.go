// Package auth manages the OAuth credential lifecycle for Spotify Web API clients.
//
// # Session
//
// [NewSession] performs the authorization code exchange once and fails with an [*AuthError]
// if it does not succeed. After that the session keeps its token fresh on its own:
//
//	sess, err := auth.NewSession(ctx, code, redirectURI, creds, auth.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer sess.Shutdown()
//	req.Header.Set("Authorization", "Bearer "+sess.Token())
//
// # Renewal
//
// A [RefreshScheduler] goroutine wakes [DefaultSafetyMargin] before expiry and calls the token
// endpoint. Success replaces the record in the [CredentialStore] (keeping the old refresh token
// unless a new one was issued) and re-arms from the new expiry. Failure leaves the token in place
// and retries after [DefaultRetryDelay]. Failures are never returned from Token; they are visible
// through [Session.Status] and the [WithOnRefreshError] hook.
//
// Restart supersedes pending and in-flight renewals. A superseded renewal is cancelled and its
// result discarded, so an older refresh never overwrites a newer one.
//
// # Shutdown
//
// [Session.Shutdown] waits for the renewal goroutine, including a hook it is running, so a hook
// that writes to a database finishes before the caller closes it. Hooks run on that goroutine and
// stop the session with [Hook.Stop].
package auth
