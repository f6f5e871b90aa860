// Package services wraps the Spotify Web API read endpoints used by spotkit.
//
// # Authorization
//
// [SpotifyService] takes a [TokenSource] instead of managing OAuth itself. Each request reads the
// current access token, so passing an auth.Session means renewals are picked up without any
// coordination here.
//
// # Decoding
//
// Bodies are decoded with the models package. Single objects go through [models.Decode], paged
// collections through [models.DecodePage] with the matching item decoder. [NextPage] and [AllItems]
// follow "next" links.
//
// # Pacing
//
// [WithRequestRate] installs a [rate.Limiter] that every request waits on before it is sent.
//
// # Error Handling
//
// Failures are not retried:
//   - [*shared.TransportError] : no response was received (dial error, timeout, cancelled context)
//   - [*shared.StatusError] : non-2xx response, with status code and body
//   - [*models.DecodeError] : the body did not have the expected shape
//   - [shared.ErrNotAuthenticated] : the token source returned an empty token
package services
