// Package models decodes Spotify Web API documents into typed entities.
//
// # Decoding
//
// Every entity implements [Decodable] by reading its members through a [Fields] reader:
// required members must be present, non-null and of the right JSON type, otherwise a
// [DecodeError] naming the member path is returned. Optional members fall back to their
// documented default ("" / 0 / false / nil) when absent or null. A failed decode never
// yields a partially populated entity.
//
//	track, err := models.Decode[models.Track](body)
//
// # Pagination
//
// [DecodePage] decodes the paging envelope (href, items, limit, offset, total, next, previous)
// with any item [DecodeFunc]. next and previous default to "". limit, offset and total are
// required. Decoding is fail-fast: the first bad item fails the whole page.
//
//	page, err := models.DecodePage(body, models.DecodeSavedTrack)
//
// # Entity graph
//
// Entities reference each other through plain pointers (a track holds its album and artists).
// Nothing is interned by id, so the same album may appear as distinct values. A track's
// linked_from is followed at most [MaxLinkedFromDepth] levels.
package models
