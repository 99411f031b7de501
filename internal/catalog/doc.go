// Package catalog holds the portfolio data model and the read-only store
// built from the persisted catalog document.
//
// # Document
//
// The catalog document has four top-level keys:
//
//	{
//	  "categories":    {"doc": {"it": "Documentari", "en": "Documentaries"}},
//	  "categoryOrder": ["doc", "tv"],
//	  "sections":      {"journalism": {"order": ["doc", "tv"]}},
//	  "projects":      [{"id": "proj1", "visible": true, "order": 2, ...}]
//	}
//
// Only "projects" is regenerated by the sync tool; the taxonomy is editorial
// metadata maintained by hand.
//
// # Store
//
// [Load] reads a document from a [Source] and builds the derived indices:
// visible projects sorted by order (ties keep document order), projects per
// category and the mainpage set. Invisible projects never enter an index.
// Failures wrap [ErrNotFound], [ErrParse] or [ErrNetwork]; the caller decides
// whether to degrade to [Empty].
//
// A [Holder] publishes the current store and [Watch] swaps it when the
// document on disk changes.
package catalog
