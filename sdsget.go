// Package sdsget retrieves Safety Data Sheet (SDS) PDF documents for
// chemical products from vendor websites. Each vendor exposes a different,
// undocumented, semi-authenticated web surface; a provider adapter
// normalizes authentication, product and document resolution, language
// negotiation, and response validation into one acquisition pipeline.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., resty/, goquery/, rod/, sqlite/).
package sdsget
