// Package adscan provides structural advertisement detection over rendered
// documents. Given an element subtree it locates image ads, infers the URL a
// click would navigate to, normalizes and filters that URL, and reports a
// structured Ad record to a Notifier.
//
// This package contains domain types, interfaces and the pure heuristics
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., goquery/, rod/,
// sqlite/).
package adscan
