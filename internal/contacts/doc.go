// Package contacts defines the person records exchanged between extraction,
// reconciliation, duplicate detection, and spreadsheet persistence.
//
// A Registry is the authoritative contact list for one organization. Records
// are addressed by stable string IDs rather than row positions so matching
// can remove a record from the candidate pool in O(1).
package contacts
