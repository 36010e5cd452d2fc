// Package main hosts the contactsync CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the pipeline service:
// update reconciles one organization from team-page text, clean deduplicates
// annotated workbooks in batch, review lists and approves flagged
// organizations, orgs walks the organization list and its run history, and
// config scaffolds and checks configuration.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it here.
package main
