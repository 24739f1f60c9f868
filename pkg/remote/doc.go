// Package remote implements the replication protocol: an HTTP server
// exposing the commit graph (ancestry listing, layer fetch/import, label
// CAS) and a client that clones, pulls and pushes commit history by
// transferring only the layers absent on one side.
//
// Replication mirrors the remote commit graph exactly: layers travel
// verbatim, content addresses are verified on import, and the local label
// only moves once the full missing ancestry is present.
package remote
