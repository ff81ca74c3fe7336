// Package permissions implements role-based authorization for the club portal.
//
// # Overview
//
// The identity provider attaches a list of role tokens (group names) to every
// authenticated session. This package resolves that token list into a
// PermissionSet: the effective mapping from portal function (members, webshop,
// events, ...) and action (read, write, export) to an allow/deny decision,
// optionally narrowed to a set of club regions. All authorization decisions in
// the portal are driven by a resolved PermissionSet; handlers never inspect
// raw role tokens.
//
// # Resolution model
//
// Grants are additive: the PermissionSet is the union of the grants of every
// recognized role in the token list. Role precedence exists only to pick a
// display label for the user and never suppresses a grant from another role.
// Any (function, action) pair not covered by a grant is denied.
//
// Regional tokens of the form "Regio_<name>" carry no grants of their own;
// they attach a region scope to the whole PermissionSet. "Regio_All" (and the
// legacy "_All"-suffixed role names) widen the scope to all regions.
//
// # Naming generations
//
// Two role-naming generations are honored side by side: legacy names bake the
// region into the role ("Members_CRUD_All") while current names split it into
// a grant role plus a regional token ("Members_CRUD" + "Regio_All"). Legacy
// usage is logged and counted so a deprecation cutover can eventually be
// decided on real data.
//
// # Purity
//
// Resolve is a pure function of the token list and the catalog: no I/O, no
// hidden state, no time dependence. A PermissionSet is immutable after
// construction and safe for concurrent readers. The optional Cache only
// memoizes complete resolutions keyed by the canonical token list.
package permissions
