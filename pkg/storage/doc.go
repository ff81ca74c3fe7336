// Package storage provides the document store behind the portal: members,
// webshop products, orders and events, each a schemaless record keyed by id
// within a collection.
//
// The production backend is DynamoDB (one table per collection); the memory
// backend serves tests and local development. Records carry an optional
// "region" attribute consumed by the authorization layer; storage itself does
// no access control.
package storage
