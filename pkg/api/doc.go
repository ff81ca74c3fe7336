// Package api implements the portal's HTTP API.
//
// # Overview
//
// The API exposes the club's administrative collections (members, webshop
// products, orders, events) plus an introspection endpoint for the caller's
// resolved permissions. Every route is gated twice: a coarse function/action
// check at routing time, then record-level region and field checks inside
// the handler. Authorization never consults anything the client sent besides
// the bearer token; role lists in request bodies are ignored.
//
// # Routes
//
//	GET    /v1/members                   list members (region-filtered)
//	POST   /v1/members                   create a member
//	GET    /v1/members/{id}              fetch a member
//	PATCH  /v1/members/{id}              update member fields
//	DELETE /v1/members/{id}              delete a member
//	GET    /v1/members/export            export members (full fields)
//	GET    /v1/webshop/products          list products
//	POST   /v1/webshop/products          create a product
//	GET    /v1/webshop/products/{id}     fetch a product
//	PATCH  /v1/webshop/products/{id}     update a product
//	DELETE /v1/webshop/products/{id}     delete a product
//	GET    /v1/webshop/orders            list orders (region-filtered)
//	GET    /v1/webshop/orders/{id}       fetch an order
//	GET    /v1/webshop/orders/export     export orders
//	GET    /v1/events                    list events
//	POST   /v1/events                    create an event
//	GET    /v1/events/{id}               fetch an event
//	PATCH  /v1/events/{id}               update an event
//	DELETE /v1/events/{id}               delete an event
//	GET    /v1/session/permissions       the caller's resolved permissions
//
// Denied requests return 403 with a hint naming the missing grant. Records
// outside the caller's region scope return 404 rather than 403 so their
// existence is not leaked.
package api
