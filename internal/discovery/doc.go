// Package discovery announces and finds msgwire listeners on the local
// network via mDNS/DNS-SD.
//
// Listeners register a "_msgwire._tcp" service instance; senders browse
// for instances and pick a peer by instance name. Discovery is purely a
// convenience for the CLI tools - the protocol itself only needs an
// address.
package discovery
