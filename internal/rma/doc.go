// Package rma implements the RMA lifecycle engine: the coupled store-side
// and inventory-side state machines tracking an item through defect
// intake, repair processing and return to store stock.
//
// The three status fields of a store RMA row (store status, inventory
// status, location) form one state value; every transition goes through
// State.Apply, which computes the full triple, so a mirrored field can
// never be updated without its pair. Every transition runs in one
// database transaction with a row lock on the RMA being moved and
// appends one history row.
package rma
