// Package main provides the entry point for the StoreHub backend.
// It runs a JSON REST service using the Fiber framework that manages
// multi-store inventory, group-based permissions and the RMA repair
// lifecycle. The application uses gorm for data persistence on
// PostgreSQL and issues JWT bearer tokens for authentication.
package main
