// Package group implements the group administration service: CRUD over
// groups and their normalized permission rows. The row-per-permission
// tables are the single source of truth; the map-shaped permission
// structures the API exchanges are derived views built here. Every
// multi-statement mutation runs in one transaction and invalidates the
// permission cache on commit.
package group
