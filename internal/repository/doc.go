// Package repository defines the value types exchanged with source-control backends:
// repository references, recursive tree listings, file contents and file updates.
package repository
