// Package platform defines the contract blog platform clients satisfy and a registry
// that keys configured clients by platform name.
package platform
