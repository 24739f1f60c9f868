// Package model describes the data types of trigit entities:
// triples, layers, commits, labels and the descriptors addressing them.
//
// Everything in this package is a pure value: no I/O, no store handles.
package model
