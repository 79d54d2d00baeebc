// Package abi provides arithmetic and bit-level helpers shared by the codec,
// allocators and guest-memory adapters.
//
// This package is internal to the module.
package abi
