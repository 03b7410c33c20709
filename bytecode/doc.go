// Package bytecode builds, stores and checks compiled procedures.
//
// Procedures can be built programmatically with an Assembler, parsed from a
// small text assembly format with Parse, serialized to CBOR images with
// Marshal and Unmarshal, and checked for structural problems with Verify.
package bytecode
