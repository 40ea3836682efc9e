/*
Package oracle implements the simplest verification module: an operation
is authorized by a single signature of the oracle owner.

An oracle is created uninitialized and can be initialized with its owner
exactly once.
*/
package oracle
