/*
Package verify defines the operation a safe executes on behalf of its
signers, the canonical hash all parties sign, and the registry of
verification modules that decide whether a signature authorizes an
operation.

A signer computes Hash over the operation fields, signs the digest with a
recoverable secp256k1 signature and submits the operation together with
the signature. Every module hashes the operation the same way, so a
single signature can be checked by any module.
*/
package verify
