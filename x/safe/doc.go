/*
Package safe implements a custody account that executes operations
authorized by its verification modules.

Every operation carries a nonce that must be exactly one more than the
nonce of the safe. The operation is executed if any of the modules of the
safe accepts its signature. The nonce is advanced before the operation is
performed and the submitter is reimbursed for the gas used, in the asset
chosen by the signers. If anything fails, including the reimbursement,
no change is persisted.

Modules registered in a safe can also execute operations directly, without
signatures and outside of the nonce sequence.
*/
package safe
