/*
Package cash keeps the balances of all accounts.

A balance is kept per owner and asset. The native asset is identified by
an empty (or zero) address, any other asset by the address of the token
that issued it. Amounts are unsigned 256 bit integers.
*/
package cash
