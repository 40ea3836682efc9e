/*
Package custody defines all common interfaces used to tie together the
custody extensions, as well as implementations of some of the simpler
components (when interfaces would be too much overhead).

A custody account (a safe) holds value and executes operations only when
one of its verification modules approves a signature over the canonical
hash of that operation. Extensions living under x/ implement the modules,
the safe itself and the balances it holds.

We pass context through context.Context between app, decorators, and
handlers. There exist two functions for every value of type T that we want
to support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)
*/
package custody
