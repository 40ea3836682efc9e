/*
Package signers implements a threshold verification module. A group has a
set of signers and a threshold: an operation is authorized when at least
threshold distinct signers of the group signed it.

The group is owned by a safe. Only the owning safe can change the members
or the threshold, which means every change must itself be authorized by
the group.
*/
package signers
