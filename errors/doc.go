/*
Package errors implements the error model shared by every custody extension.

Each failure is categorized by a root error created with Register. Root errors
carry a unique code that is exposed to clients (see ABCIInfo). Extensions wrap
a root error with Wrap or Wrapf at the point of failure so that the first wrap
records a stacktrace.

Use the Is method to test an error category:

	if errors.ErrNotFound.Is(err) {
		...
	}

Once you have an error, you can use fmt to get more context
	%s is just the error message
	%+v is the full stack trace
*/
package errors
