/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension keeps a single configuration object saved under its package
name. Configuration is loaded from the "conf" section of a genesis file and
can be read back by handlers at any time.
*/
package gconf
