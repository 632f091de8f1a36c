/*
Package observability provides tools for monitoring Turing machine runs.

It includes Prometheus metrics fed by engine lifecycle hooks, structured logging
hooks for auditing transitions, and a combinator that fans a single set of
hooks out to several observers.
*/
package observability
