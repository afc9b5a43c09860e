/*
Package observability provides tools for monitoring the validation engine.

It turns engine lifecycle hooks into Prometheus metrics: runs by outcome,
findings by kind and severity, validated rows and run durations.
*/
package observability
