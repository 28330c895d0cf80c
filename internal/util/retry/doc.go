// Package retry provides exponential backoff retry logic for transient failures.
//
// The [WithExponentialBackoff] function retries an operation with a bounded
// number of attempts, an initial delay, and a maximum delay. It is used for
// liveness fetches against droplets and for cloud API calls that may fail
// transiently. Errors wrapped with [Fatal] stop the retry loop immediately.
package retry
