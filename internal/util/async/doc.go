// Package async provides utilities for parallel task execution with
// error collection.
//
// The [RunParallel] function executes independent operations concurrently
// and returns every error joined together. It is used to destroy all
// droplets matching a tag in one pass.
package async
