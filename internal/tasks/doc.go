// Package tasks turns a list of free-text song queries into a duration-bounded playlist.
//
// # Core Operations
//
//  1. [Resolver.Resolve] : query → single video
//     - Tries the variants from [Variants] in order, stopping at the first with hits
//     - Looks up every candidate's duration in one bulk call
//     - Scores candidates with [Score] and keeps the best (first seen wins ties)
//
//  2. [Packer.Pack] : ordered ids → playlist
//     - Appends greedily until the target is met
//     - Stops before any video that would exceed target + overrun
//     - Logs and skips failed appends
//
//  3. [Engine.Run] : create playlist, resolve all queries, fetch durations, pack
//
// # Progress Reporting
//
// [Engine.Run] publishes [ProgressUpdate] values on an optional channel. Sends use
// select with default so a slow reader never blocks the build.
package tasks
