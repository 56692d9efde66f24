// Package models defines the value types shared by the resolver, the packer and the platform client.
//
//   - [Candidate] : one search hit with its duration and relevance rank
//   - [ScoredCandidate] : a candidate with its selection score
//   - [Pick] : the single video chosen for a query
//   - [DurationIndex] : video id to runtime in seconds
//   - [Budget] : target runtime and allowed overrun in minutes
//   - [ScoreWeights] and [SearchOptions] : tuning knobs passed in from configuration
//
// None of these types are persisted.
package models
